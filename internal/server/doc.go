// Package server runs the HTTP side of liveview: a Gin engine behind an
// h2c handler, the standard middleware stack, health and version
// endpoints, and JSON response helpers.
package server

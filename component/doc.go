// Package component defines the lifecycle of the long-running parts of a
// liveview service (HTTP server, SSE hub, member roster) and a registry
// that starts them in order and stops them in reverse.
package component

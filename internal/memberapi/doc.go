// Package memberapi serves a roster of team members over HTTP. The roster
// owns one collection.Source and keeps three live views over it: every
// member by name, active members by name, and members grouped by
// department. Each view is also published as an SSE topic.
package memberapi

// Package errors provides the structured error type shared by the collection
// engine and its host services.
//
// Every error carries a machine-readable ErrorCode, a stable message and
// optional details, so hosts can decide how to present a failure without
// parsing strings. Structural errors (IndexOutOfRange, ReentrantMutation)
// are returned to the caller of a mutation; SubscriberFailure aggregates the
// handler errors of one notification round and is reported out of band.
package errors

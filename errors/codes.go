package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Collection errors
const (
	// ErrCodeIndexOutOfRange indicates an invalid positional mutation.
	ErrCodeIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE"
	// ErrCodeReentrantMutation indicates a mutation attempted from within a notification callback.
	ErrCodeReentrantMutation ErrorCode = "REENTRANT_MUTATION"
	// ErrCodeNonDeterministic indicates a predicate, comparator or key function broke its contract.
	ErrCodeNonDeterministic ErrorCode = "NON_DETERMINISTIC_CALLBACK"
	// ErrCodeSubscriberFailure indicates one or more subscribers failed during a notification round.
	ErrCodeSubscriberFailure ErrorCode = "SUBSCRIBER_FAILURE"
)

// Host errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAlreadyExists indicates the resource already exists.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeServiceUnavailable indicates the service is shutting down.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

var structuralCodes = map[ErrorCode]bool{
	ErrCodeIndexOutOfRange:   true,
	ErrCodeReentrantMutation: true,
}

// IsStructuralCode reports whether code rejects a mutation before any state changes.
func IsStructuralCode(code ErrorCode) bool {
	return structuralCodes[code]
}

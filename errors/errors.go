package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// HTTPStatus is the recommended HTTP status code when a host serves this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is matches another *AppError by code, so sentinel-style checks work:
//
//	errors.Is(err, &AppError{Code: ErrCodeIndexOutOfRange})
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// --- Collection errors ---

// IndexOutOfRange creates an error for a position outside [0, length) (or
// [0, length] for insertions).
func IndexOutOfRange(op string, index, length int) *AppError {
	return &AppError{
		Code: ErrCodeIndexOutOfRange, Message: fmt.Sprintf("%s: index %d out of range [0,%d)", op, index, length),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"operation": op, "index": index, "length": length},
	}
}

// ReentrantMutation creates an error for a mutation issued while the source
// is still delivering a previous change.
func ReentrantMutation(op string) *AppError {
	return &AppError{
		Code: ErrCodeReentrantMutation, Message: fmt.Sprintf("%s: source mutated from within a change notification", op),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"operation": op},
	}
}

// NonDeterministic creates an error for a callback that broke its purity or
// ordering contract.
func NonDeterministic(callback, reason string) *AppError {
	return &AppError{
		Code: ErrCodeNonDeterministic, Message: fmt.Sprintf("%s callback is not deterministic: %s", callback, reason),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"callback": callback},
	}
}

// SubscriberFailure aggregates the handler errors of one notification round.
// The causes stay reachable through errors.Is and errors.As.
func SubscriberFailure(view string, failures []error) *AppError {
	return &AppError{
		Code: ErrCodeSubscriberFailure, Message: fmt.Sprintf("%d subscriber(s) of %s failed", len(failures), view),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"view": view, "failures": len(failures)},
		Cause:      stderrors.Join(failures...),
	}
}

// --- Host errors ---

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Details: details,
	}
}

// AlreadyExists creates a new AppError for a resource that already exists.
func AlreadyExists(resource string) *AppError {
	return &AppError{
		Code: ErrCodeAlreadyExists, Message: fmt.Sprintf("A %s with these details already exists.", resource),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"resource": resource},
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message, HTTPStatus: http.StatusBadRequest}
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// ServiceUnavailable creates a new AppError for a component that is not
// accepting work.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("%s is unavailable.", service),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// --- Inspection ---

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err is, or wraps, an AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &AppError{Code: code})
}

// Causes returns the individual errors aggregated into err. For a
// SubscriberFailure these are the handler errors in delivery order; any
// other error yields itself.
func Causes(err error) []error {
	if err == nil {
		return nil
	}
	appErr, ok := AsAppError(err)
	if !ok || appErr.Code != ErrCodeSubscriberFailure || appErr.Cause == nil {
		return []error{err}
	}
	if joined, ok := appErr.Cause.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{appErr.Cause}
}

package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a failure that maps directly onto an HTTP status and a client-safe message
type Error struct {
	StatusCode int
	Message    string
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.cause
}

// New creates an error with an arbitrary status code
func New(statusCode int, message string) *Error {
	return &Error{StatusCode: statusCode, Message: message}
}

// BadRequest is a validation failure
func BadRequest(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, fmt.Sprintf(format, args...))
}

// Unauthorized is a missing or invalid credential, or an ownership violation
func Unauthorized(format string, args ...interface{}) *Error {
	return New(http.StatusUnauthorized, fmt.Sprintf(format, args...))
}

// NotFound is a missing entity, or one hidden from the caller
func NotFound(format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, fmt.Sprintf(format, args...))
}

// Conflict is a uniqueness violation
func Conflict(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, fmt.Sprintf(format, args...))
}

// TooManyRequests is returned by the rate limiters
func TooManyRequests(format string, args ...interface{}) *Error {
	return New(http.StatusTooManyRequests, fmt.Sprintf(format, args...))
}

// Internal is an unexpected persistence or media failure
func Internal(message string, cause error) *Error {
	return &Error{StatusCode: http.StatusInternalServerError, Message: message, cause: cause}
}

// As extracts an *Error from err's chain
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status for err, defaulting to 500
func StatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

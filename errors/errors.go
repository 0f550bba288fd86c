// Package errors provides error types and handling for pkghub API operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a pkghub operation error with context about the phase
// that failed. It wraps a sentinel kind so callers can classify failures
// with errors.Is while keeping the server's message and HTTP status.
type Error struct {
	// Op is the operation that failed (e.g., "stage", "store", "commit")
	Op string

	// Status is the HTTP status code, if the failure came from a response
	Status int

	// Message is a human-readable description, extracted from the response
	// body when present or taken from the per-status fallback table
	Message string

	// Err is the underlying sentinel or wrapped error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("pkghub.%s: %s (status code: %d)", e.Op, e.Message, e.Status)
	}
	if e.Message != "" {
		return fmt.Sprintf("pkghub.%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("pkghub.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// Sentinel errors for pkghub operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrUnauthorized indicates the request lacks valid authentication (401)
	ErrUnauthorized = errors.New("pkghub: unauthorized")

	// ErrNotFound indicates the requested resource does not exist (404)
	ErrNotFound = errors.New("pkghub: not found")

	// ErrConflict indicates a resource state conflict (409)
	ErrConflict = errors.New("pkghub: conflict")

	// ErrService indicates a generic service failure (any other
	// non-allowed status)
	ErrService = errors.New("pkghub: service error")

	// ErrUnsupportedStream indicates the byte length of a source stream
	// could not be derived because the stream does not support seeking
	ErrUnsupportedStream = errors.New("pkghub: stream does not support random access")

	// ErrMalformedAttrs indicates the caller passed extra attributes that
	// do not serialize to a JSON object
	ErrMalformedAttrs = errors.New("pkghub: attrs must be a JSON-serializable mapping")

	// ErrInvalidResponse indicates the server returned a structurally
	// invalid response (e.g., a stage response missing its form fields)
	ErrInvalidResponse = errors.New("pkghub: invalid server response")
)

// statusText is the fallback description table used when a failed response
// carries no error message in its body.
var statusText = map[int]string{
	400: "Bad Request: the request could not be understood by the server",
	401: "Unauthorized: the request requires user authentication",
	403: "Forbidden: the server understood the request but refuses to authorize it",
	404: "Not Found: the requested resource could not be found",
	405: "Method Not Allowed: the method is not allowed for this resource",
	409: "Conflict: the request conflicts with the current state of the resource",
	413: "Payload Too Large: the request entity exceeds server limits",
	429: "Too Many Requests: the user has sent too many requests",
	500: "Internal Server Error: the server encountered an unexpected condition",
	502: "Bad Gateway: invalid response from an upstream server",
	503: "Service Unavailable: the server is temporarily unable to handle the request",
}

// StatusText returns the fallback description for an HTTP status code.
func StatusText(status int) string {
	if text, ok := statusText[status]; ok {
		return text
	}
	return fmt.Sprintf("Undefined error (status code: %d)", status)
}

// FromStatus builds a classified Error for a non-allowed HTTP status.
// The message falls back to the static per-status description table when
// the response body carried none.
func FromStatus(op string, status int, message string) *Error {
	if message == "" {
		message = StatusText(status)
	}

	kind := ErrService
	switch status {
	case 401:
		kind = ErrUnauthorized
	case 404:
		kind = ErrNotFound
	case 409:
		kind = ErrConflict
	}

	return &Error{
		Op:      op,
		Status:  status,
		Message: message,
		Err:     kind,
	}
}

// IsUnauthorized checks if an error indicates missing or invalid credentials.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if an error indicates a resource state conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsUnsupportedStream checks if an error indicates a non-seekable stream
// whose size could not be derived.
func IsUnsupportedStream(err error) bool {
	return errors.Is(err, ErrUnsupportedStream)
}

package endpoint

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport matches failures that happened before a response was received
	// (DNS, connection, timeout, cancellation).
	ErrTransport = errors.New("endpoint: transport failure")

	// ErrStatus matches responses with a non-2xx status code.
	ErrStatus = errors.New("endpoint: unsuccessful status")

	// ErrInvalidBaseURL is returned by New when the base URL cannot be used.
	ErrInvalidBaseURL = errors.New("endpoint: invalid base URL")
)

// TransportError reports a request that never produced a response.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("post %s: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying cause so context.Canceled and
// context.DeadlineExceeded can be matched with errors.Is.
func (e *TransportError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// StatusError reports a response whose status code was not 2xx.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("post %s: server returned %d: %s", e.URL, e.StatusCode, e.Body)
}

// Is reports whether target is ErrStatus.
func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// Package msgsend posts messages to a push gateway's "send" endpoint.
//
// Example usage:
//
//	ep, err := msgsend.New(msgsend.DefaultBaseURL, msgsend.WithTimeout(10*time.Second))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	call := ep.SendMessage(ctx, msgsend.RemoteMessageHeaders(serverKey), payload)
//	call.Enqueue(func(resp string, err error) {
//	    // handle the raw response or the failure
//	})
package msgsend

import (
	"github.com/alyoongchat/msgsend/pkg/endpoint"
	"github.com/alyoongchat/msgsend/pkg/headers"
)

// DefaultBaseURL is the push gateway the "send" path is resolved against.
const DefaultBaseURL = endpoint.DefaultBaseURL

type (
	// Endpoint posts messages to <base URL>/send.
	Endpoint = endpoint.Endpoint

	// Call is the asynchronous handle of one send.
	Call = endpoint.Call

	// Option configures an Endpoint.
	Option = endpoint.Option

	// HTTPClient executes requests; *http.Client satisfies it.
	HTTPClient = endpoint.HTTPClient

	// TransportError reports a send that never received a response.
	TransportError = endpoint.TransportError

	// StatusError reports a non-2xx response.
	StatusError = endpoint.StatusError
)

// Errors returned through a Call, matchable with errors.Is.
var (
	ErrTransport      = endpoint.ErrTransport
	ErrStatus         = endpoint.ErrStatus
	ErrInvalidBaseURL = endpoint.ErrInvalidBaseURL
)

// Endpoint options.
var (
	WithHTTPClient = endpoint.WithHTTPClient
	WithLogger     = endpoint.WithLogger
	WithTimeout    = endpoint.WithTimeout
)

// New creates an Endpoint for baseURL.
func New(baseURL string, opts ...Option) (*Endpoint, error) {
	return endpoint.New(baseURL, opts...)
}

// RemoteMessageHeaders returns the header set expected for a legacy server key.
func RemoteMessageHeaders(serverKey string) map[string]string {
	return headers.RemoteMessage(serverKey)
}

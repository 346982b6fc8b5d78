package endpoint

import "net/http"

// HTTPClient executes requests for the endpoint.
// The standard *http.Client satisfies this interface.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

package endpoint

import (
	"time"

	"github.com/alyoongchat/msgsend/pkg/log"
)

// DefaultBaseURL is the push gateway base the send path resolves against.
const DefaultBaseURL = "https://fcm.googleapis.com/fcm/"

// DefaultTimeout bounds a whole exchange when no HTTP client is supplied.
const DefaultTimeout = 15 * time.Second

// Option configures optional behavior of an Endpoint.
type Option func(*options)

type options struct {
	client  HTTPClient
	logger  log.Logger
	timeout time.Duration
}

func defaultOptions() options {
	return options{
		logger:  log.NewNoopLogger(),
		timeout: DefaultTimeout,
	}
}

// WithHTTPClient sets the client used to execute requests.
// Transport, pooling, TLS and timeouts are then entirely the client's concern.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
// It has no effect when WithHTTPClient is also given.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Logger is the logging interface accepted by WithLogger.
type Logger = log.Logger

package endpoint

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alyoongchat/msgsend/pkg/headers"
	"github.com/alyoongchat/msgsend/pkg/log"
)

// Path is the request path, relative to the base URL.
const Path = "send"

// Endpoint posts messages to <base URL>/send.
// It is safe for concurrent use.
type Endpoint struct {
	url    string
	client HTTPClient
	logger log.Logger
}

// New creates an Endpoint for the given base URL, which must be an absolute
// http or https URL. A missing trailing slash is added so that "send"
// resolves beneath the base path.
func New(baseURL string, opts ...Option) (*Endpoint, error) {
	target, err := resolve(baseURL)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = &http.Client{Timeout: o.timeout}
	}

	return &Endpoint{
		url:    target,
		client: o.client,
		logger: o.logger,
	}, nil
}

func resolve(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrInvalidBaseURL, baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		u.RawPath = ""
	}
	return u.ResolveReference(&url.URL{Path: Path}).String(), nil
}

// URL returns the absolute URL requests are posted to.
func (e *Endpoint) URL() string {
	return e.url
}

// SendMessage schedules one POST carrying hdrs and body and returns its handle
// immediately. hdrs is copied, so the caller may reuse the map. Empty header
// sets and empty bodies are sent as is.
func (e *Endpoint) SendMessage(ctx context.Context, hdrs map[string]string, body string) *Call {
	snapshot := headers.Clone(hdrs)

	ctx, cancel := context.WithCancel(ctx)
	call := newCall(cancel)

	go func() {
		defer cancel()
		call.complete(e.post(ctx, call.ID(), snapshot, body))
	}()

	return call
}

// Send is the blocking form of SendMessage. Cancelling ctx aborts the
// request, so the error is still a *TransportError.
func (e *Endpoint) Send(ctx context.Context, hdrs map[string]string, body string) (string, error) {
	return e.SendMessage(ctx, hdrs, body).Result()
}

func (e *Endpoint) post(ctx context.Context, id string, hdrs map[string]string, body string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, strings.NewReader(body))
	if err != nil {
		return "", &TransportError{URL: e.url, Err: fmt.Errorf("create request: %w", err)}
	}

	// Assigned directly so names go out exactly as given.
	for name, value := range hdrs {
		if strings.EqualFold(name, "Host") {
			req.Host = value
			continue
		}
		req.Header[name] = []string{value}
	}

	e.logger.Debug("sending message",
		log.String("call_id", id),
		log.String("url", e.url),
		log.Strings("headers", headers.Names(hdrs)),
		log.Int("body_bytes", len(body)),
	)

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		terr := &TransportError{URL: e.url, Err: err}
		e.logger.Warn("send failed",
			log.String("call_id", id),
			log.Duration("elapsed", time.Since(start)),
			log.Err(terr),
		)
		return "", terr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		terr := &TransportError{URL: e.url, Err: fmt.Errorf("read response: %w", err)}
		e.logger.Warn("send failed",
			log.String("call_id", id),
			log.Int("status", resp.StatusCode),
			log.Err(terr),
		)
		return "", terr
	}

	if resp.StatusCode/100 != 2 {
		e.logger.Warn("send rejected",
			log.String("call_id", id),
			log.Int("status", resp.StatusCode),
			log.Duration("elapsed", time.Since(start)),
		)
		return string(data), &StatusError{URL: e.url, StatusCode: resp.StatusCode, Body: string(data)}
	}

	e.logger.Debug("message sent",
		log.String("call_id", id),
		log.Int("status", resp.StatusCode),
		log.Int("response_bytes", len(data)),
		log.Duration("elapsed", time.Since(start)),
	)
	return string(data), nil
}

package endpoint

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Call is the handle of one in-flight send. It completes exactly once,
// either with the raw response body or with an error.
type Call struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	// written once before done is closed
	body string
	err  error
}

func newCall(cancel context.CancelFunc) *Call {
	return &Call{
		id:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func (c *Call) complete(body string, err error) {
	c.once.Do(func() {
		c.body = body
		c.err = err
		close(c.done)
	})
}

// ID returns a unique identifier for this call, used in log lines.
func (c *Call) ID() string { return c.id }

// Done is closed once the call has completed.
func (c *Call) Done() <-chan struct{} { return c.done }

// Result blocks until the call completes and returns its outcome.
func (c *Call) Result() (string, error) {
	<-c.done
	return c.body, c.err
}

// Await waits for the call or for ctx, whichever ends first. Giving up on
// the wait does not cancel the request; use Cancel for that.
func (c *Call) Await(ctx context.Context) (string, error) {
	select {
	case <-c.done:
		return c.body, c.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Enqueue registers fn to be invoked on its own goroutine with the outcome
// once the call completes. It may be called any number of times, before or
// after completion.
func (c *Call) Enqueue(fn func(body string, err error)) {
	go func() {
		<-c.done
		fn(c.body, c.err)
	}()
}

// Cancel aborts the request if it is still in flight. The call then
// completes with a transport error matching context.Canceled.
func (c *Call) Cancel() {
	c.cancel()
}

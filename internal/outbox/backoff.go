package outbox

import (
	"context"
	"math/rand"
	"time"
)

// backoff implements exponential backoff with jitter.
type backoff struct {
	max     time.Duration
	current time.Duration
}

func newBackoff(initial, max time.Duration) *backoff {
	return &backoff{
		max:     max,
		current: initial,
	}
}

// Wait sleeps for the current backoff duration, then doubles it up to max.
// It returns ctx.Err() if ctx ends first.
func (b *backoff) Wait(ctx context.Context) error {
	// ±20% jitter
	jitter := float64(b.current) * 0.2 * (rand.Float64()*2 - 1)
	timer := time.NewTimer(time.Duration(float64(b.current) + jitter))
	defer timer.Stop()

	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Current returns the duration the next Wait will use, before jitter.
func (b *backoff) Current() time.Duration {
	return b.current
}

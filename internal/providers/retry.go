package providers

import (
	"context"
	"time"
)

// RetryPolicy is a bounded retry schedule for transient provider
// failures. Backoff doubles from BaseDelay on each attempt.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Do runs fn, retrying on transient errors (per IsRetryable) up to
// MaxRetries additional attempts. Validation and provider errors are
// permanent and return immediately. Cancellation interrupts the backoff
// wait and returns ctx.Err().
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}

	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt < p.MaxRetries {
			backoff := time.Duration(1<<uint(attempt)) * base
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return lastErr
}

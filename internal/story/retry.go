package story

import (
	"context"
	"errors"
	"time"

	"github.com/neexbeast/weather-stories/internal/llm"
)

// RetryPolicy controls how generation calls are retried. Only failures
// accepted by Retryable are attempted again; everything else surfaces
// immediately. Exhausting MaxAttempts surfaces the last error.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Retryable   func(error) bool
}

// DefaultRetryPolicy retries transient service-unavailable failures up to
// 3 total attempts with a fixed 5-second delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Delay:       5 * time.Second,
		Retryable: func(err error) bool {
			return errors.Is(err, llm.ErrUnavailable)
		},
	}
}

// do runs fn under the policy. The delay between attempts respects ctx
// cancellation.
func (p RetryPolicy) do(ctx context.Context, fn func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err

		if p.Retryable == nil || !p.Retryable(err) {
			return "", err
		}
		if attempt == p.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(p.Delay):
		}
	}
	return "", lastErr
}

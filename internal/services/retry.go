package services

import (
	"context"
	"time"
)

// DefaultPredictionRetries is the number of extra attempts after the first.
const DefaultPredictionRetries = 2

// RetryPolicy bounds the number of attempts of an operation.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// NewRetryPolicy allows retries additional attempts after the first, with no delay.
func NewRetryPolicy(retries int) RetryPolicy {
	if retries < 0 {
		retries = 0
	}
	return RetryPolicy{MaxAttempts: retries + 1}
}

// Do calls fn until it succeeds, attempts are exhausted or ctx is done.
// It returns the number of attempts made and the last error.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) (int, error) {
	limit := p.MaxAttempts
	if limit < 1 {
		limit = 1
	}

	var lastErr error
	for attempt := 1; attempt <= limit; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			return attempt - 1, lastErr
		}

		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return attempt, nil
		}

		if attempt < limit && p.Delay > 0 {
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return attempt, lastErr
			}
		}
	}
	return limit, lastErr
}

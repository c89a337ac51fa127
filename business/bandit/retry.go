package bandit

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// withRetry runs fn up to maxRetries+1 times with jittered exponential
// backoff starting at baseDelay. Context errors and outcome conflicts are
// never retried.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var err error
	for attempt := range maxRetries + 1 {
		err = fn()
		if err == nil || !retryable(err) {
			return err
		}
		if attempt == maxRetries {
			break
		}
		jitter := time.Duration(rand.Int64N(int64(baseDelay) + 1)) //nolint:gosec // jitter only
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(baseDelay + jitter):
		}
		baseDelay *= 2
	}
	return err
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, ErrAlreadyRecorded), errors.Is(err, ErrDecisionNotFound):
		return false
	}
	return true
}

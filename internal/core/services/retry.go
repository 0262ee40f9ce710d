package services

import (
	"context"
	"errors"
	"time"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
)

const (
	// DefaultRetryAttempts is the default number of attempts per call.
	DefaultRetryAttempts = 3

	// DefaultRetryDelay is the initial delay between attempts; it doubles
	// after each failure.
	DefaultRetryDelay = time.Second

	// maxRetryDelay caps the backoff growth.
	maxRetryDelay = 30 * time.Second
)

// withRetry runs fn up to attempts times, backing off exponentially
// between failures. Only errors marked domain.ErrTransient are retried;
// anything else propagates immediately. The last error is returned when
// attempts are exhausted.
func withRetry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	if delay <= 0 {
		delay = DefaultRetryDelay
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, domain.ErrTransient) {
			return lastErr
		}
	}
	return lastErr
}

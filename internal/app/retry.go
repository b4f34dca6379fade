package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/cue/internal/ports/primary"
)

// storeFailure wraps a storage error so callers can classify it with
// errors.Is while the message keeps the failed action.
func storeFailure(action string, err error) error {
	return fmt.Errorf("failed to %s: %w: %v", action, primary.ErrStoreUnavailable, err)
}

// retryStore runs op, retrying failures with linear backoff (backoff, then
// 2*backoff, and so on). retries is the number of attempts after the first.
// Exhausted retries surface as ErrStoreUnavailable; a context cancelled
// during backoff surfaces as ErrCancelled.
func retryStore(ctx context.Context, retries int, backoff time.Duration, op func() error) error {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * backoff
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", primary.ErrCancelled, ctx.Err())
			case <-time.After(wait):
			}
		}
		if lastErr = op(); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("store failed after %d attempts: %w: %v", retries+1, primary.ErrStoreUnavailable, lastErr)
}

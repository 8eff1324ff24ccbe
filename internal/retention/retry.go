package retention

import (
	"context"
	"log/slog"
	"time"
)

// retryUntilSuccess invokes fn until it succeeds, waiting a fixed backoff
// between attempts. There is no attempt cap; the loop ends only on success or
// context cancellation. Retention correctness is deliberately favored over
// schedule punctuality.
func retryUntilSuccess[T any](
	ctx context.Context,
	backoff time.Duration,
	logger *slog.Logger,
	fn func(context.Context) (T, error),
) (T, error) {
	var zero T
	for attempt := 1; ; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		logger.ErrorContext(ctx, "Attempt failed, retrying after backoff",
			"attempt", attempt, "backoff", backoff, "error", err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// Package retention implements the time-based retention scheduler. On a
// cron-defined cadence it deletes all messages older than the configured
// window, retrying a failed delete indefinitely with a fixed backoff before
// advancing to the next cycle.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chatkeeper/internal/config"
	"chatkeeper/internal/database"
	"chatkeeper/internal/metrics"
	"chatkeeper/internal/schedule"
)

// Scheduler drives the recurring retention sweep.
type Scheduler struct {
	store   database.Store
	trigger *schedule.Trigger
	window  time.Duration
	backoff time.Duration
	loc     *time.Location
	logger  *slog.Logger
}

// NewScheduler creates a retention scheduler. The cron expression is parsed
// once here; a malformed expression is a startup-fatal error.
func NewScheduler(store database.Store, cfg config.RetentionConfig, loc *time.Location, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	trigger, err := schedule.NewTrigger(cfg.Cron, loc)
	if err != nil {
		return nil, fmt.Errorf("retention schedule: %w", err)
	}

	return &Scheduler{
		store:   store,
		trigger: trigger,
		window:  cfg.Window,
		backoff: cfg.RetryBackoff,
		loc:     loc,
		logger:  logger.With("component", "retention"),
	}, nil
}

// Run executes the retention loop until ctx is cancelled. Each iteration
// sleeps until the next cron fire time and then sweeps; the next fire time is
// recomputed only after the sweep succeeds.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Retention scheduler started", "window", s.window, "backoff", s.backoff)

	for {
		next := s.trigger.Next(time.Now())
		wait := time.Until(next)
		days := int(wait.Hours()) / 24
		hours := int(wait.Hours()) % 24
		s.logger.Info("Waiting until next retention sweep",
			"next_fire", next, "days", days, "hours", hours)

		if err := schedule.SleepUntil(ctx, next); err != nil {
			s.logger.Info("Retention scheduler stopping", "reason", err)
			return err
		}

		if err := s.sweep(ctx); err != nil {
			// Only context cancellation escapes the retry loop.
			s.logger.Info("Retention scheduler stopping", "reason", err)
			return err
		}
	}
}

// sweep deletes everything older than the retention window, retrying the same
// attempt with a fixed backoff until it succeeds. The deleted count is logged
// exactly once, after the successful attempt.
func (s *Scheduler) sweep(ctx context.Context) error {
	cutoff := time.Now().In(s.loc).Add(-s.window)
	s.logger.Info("Running retention sweep", "cutoff", cutoff)

	deleted, err := retryUntilSuccess(ctx, s.backoff, s.logger, func(ctx context.Context) (int64, error) {
		return s.store.DeleteMessagesBefore(ctx, cutoff)
	})
	if err != nil {
		return err
	}

	metrics.RetentionDeleted.Add(float64(deleted))
	s.logger.Info("Retention sweep completed", "deleted", deleted, "cutoff", cutoff)
	return nil
}

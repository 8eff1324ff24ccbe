package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chatkeeper/internal/database"
)

// TaskFunc is the signature for all maintenance tasks. The context provided
// by the scheduler should be respected for cancellation.
type TaskFunc func(ctx context.Context) error

// Deps contains the dependencies available to maintenance tasks.
type Deps struct {
	Logger *slog.Logger
	Store  database.Store
}

// RegisterAllTasks returns the map of available maintenance tasks. The keys
// match the task names in the scheduler configuration.
func RegisterAllTasks(deps Deps) map[string]TaskFunc {
	tasks := map[string]TaskFunc{
		"sql_maintenance": newSQLMaintenanceTask(deps),
	}

	deps.Logger.Info("Initialized maintenance tasks", "count", len(tasks))
	return tasks
}

// newSQLMaintenanceTask creates the task that runs database maintenance.
func newSQLMaintenanceTask(deps Deps) TaskFunc {
	log := deps.Logger.With("task", "sql_maintenance")

	return func(ctx context.Context) error {
		startTime := time.Now()

		if err := deps.Store.RunMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "SQL maintenance failed", "error", err, "duration", time.Since(startTime))
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "SQL maintenance completed", "duration", time.Since(startTime))
		return nil
	}
}

// Package app orchestrates the lifecycle of all long-lived chatkeeper
// components: the Discord transport, the retention scheduler, the resource
// monitor and its report sender, the maintenance scheduler, and the optional
// metrics listener.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"chatkeeper/internal/config"
	"chatkeeper/internal/discord"
	"chatkeeper/internal/metrics"
	"chatkeeper/internal/monitor"
	"chatkeeper/internal/retention"
	"chatkeeper/internal/scheduler"
)

// App holds the long-lived components and runs them as one group.
type App struct {
	logger      *slog.Logger
	cfg         *config.Config
	adapter     *discord.Adapter
	retention   *retention.Scheduler
	monitor     *monitor.Monitor
	maintenance *scheduler.Scheduler
}

// New assembles the application from its components.
func New(
	logger *slog.Logger,
	cfg *config.Config,
	adapter *discord.Adapter,
	ret *retention.Scheduler,
	mon *monitor.Monitor,
	maint *scheduler.Scheduler,
) *App {
	return &App{
		logger:      logger.With("component", "app"),
		cfg:         cfg,
		adapter:     adapter,
		retention:   ret,
		monitor:     mon,
		maintenance: maint,
	}
}

// Run starts every component and blocks until ctx is cancelled or a
// component fails. Context cancellation is treated as a graceful shutdown.
// The tasks never communicate with each other except through the shared
// store; each owns and resolves its own errors.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Starting chatkeeper...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.adapter.Run(gCtx)
	})

	g.Go(func() error {
		return a.retention.Run(gCtx)
	})

	g.Go(func() error {
		return a.monitor.Run(gCtx)
	})

	g.Go(func() error {
		return a.monitor.RunReportSender(gCtx)
	})

	g.Go(func() error {
		if err := a.maintenance.Start(); err != nil {
			return fmt.Errorf("failed to start maintenance scheduler: %w", err)
		}

		<-gCtx.Done()
		if err := a.maintenance.Stop(); err != nil {
			a.logger.Error("Error stopping maintenance scheduler", "error", err)
		}
		return nil
	})

	if a.cfg.MetricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(gCtx, a.cfg.MetricsAddr, a.logger)
		})
	}

	a.logger.Info("chatkeeper running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("chatkeeper stopped due to error", "error", err)
		return err
	}

	a.logger.Info("chatkeeper stopped gracefully.")
	return nil
}

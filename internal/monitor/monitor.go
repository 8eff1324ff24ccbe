// Package monitor implements the host resource monitor: a multiplexed timer
// loop that samples memory state, raises threshold alerts, and emits periodic
// reports, plus a detached cron-anchored daily report sender.
package monitor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"chatkeeper/internal/config"
	"chatkeeper/internal/metrics"
	"chatkeeper/internal/notify"
	"chatkeeper/internal/schedule"
)

// Monitor samples host memory and drives the alert, console, and report
// cadences against the latest sample. The current sample lives in a single
// atomically-replaced slot: the sampling tick is the only writer, the other
// cadences only read.
type Monitor struct {
	cfg      config.MonitorConfig
	notifier notify.Notifier
	trigger  *schedule.Trigger

	current atomic.Pointer[Sample]

	console io.Writer
	logger  *slog.Logger
}

// New creates a resource monitor. The report cron expression is parsed here;
// a malformed expression is a startup-fatal error.
func New(cfg config.MonitorConfig, notifier notify.Notifier, loc *time.Location, logger *slog.Logger) (*Monitor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	trigger, err := schedule.NewTrigger(cfg.ReportCron, loc)
	if err != nil {
		return nil, fmt.Errorf("report schedule: %w", err)
	}

	return &Monitor{
		cfg:      cfg,
		notifier: notifier,
		trigger:  trigger,
		console:  os.Stdout,
		logger:   logger.With("component", "monitor"),
	}, nil
}

// Run executes the monitor loop until ctx is cancelled. The three cadences
// are multiplexed on one select; alert notification sends are dispatched on
// their own goroutine so a slow transport cannot delay the next sampling
// tick.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("Resource monitor started",
		"sample_interval", m.cfg.SampleInterval,
		"alert_interval", m.cfg.AlertInterval,
		"alert_threshold", m.cfg.AlertThreshold)

	// Take an initial sample so the alert and report ticks never see an
	// empty slot.
	m.sample(ctx)

	sampleTicker := time.NewTicker(m.cfg.SampleInterval)
	defer sampleTicker.Stop()
	alertTicker := time.NewTicker(m.cfg.AlertInterval)
	defer alertTicker.Stop()
	consoleTicker := time.NewTicker(m.cfg.ConsoleInterval)
	defer consoleTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Resource monitor stopping", "reason", ctx.Err())
			return ctx.Err()

		case <-sampleTicker.C:
			m.sample(ctx)

		case <-alertTicker.C:
			m.checkAlert(ctx)

		case <-consoleTicker.C:
			m.writeConsole()
		}
	}
}

// RunReportSender executes the cron-anchored daily report loop until ctx is
// cancelled. It runs as a detached task sharing only read access to the
// current sample slot.
func (m *Monitor) RunReportSender(ctx context.Context) error {
	m.logger.Info("Daily report sender started", "cron", m.cfg.ReportCron)

	for {
		firedAt, err := m.trigger.Wait(ctx)
		if err != nil {
			m.logger.Info("Daily report sender stopping", "reason", err)
			return err
		}

		s := m.current.Load()
		if s == nil {
			m.logger.Warn("No memory sample available for daily report, skipping")
			continue
		}

		if err := m.notifier.Broadcast(ctx, m.cfg.AlertChannelID, buildReport(s, false)); err != nil {
			// Best effort, next fire proceeds regardless.
			m.logger.Error("Failed to send daily memory report", "error", err)
			continue
		}
		m.logger.Info("Daily memory report sent", "fired_at", firedAt, "used_percent", s.UsedPercent)
	}
}

// sample recomputes the current memory sample and overwrites the slot.
// Nothing else runs on the sampling tick.
func (m *Monitor) sample(ctx context.Context) {
	s, err := takeSample(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "Failed to sample memory state", "error", err)
		return
	}

	m.current.Store(s)
	metrics.MemoryUsedPercent.Set(s.UsedPercent)
}

// checkAlert reads the latest sample, which may be up to one sample interval
// stale, and dispatches an alert when the threshold is strictly exceeded.
func (m *Monitor) checkAlert(ctx context.Context) {
	s := m.current.Load()
	if s == nil {
		return
	}

	if !exceedsThreshold(s, m.cfg.AlertThreshold) {
		return
	}

	m.logger.Warn("Memory usage above threshold",
		"used_percent", s.UsedPercent, "threshold", m.cfg.AlertThreshold)

	report := buildReport(s, true)
	go m.dispatchAlert(ctx, report)
}

// dispatchAlert sends the alert to the broadcast channel and as a direct
// message to the configured recipient. Failures are logged and not retried.
func (m *Monitor) dispatchAlert(ctx context.Context, report notify.Report) {
	if err := m.notifier.Broadcast(ctx, m.cfg.AlertChannelID, report); err != nil {
		m.logger.Error("Failed to broadcast memory alert", "channel_id", m.cfg.AlertChannelID, "error", err)
	}

	if err := m.notifier.DirectMessage(ctx, m.cfg.AlertUserID, report); err != nil {
		m.logger.Error("Failed to send memory alert DM", "user_id", m.cfg.AlertUserID, "error", err)
	}
}

// writeConsole dumps the latest sample to the operator console.
func (m *Monitor) writeConsole() {
	s := m.current.Load()
	if s == nil {
		return
	}

	if _, err := io.WriteString(m.console, formatConsole(s)); err != nil {
		m.logger.Warn("Failed to write console report", "error", err)
	}
}

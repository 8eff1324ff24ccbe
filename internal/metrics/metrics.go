// Package metrics exposes Prometheus instrumentation for chatkeeper and an
// optional HTTP listener serving /metrics.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesIngested counts messages that passed the full pipeline and
	// were persisted.
	MessagesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatkeeper_messages_ingested_total",
		Help: "Number of messages persisted by the ingestion pipeline.",
	})

	// MessagesFiltered counts messages rejected by the filter chain, by
	// reason.
	MessagesFiltered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatkeeper_messages_filtered_total",
		Help: "Number of messages rejected by the filter chain.",
	}, []string{"reason"})

	// MessagesDropped counts accepted messages lost to persistence errors.
	MessagesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatkeeper_messages_dropped_total",
		Help: "Number of accepted messages dropped due to persistence errors.",
	})

	// RetentionDeleted counts records removed by retention sweeps.
	RetentionDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatkeeper_retention_deleted_total",
		Help: "Number of messages deleted by the retention scheduler.",
	})

	// MemoryUsedPercent mirrors the monitor's latest memory sample.
	MemoryUsedPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatkeeper_memory_used_percent",
		Help: "Used host memory percentage from the latest monitor sample.",
	})
)

// Serve runs the metrics HTTP listener until ctx is cancelled.
func Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "metrics")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("Metrics server shutdown error", "error", err)
		}
	}()

	log.Info("Metrics server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

package logctx

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for context and logger activity.
type Metrics struct {
	// Lifecycle
	ContextsCreated prometheus.Counter
	ContextsClosed  prometheus.Counter
	LoggersCreated  prometheus.Counter

	// Registry activity
	LevelsRegistered prometheus.Counter
	PinnedNodes      prometheus.Gauge

	// Contention and delivery
	SnapshotRetries prometheus.Counter
	PublishFailures prometheus.Counter
}

// NewMetrics creates and registers the package metrics.
//
// This function uses sync.Once so metrics are registered exactly once
// globally, preventing "duplicate metrics collector registration" panics.
//
// All metrics are prefixed with "logctx_":
//   - logctx_contexts_created_total - contexts created
//   - logctx_contexts_closed_total - contexts closed without error
//   - logctx_loggers_created_total - logger nodes created
//   - logctx_levels_registered_total - level registrations
//   - logctx_pinned_nodes - nodes currently pinned
//   - logctx_snapshot_retries_total - snapshot swaps retried under contention
//   - logctx_publish_failures_total - handler publish errors
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			ContextsCreated: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "logctx_contexts_created_total",
					Help: "Total number of log contexts created",
				},
			),

			ContextsClosed: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "logctx_contexts_closed_total",
					Help: "Total number of log contexts closed without error",
				},
			),

			LoggersCreated: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "logctx_loggers_created_total",
					Help: "Total number of logger nodes created",
				},
			),

			LevelsRegistered: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "logctx_levels_registered_total",
					Help: "Total number of level registrations",
				},
			),

			PinnedNodes: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "logctx_pinned_nodes",
					Help: "Number of logger nodes currently pinned",
				},
			),

			SnapshotRetries: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "logctx_snapshot_retries_total",
					Help: "Total number of snapshot swaps retried under contention",
				},
			),

			PublishFailures: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "logctx_publish_failures_total",
					Help: "Total number of handler publish errors",
				},
			),
		}
	})

	return globalMetrics
}

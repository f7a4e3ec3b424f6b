// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Fetch metrics
	TradesFetched       prometheus.Counter
	SubgraphFetchErrors prometheus.Counter

	// Simulation metrics
	SimulationRunsTotal *prometheus.CounterVec
	SimulationDuration  prometheus.Histogram
	TradesSimulated     prometheus.Counter
	TradesSampledOut    prometheus.Counter

	// Sink metrics
	SinkWriteFailures *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRun prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new Metrics instance with all metrics registered
// on a private registry, so multiple instances can coexist.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "uniswap_sim_lab"
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		TradesFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "trades_fetched_total",
			Help:      "Total number of historical trades fetched",
		}),
		SubgraphFetchErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "subgraph_errors_total",
			Help:      "Total number of failed subgraph fetches",
		}),

		SimulationRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Total number of simulation runs by status",
		}, []string{"status"}),
		SimulationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of simulation runs",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		TradesSimulated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "trades_simulated_total",
			Help:      "Total number of simulated trades emitted",
		}),
		TradesSampledOut: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "trades_sampled_out_total",
			Help:      "Total number of fetched trades dropped by sampling",
		}),

		SinkWriteFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sink",
			Name:      "write_failures_total",
			Help:      "Total number of best-effort sink write failures by sink",
		}, []string{"sink"}),

		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp_seconds",
			Help:      "Unix timestamp of the last successful simulation run",
		}),

		registry: registry,
	}
}

// Handler returns an HTTP handler exposing this instance's metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRun records a finished simulation run.
func (m *Metrics) RecordRun(status string, durationSeconds float64) {
	m.SimulationRunsTotal.WithLabelValues(status).Inc()
	m.SimulationDuration.Observe(durationSeconds)
}

// RecordSinkFailure records a best-effort sink write failure.
func (m *Metrics) RecordSinkFailure(sink string) {
	m.SinkWriteFailures.WithLabelValues(sink).Inc()
}

// Package metrics exposes the pipeline's operational counters over a
// dedicated Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	RunsTotal        prometheus.Counter
	RunDuration      prometheus.Histogram
	StreamsCompleted prometheus.Counter
	StreamsFailed    prometheus.Counter
	StreamsSkipped   prometheus.Counter
	ActiveStreams    prometheus.Gauge
	TriggersDropped  prometheus.Counter
}

// New creates the metric set on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "streamdigest_runs_total",
			Help: "Pipeline runs started.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "streamdigest_run_duration_seconds",
			Help:    "Wall-clock duration of pipeline runs.",
			Buckets: prometheus.ExponentialBuckets(30, 2, 10),
		}),
		StreamsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "streamdigest_streams_completed_total",
			Help: "Streams summarized to completion.",
		}),
		StreamsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "streamdigest_streams_failed_total",
			Help: "Streams that failed a stage.",
		}),
		StreamsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "streamdigest_streams_skipped_total",
			Help: "Streams skipped on claim conflict.",
		}),
		ActiveStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "streamdigest_active_streams",
			Help: "Streams currently being processed.",
		}),
		TriggersDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "streamdigest_triggers_dropped_total",
			Help: "Scheduler triggers dropped because a run was active.",
		}),
	}

	m.registry.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.StreamsCompleted,
		m.StreamsFailed,
		m.StreamsSkipped,
		m.ActiveStreams,
		m.TriggersDropped,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricsNamespace = "sieve"

// Selection modes, used as the "mode" label.
const (
	modeOne    = "one"
	modeSubset = "subset"
)

// metrics holds the server's Prometheus collectors.
type metrics struct {
	selections *prometheus.CounterVec
	failures   *prometheus.CounterVec
	kept       *prometheus.HistogramVec
	latency    *prometheus.HistogramVec
}

// newMetrics creates the selection collectors and registers them, with the Go
// and process collectors, on reg.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "selections_total",
			Help:      "Total successful selections by policy and mode.",
		}, []string{"policy", "mode"}),

		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "selection_failures_total",
			Help:      "Total rejected or failed selections by policy and mode.",
		}, []string{"policy", "mode"}),

		kept: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "subset_size",
			Help:      "Number of candidates kept by subset selections.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1 .. 2048
		}, []string{"policy"}),

		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "selection_duration_seconds",
			Help:      "Latency of selections in seconds by mode.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 100us .. ~1.6s
		}, []string{"mode"}),
	}

	reg.MustRegister(
		m.selections,
		m.failures,
		m.kept,
		m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *metrics) observe(policy, mode string, start time.Time, kept int) {
	m.selections.WithLabelValues(policy, mode).Inc()
	m.latency.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	if mode == modeSubset {
		m.kept.WithLabelValues(policy).Observe(float64(kept))
	}
}

func (m *metrics) fail(policy, mode string) {
	m.failures.WithLabelValues(policy, mode).Inc()
}

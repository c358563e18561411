// Package metrics implements the MetricsCollector port with
// Prometheus, exposing request latency, call counts, and token usage
// for the model-backed agents.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/averros/go-moot/internal/ports"
)

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics registers and serves the engine's operational
// metrics in the default Prometheus registry.
type PrometheusMetrics struct {
	latency  *prometheus.HistogramVec
	counters *prometheus.CounterVec
	tokens   *prometheus.CounterVec
}

// NewPrometheusMetrics registers the metric families. Call once per
// process; promauto panics on duplicate registration.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moot_llm_latency_seconds",
				Help:    "Latency of chat-completion requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "model", "status"},
		),
		counters: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moot_llm_requests_total",
				Help: "Total chat-completion requests by model and status.",
			},
			[]string{"model", "status"},
		),
		tokens: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moot_llm_tokens_total",
				Help: "Total tokens consumed by model and direction.",
			},
			[]string{"model", "token_type"},
		),
	}
}

// RecordLatency records an operation duration.
func (pm *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	pm.latency.WithLabelValues(operation, label(labels, "model"), label(labels, "status")).Observe(duration.Seconds())
}

// RecordCounter increments a counter. Token counters are routed by the
// token_type label; everything else lands in the request counter.
func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	if tokenType := label(labels, "token_type"); tokenType != "unknown" {
		pm.tokens.WithLabelValues(label(labels, "model"), tokenType).Add(value)
		return
	}
	pm.counters.WithLabelValues(label(labels, "model"), label(labels, "status")).Add(value)
}

func label(labels map[string]string, key string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return "unknown"
}

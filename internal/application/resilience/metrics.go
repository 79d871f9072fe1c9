package resilience

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters spec.md §4.2 requires: one counter
// per (operation, failure-class) for both attempts and exhaustions.
type Metrics struct {
	attempts    *prometheus.CounterVec
	exhaustions *prometheus.CounterVec
}

// NewMetrics registers the resilience counters against reg. Pass a fresh
// prometheus.Registry in tests to avoid collisions with the global
// DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "walletcore",
				Subsystem: "resilience",
				Name:      "retry_attempts_total",
				Help:      "Total number of use-case invocation attempts, including the first.",
			},
			[]string{"operation", "class"},
		),
		exhaustions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "walletcore",
				Subsystem: "resilience",
				Name:      "retry_exhaustions_total",
				Help:      "Total number of operations that exhausted their retry budget.",
			},
			[]string{"operation", "class"},
		),
	}
}

func (m *Metrics) RecordAttempt(operation, class string) {
	m.attempts.WithLabelValues(operation, class).Inc()
}

func (m *Metrics) RecordExhaustion(operation, class string) {
	m.exhaustions.WithLabelValues(operation, class).Inc()
}

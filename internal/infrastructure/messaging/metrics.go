package messaging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PumpMetrics counts outbox publish attempts, grounded on the teacher's
// promauto.NewCounterVec pattern in middleware/metrics.go.
type PumpMetrics struct {
	published *prometheus.CounterVec
	failures  *prometheus.CounterVec
}

func NewPumpMetrics(reg prometheus.Registerer) *PumpMetrics {
	factory := promauto.With(reg)
	return &PumpMetrics{
		published: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "walletcore",
				Subsystem: "outbox",
				Name:      "published_total",
				Help:      "Total number of outbox records successfully published.",
			},
			[]string{"aggregateType"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "walletcore",
				Subsystem: "outbox",
				Name:      "publish_failures_total",
				Help:      "Total number of outbox records that failed to publish.",
			},
			[]string{"aggregateType"},
		),
	}
}

func (m *PumpMetrics) RecordPublished(aggregateType string) {
	m.published.WithLabelValues(aggregateType).Inc()
}

func (m *PumpMetrics) RecordFailure(aggregateType string) {
	m.failures.WithLabelValues(aggregateType).Inc()
}

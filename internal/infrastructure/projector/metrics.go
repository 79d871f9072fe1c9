package projector

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks how far the read store trails the write store.
type Metrics struct {
	lagSeconds *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		lagSeconds: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "walletcore",
				Subsystem: "projector",
				Name:      "lag_seconds",
				Help:      "Seconds between an outbox event's creation and its application to the read store.",
			},
			[]string{"eventType"},
		),
	}
}

// RecordLag observes how long record sat on the outbox before Apply ran.
func (m *Metrics) RecordLag(eventType string, createdAt time.Time) {
	m.lagSeconds.WithLabelValues(eventType).Set(time.Since(createdAt).Seconds())
}

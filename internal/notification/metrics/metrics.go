// Package metrics exposes the notification read-state counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	MarkedReadTotal prometheus.Counter
	SyncsTotal      prometheus.Counter
}

// New creates and registers the notification feed metrics.
func New() *Metrics {
	return &Metrics{
		MarkedReadTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agora_notifications_marked_read_total",
			Help: "Total notifications flipped to read and confirmed by the backend",
		}),
		SyncsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agora_notification_feed_syncs_total",
			Help: "Total feed re-fetches from the backend",
		}),
	}
}

// AddMarkedRead records n confirmed read-state transitions.
func (m *Metrics) AddMarkedRead(n int) { m.MarkedReadTotal.Add(float64(n)) }

func (m *Metrics) IncrementSyncs() { m.SyncsTotal.Inc() }

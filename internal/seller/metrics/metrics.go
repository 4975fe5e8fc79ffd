// Package metrics exposes the seller onboarding counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SubmittedTotal prometheus.Counter
	AcceptedTotal  prometheus.Counter
	RejectedTotal  prometheus.Counter
}

// New creates and registers the seller workflow metrics.
func New() *Metrics {
	return &Metrics{
		SubmittedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agora_seller_applications_submitted_total",
			Help: "Total seller applications sent to the backend",
		}),
		AcceptedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agora_seller_applications_accepted_total",
			Help: "Total seller applications accepted by the backend",
		}),
		RejectedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agora_seller_applications_rejected_total",
			Help: "Total seller applications rejected as invalid",
		}),
	}
}

func (m *Metrics) IncrementSubmitted() { m.SubmittedTotal.Inc() }
func (m *Metrics) IncrementAccepted()  { m.AcceptedTotal.Inc() }
func (m *Metrics) IncrementRejected()  { m.RejectedTotal.Inc() }

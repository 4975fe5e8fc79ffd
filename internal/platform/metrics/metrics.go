package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gateway-wide Prometheus metrics. Per-domain counters
// live in their own metrics packages (internal/seller/metrics etc.).
type Metrics struct {
	LoginsTotal     prometheus.Counter
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers the shared metrics.
func New() *Metrics {
	return &Metrics{
		LoginsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agora_logins_total",
			Help: "Total number of successful logins through the gateway",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agora_request_duration_seconds",
			Help:    "Duration of handled HTTP requests",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route"}),
	}
}

// IncrementLogins records a successful login.
func (m *Metrics) IncrementLogins() {
	m.LoginsTotal.Inc()
}

// ObserveRequest records the duration of a handled request.
func (m *Metrics) ObserveRequest(route string, start time.Time) {
	m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}

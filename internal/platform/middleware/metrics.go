package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	platformmetrics "agora/internal/platform/metrics"
)

// Metrics records the duration of every handled request. The histogram is
// labelled with the chi route pattern rather than the raw path so parameter
// values never explode the label cardinality.
func Metrics(m *platformmetrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.ObserveRequest(route, start)
		})
	}
}

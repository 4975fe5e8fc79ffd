package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformmetrics "agora/internal/platform/metrics"
)

func TestMetricsObservesRoutePattern(t *testing.T) {
	m := platformmetrics.New()

	router := chi.NewRouter()
	router.Use(Metrics(m))
	router.Get("/api/notifications/{notificationID}/read", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, target := range []string{
		"/api/notifications/1111/read",
		"/api/notifications/2222/read",
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	// Both requests collapse into one labelled series under the pattern.
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration, "agora_request_duration_seconds"))
}

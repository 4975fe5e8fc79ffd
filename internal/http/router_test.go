package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type registrarFunc func(r chi.Router)

func (f registrarFunc) Register(r chi.Router) { f(r) }

func newTestRouter(healthy bool) http.Handler {
	sessionRejects := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

	return NewRouter(Deps{
		Session: sessionRejects,
		Public: []Registrar{registrarFunc(func(r chi.Router) {
			r.Post("/api/auth/login", ok)
		})},
		Protected: []Registrar{registrarFunc(func(r chi.Router) {
			r.Get("/api/auth/user", ok)
		})},
		Pages: registrarFunc(func(r chi.Router) {
			r.Get("/", ok)
			r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			})
		}),
		Health: HealthFunc(func(*http.Request) bool { return healthy }),
	})
}

func do(router http.Handler, method, target string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer tok")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	router := newTestRouter(true)

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/healthz", false).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/metrics", false).Code)
}

func TestRouter_HealthzReportsUnhealthyDependencies(t *testing.T) {
	router := newTestRouter(false)
	assert.Equal(t, http.StatusServiceUnavailable, do(router, http.MethodGet, "/healthz", false).Code)
}

func TestRouter_PublicRoutesSkipSessionGuard(t *testing.T) {
	router := newTestRouter(true)
	assert.Equal(t, http.StatusOK, do(router, http.MethodPost, "/api/auth/login", false).Code)
}

func TestRouter_ProtectedRoutesRequireSession(t *testing.T) {
	router := newTestRouter(true)

	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, "/api/auth/user", false).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/auth/user", true).Code)
}

func TestRouter_PagesAndNotFound(t *testing.T) {
	router := newTestRouter(true)

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/", false).Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/no-such-page", false).Code)
}

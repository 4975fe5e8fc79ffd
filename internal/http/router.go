// Package httpapi assembles the gateway's route surface: the JSON API, the
// guarded page routes, and the operational endpoints.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agora/internal/platform/middleware"
)

// Health reports readiness of the gateway's dependencies.
type Health interface {
	Healthy(r *http.Request) bool
}

// HealthFunc adapts a function to Health.
type HealthFunc func(r *http.Request) bool

func (f HealthFunc) Healthy(r *http.Request) bool { return f(r) }

// Registrar mounts routes onto a chi router.
type Registrar interface {
	Register(r chi.Router)
}

// Deps carries everything the router assembles.
type Deps struct {
	Base       []func(http.Handler) http.Handler
	Session    func(http.Handler) http.Handler
	Public     []Registrar // login, admin login
	Protected  []Registrar // routes behind the session middleware
	Pages      Registrar   // guarded page routes, incl. the not-found view
	Health     Health
	APITimeout time.Duration
}

// NewRouter wires the full route surface. Page routes resolve the session
// themselves (optional auth); the API group splits into public and
// session-guarded subtrees.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	for _, mw := range deps.Base {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if deps.Health != nil && !deps.Health.Healthy(req) {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	timeout := deps.APITimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(timeout))
		api.Use(middleware.ContentTypeJSON)
		for _, reg := range deps.Public {
			reg.Register(api)
		}
	})

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(timeout))
		api.Use(middleware.ContentTypeJSON)
		if deps.Session != nil {
			api.Use(deps.Session)
		}
		for _, reg := range deps.Protected {
			reg.Register(api)
		}
	})

	// Pages go on the root so their not-found view doubles as the router's.
	if deps.Pages != nil {
		deps.Pages.Register(r)
	}

	return r
}

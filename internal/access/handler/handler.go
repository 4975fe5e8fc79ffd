// Package handler serves the page routes, rendering the guard's verdict for
// each navigation: the view state on allow, a real redirect on forward, and
// the terminal denied view on deny.
package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"agora/internal/access"
	"agora/internal/audit"
	"agora/internal/platform/middleware"
	id "agora/pkg/domain"
	httperrors "agora/pkg/http-errors"
)

// views rendered per path when the guard allows.
var views = map[id.Path]string{
	id.PathLanding:         "landing",
	id.PathBuyerDashboard:  "buyer-dashboard",
	id.PathSellerDashboard: "seller-dashboard",
	id.PathAdmin:           "admin",
	id.PathAdminLogin:      "admin-login",
}

type Handler struct {
	validator middleware.TokenValidator
	audit     *audit.Publisher
	logger    *slog.Logger
}

func New(validator middleware.TokenValidator, auditPublisher *audit.Publisher, logger *slog.Logger) *Handler {
	return &Handler{validator: validator, audit: auditPublisher, logger: logger}
}

// Register mounts the page routes. Unknown paths fall through to the
// not-found view; the guard never sees them.
func (h *Handler) Register(r chi.Router) {
	for path := range views {
		r.Get(string(path), h.handlePage(path))
	}
	r.NotFound(h.handleNotFound)
}

type viewState struct {
	View string `json:"view"`
	Path string `json:"path"`
	Tier string `json:"tier"`
}

type deniedState struct {
	View string `json:"view"`
	Tier string `json:"tier"`
	Home string `json:"home"`
}

func (h *Handler) handlePage(path id.Path) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := h.tierStatus(r)
		decision := access.Guard(path, status)

		switch decision.Outcome {
		case access.OutcomeRedirect:
			http.Redirect(w, r, string(decision.RedirectTo), http.StatusFound)

		case access.OutcomeDeny:
			h.recordDenied(r, path, status)
			httperrors.WriteJSON(w, http.StatusForbidden, deniedState{
				View: "access-denied",
				Tier: status.Tier.String(),
				Home: string(id.PathLanding),
			})

		default:
			httperrors.WriteJSON(w, http.StatusOK, viewState{
				View: views[path],
				Path: string(path),
				Tier: status.Tier.String(),
			})
		}
	}
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	httperrors.WriteJSON(w, http.StatusNotFound, viewState{
		View: "not-found",
		Path: r.URL.Path,
		Tier: h.tierStatus(r).Tier.String(),
	})
}

// tierStatus resolves the visitor's tier from the bearer token when one is
// present. Page routes are optionally authenticated: a missing or invalid
// token renders the unauthenticated experience instead of rejecting the
// navigation.
func (h *Handler) tierStatus(r *http.Request) access.TierStatus {
	authHeader := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || token == "" {
		return access.TierStatus{Tier: id.TierUnauthenticated}
	}
	claims, err := h.validator.ValidateToken(token)
	if err != nil {
		return access.TierStatus{Tier: id.TierUnauthenticated}
	}
	return access.TierStatus{Tier: claims.Tier}
}

func (h *Handler) recordDenied(r *http.Request, path id.Path, status access.TierStatus) {
	ctx := r.Context()
	h.logger.WarnContext(ctx, "admin area access denied",
		"path", string(path),
		"tier", status.Tier.String(),
	)
	if h.audit == nil {
		return
	}
	event := audit.Event{
		Action: audit.ActionAdminAccessDenied,
		Detail: map[string]string{"path": string(path), "tier": status.Tier.String()},
	}
	if claims := h.claims(r); claims != nil {
		event.UserID = claims.UserID
	}
	h.audit.Emit(ctx, event)
}

func (h *Handler) claims(r *http.Request) *middleware.TokenClaims {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return nil
	}
	claims, err := h.validator.ValidateToken(token)
	if err != nil {
		return nil
	}
	return claims
}

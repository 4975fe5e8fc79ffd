// Package handler exposes the become-seller endpoint.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"agora/internal/audit"
	"agora/internal/identity"
	"agora/internal/seller"
	id "agora/pkg/domain"
	dErrors "agora/pkg/domain-errors"
	httperrors "agora/pkg/http-errors"
	"agora/pkg/requestcontext"
)

// Onboarding drives a seller application from draft to submitted.
type Onboarding interface {
	Apply(ctx context.Context, userID id.UserID, sessionToken string, draft seller.Draft) (*identity.Identity, error)
}

type Handler struct {
	onboarding Onboarding
	audit      *audit.Publisher
	logger     *slog.Logger
}

func New(onboarding Onboarding, auditPublisher *audit.Publisher, logger *slog.Logger) *Handler {
	return &Handler{onboarding: onboarding, audit: auditPublisher, logger: logger}
}

// Register mounts the seller routes. The router wires the session middleware
// in front.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/become-seller", h.handleBecomeSeller)
}

type becomeSellerResponse struct {
	UpdatedUser userView `json:"updatedUser"`
}

type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *Handler) handleBecomeSeller(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID.IsZero() {
		httperrors.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	var draft seller.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		httperrors.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	h.emit(ctx, userID, audit.ActionApplicationSubmitted, nil)

	updated, err := h.onboarding.Apply(ctx, userID, requestcontext.SessionToken(ctx), draft)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			h.emit(ctx, userID, audit.ActionApplicationRejected, map[string]string{
				"fields": fieldsDetail(err),
			})
		}
		h.logger.ErrorContext(ctx, "seller application failed",
			"user_id", userID.String(),
			"error", err,
		)
		httperrors.WriteError(w, err)
		return
	}

	h.emit(ctx, userID, audit.ActionApplicationAccepted, map[string]string{
		"business_name": draft.BusinessName,
	})
	h.logger.InfoContext(ctx, "seller application accepted", "user_id", userID.String())

	httperrors.WriteJSON(w, http.StatusOK, becomeSellerResponse{UpdatedUser: userView{
		ID:    updated.ID.String(),
		Email: updated.Email,
		Role:  updated.Tier.String(),
	}})
}

func (h *Handler) emit(ctx context.Context, userID id.UserID, action audit.Action, detail map[string]string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(ctx, audit.Event{UserID: userID, Action: action, Detail: detail})
}

func fieldsDetail(err error) string {
	return strings.Join(dErrors.FieldsOf(err), ",")
}

// Package handler exposes the notification feed endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agora/internal/notification"
	notificationmetrics "agora/internal/notification/metrics"
	id "agora/pkg/domain"
	dErrors "agora/pkg/domain-errors"
	httperrors "agora/pkg/http-errors"
	"agora/pkg/requestcontext"
)

// Stores resolves the per-user notification store.
type Stores interface {
	StoreFor(ctx context.Context, userID id.UserID) (*notification.Store, error)
	Sync(ctx context.Context, userID id.UserID) (*notification.Store, error)
}

type Handler struct {
	stores  Stores
	metrics *notificationmetrics.Metrics
	logger  *slog.Logger
}

func New(stores Stores, metrics *notificationmetrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{stores: stores, metrics: metrics, logger: logger}
}

// Register mounts the notification routes. The router wires the session
// middleware in front.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/notifications", h.handleList)
	r.Put("/api/notifications/{notificationID}/read", h.handleMarkRead)
	r.Put("/api/notifications/mark-all-read", h.handleMarkAllRead)
}

type listResponse struct {
	Notifications []notification.Notification `json:"notifications"`
	UnreadCount   int                         `json:"unreadCount"`
}

// handleList returns a filtered view of the feed. Filters compose: ?unread=true
// narrows to unread entries, ?type=order to one type. ?sync=true re-fetches
// from the backend first.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID.IsZero() {
		httperrors.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	var (
		store *notification.Store
		err   error
	)
	if r.URL.Query().Get("sync") == "true" {
		if h.metrics != nil {
			h.metrics.IncrementSyncs()
		}
		store, err = h.stores.Sync(ctx, userID)
	} else {
		store, err = h.stores.StoreFor(ctx, userID)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load notification feed",
			"user_id", userID.String(),
			"error", err,
		)
		httperrors.WriteError(w, err)
		return
	}

	pred := notification.All()
	if r.URL.Query().Get("unread") == "true" {
		pred = notification.Unread()
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		byType, parseErr := notification.ParseType(raw)
		if parseErr != nil {
			httperrors.WriteError(w, parseErr)
			return
		}
		narrower := pred
		pred = func(n notification.Notification) bool {
			return narrower(n) && n.Type == byType
		}
	}

	items := make([]notification.Notification, 0, store.Len())
	for n := range store.Filter(pred) {
		items = append(items, n)
	}
	httperrors.WriteJSON(w, http.StatusOK, listResponse{
		Notifications: items,
		UnreadCount:   store.UnreadCount(),
	})
}

type countResponse struct {
	UnreadCount int `json:"unreadCount"`
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID.IsZero() {
		httperrors.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	notificationID, err := id.ParseNotificationID(chi.URLParam(r, "notificationID"))
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	store, err := h.stores.StoreFor(ctx, userID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if err := store.MarkRead(ctx, notificationID); err != nil {
		h.logger.WarnContext(ctx, "mark read failed",
			"user_id", userID.String(),
			"notification_id", notificationID.String(),
			"error", err,
		)
		httperrors.WriteError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.AddMarkedRead(1)
	}
	httperrors.WriteJSON(w, http.StatusOK, countResponse{UnreadCount: store.UnreadCount()})
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID.IsZero() {
		httperrors.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	store, err := h.stores.StoreFor(ctx, userID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	unreadBefore := store.UnreadCount()
	if err := store.MarkAllRead(ctx); err != nil {
		h.logger.WarnContext(ctx, "mark all read failed",
			"user_id", userID.String(),
			"error", err,
		)
		httperrors.WriteError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.AddMarkedRead(unreadBefore)
	}
	httperrors.WriteJSON(w, http.StatusOK, countResponse{UnreadCount: store.UnreadCount()})
}

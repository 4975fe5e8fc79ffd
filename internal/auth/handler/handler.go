// Package handler exposes the session endpoints: marketplace login, current
// user resolution, and the gateway-local admin login.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"agora/internal/audit"
	"agora/internal/auth/device"
	"agora/internal/identity"
	"agora/internal/identity/cache"
	platformmetrics "agora/internal/platform/metrics"
	id "agora/pkg/domain"
	dErrors "agora/pkg/domain-errors"
	httperrors "agora/pkg/http-errors"
	"agora/pkg/requestcontext"
)

// Authenticator is the backend boundary for credential exchange and token
// resolution.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*identity.Session, error)
	CurrentUser(ctx context.Context, sessionToken string) (*identity.Identity, error)
}

// TokenMinter issues gateway-signed session tokens for identities the
// backend does not know about (the local admin).
type TokenMinter interface {
	GenerateSessionToken(userID id.UserID, tier id.Tier, expiresIn time.Duration) (string, error)
}

// AdminCredentials gates the gateway-local admin login. An empty
// PasswordHash disables the path entirely.
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

type Handler struct {
	backend    Authenticator
	identities cache.Cache
	tokens     TokenMinter
	devices    *device.Service
	metrics    *platformmetrics.Metrics
	audit      *audit.Publisher
	logger     *slog.Logger
	sessionTTL time.Duration
	admin      AdminCredentials
}

func New(
	backend Authenticator,
	identities cache.Cache,
	tokens TokenMinter,
	devices *device.Service,
	metrics *platformmetrics.Metrics,
	auditPublisher *audit.Publisher,
	logger *slog.Logger,
	sessionTTL time.Duration,
	admin AdminCredentials,
) *Handler {
	return &Handler{
		backend:    backend,
		identities: identities,
		tokens:     tokens,
		devices:    devices,
		metrics:    metrics,
		audit:      auditPublisher,
		logger:     logger,
		sessionTTL: sessionTTL,
		admin:      admin,
	}
}

// Register mounts the unauthenticated session routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/auth/login", h.handleLogin)
	r.Post("/api/admin/login", h.handleAdminLogin)
}

// RegisterProtected mounts the routes requiring a valid session.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/api/auth/user", h.handleCurrentUser)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionView struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Token  string `json:"token"`
}

type loginResponse struct {
	Session sessionView `json:"session"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	creds, err := decodeCredentials(r)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	session, err := h.backend.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"email", creds.Email,
			"error", err,
		)
		httperrors.WriteError(w, err)
		return
	}

	tier := id.ParseTier(session.Role)
	fingerprint := h.fingerprint(r)
	h.cacheIdentity(ctx, session.Token, &identity.Identity{
		ID:           session.UserID,
		Email:        session.Email,
		Tier:         tier,
		SessionToken: session.Token,
		Fingerprint:  fingerprint,
	})

	deviceLabel := device.ParseUserAgent(r.UserAgent())
	if h.metrics != nil {
		h.metrics.IncrementLogins()
	}
	if h.audit != nil {
		h.audit.Emit(ctx, audit.Event{
			UserID: session.UserID,
			Action: audit.ActionLogin,
			Detail: map[string]string{"device": deviceLabel},
		})
	}
	h.logger.InfoContext(ctx, "login succeeded",
		"user_id", session.UserID.String(),
		"tier", tier.String(),
		"device", deviceLabel,
		"device_fingerprint", fingerprint,
	)

	httperrors.WriteJSON(w, http.StatusOK, loginResponse{Session: sessionView{
		UserID: session.UserID.String(),
		Email:  session.Email,
		Role:   tier.String(),
		Token:  session.Token,
	}})
}

// handleCurrentUser resolves the session behind the bearer token. The cache
// is consulted first; a miss falls through to the backend, which stays the
// role source of truth.
func (h *Handler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := requestcontext.SessionToken(ctx)
	if token == "" {
		httperrors.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	if h.identities != nil {
		if ident, err := h.identities.Find(ctx, token); err == nil {
			h.checkDeviceDrift(ctx, r, ident)
			writeUser(w, ident)
			return
		}
	}

	ident, err := h.backend.CurrentUser(ctx, token)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	ident.Fingerprint = h.fingerprint(r)
	h.cacheIdentity(ctx, token, ident)
	writeUser(w, ident)
}

// checkDeviceDrift compares the fingerprint stored with the cached snapshot
// against the device behind the current request. Drift is observed and
// audited but never blocks the session; the token is still the credential.
func (h *Handler) checkDeviceDrift(ctx context.Context, r *http.Request, ident *identity.Identity) {
	if h.devices == nil {
		return
	}
	_, drift := h.devices.CompareFingerprints(ident.Fingerprint, h.devices.ComputeFingerprint(r.UserAgent()))
	if !drift {
		return
	}
	deviceLabel := device.ParseUserAgent(r.UserAgent())
	h.logger.WarnContext(ctx, "session device fingerprint drift",
		"user_id", ident.ID.String(),
		"device", deviceLabel,
	)
	if h.audit != nil {
		h.audit.Emit(ctx, audit.Event{
			UserID: ident.ID,
			Action: audit.ActionSessionDeviceDrift,
			Detail: map[string]string{"device": deviceLabel},
		})
	}
}

// handleAdminLogin authenticates against the gateway-local admin credential
// and mints a gateway-signed admin token. The backend never sees this
// identity.
func (h *Handler) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.admin.PasswordHash == "" {
		httperrors.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin login is disabled"))
		return
	}

	creds, err := decodeCredentials(r)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if creds.Email != h.admin.Email ||
		bcrypt.CompareHashAndPassword([]byte(h.admin.PasswordHash), []byte(creds.Password)) != nil {
		h.logger.WarnContext(ctx, "admin login rejected", "email", creds.Email)
		httperrors.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))
		return
	}

	// The admin identity is derived from the configured email so it stays
	// stable across restarts without a user record anywhere.
	adminID := id.UserID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(h.admin.Email)))
	token, err := h.tokens.GenerateSessionToken(adminID, id.TierAdmin, h.sessionTTL)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to mint admin token", "error", err)
		httperrors.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "mint admin token"))
		return
	}
	h.cacheIdentity(ctx, token, &identity.Identity{
		ID:           adminID,
		Email:        h.admin.Email,
		Tier:         id.TierAdmin,
		SessionToken: token,
		Fingerprint:  h.fingerprint(r),
	})

	if h.metrics != nil {
		h.metrics.IncrementLogins()
	}
	if h.audit != nil {
		h.audit.Emit(ctx, audit.Event{
			UserID: adminID,
			Action: audit.ActionLogin,
			Detail: map[string]string{"device": device.ParseUserAgent(r.UserAgent()), "admin": "true"},
		})
	}

	httperrors.WriteJSON(w, http.StatusOK, loginResponse{Session: sessionView{
		UserID: adminID.String(),
		Email:  h.admin.Email,
		Role:   id.TierAdmin.String(),
		Token:  token,
	}})
}

func (h *Handler) cacheIdentity(ctx context.Context, token string, ident *identity.Identity) {
	if h.identities == nil {
		return
	}
	if err := h.identities.Save(ctx, token, ident, h.sessionTTL); err != nil {
		h.logger.WarnContext(ctx, "failed to cache identity",
			"user_id", ident.ID.String(),
			"error", err,
		)
	}
}

func (h *Handler) fingerprint(r *http.Request) string {
	if h.devices == nil {
		return ""
	}
	return h.devices.ComputeFingerprint(r.UserAgent())
}

func decodeCredentials(r *http.Request) (credentials, error) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		return credentials{}, dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	var missing []string
	if creds.Email == "" {
		missing = append(missing, "email")
	}
	if creds.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return credentials{}, dErrors.Invalid("required fields are missing", missing...)
	}
	return creds, nil
}

func writeUser(w http.ResponseWriter, ident *identity.Identity) {
	httperrors.WriteJSON(w, http.StatusOK, userResponse{
		ID:    ident.ID.String(),
		Email: ident.Email,
		Role:  ident.Tier.String(),
	})
}

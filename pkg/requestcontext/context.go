// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them, services read them, and the
// package stays free of net/http so domain code never imports transport.
package requestcontext

import (
	"context"
	"time"

	id "agora/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	userIDKey       struct{}
	tierKey         struct{}
	sessionTokenKey struct{}
	requestIDKey    struct{}
	requestTimeKey  struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyUserID       = userIDKey{}
	ContextKeyTier         = tierKey{}
	ContextKeySessionToken = sessionTokenKey{}
	ContextKeyRequestID    = requestIDKey{}
	ContextKeyRequestTime  = requestTimeKey{}
)

// UserID retrieves the authenticated user ID from the context.
// Returns the zero value (nil UUID) if not set.
func UserID(ctx context.Context) id.UserID {
	if userID, ok := ctx.Value(ContextKeyUserID).(id.UserID); ok {
		return userID
	}
	return id.UserID{}
}

// WithUserID injects a user ID into the context.
func WithUserID(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// Tier retrieves the resolved capability tier from the context.
// Returns TierUnauthenticated if not set.
func Tier(ctx context.Context) id.Tier {
	if tier, ok := ctx.Value(ContextKeyTier).(id.Tier); ok {
		return tier
	}
	return id.TierUnauthenticated
}

// WithTier injects a resolved tier into the context.
func WithTier(ctx context.Context, tier id.Tier) context.Context {
	return context.WithValue(ctx, ContextKeyTier, tier)
}

// SessionToken retrieves the raw session token from the context. The backend
// client forwards it on outbound calls.
func SessionToken(ctx context.Context) string {
	if token, ok := ctx.Value(ContextKeySessionToken).(string); ok {
		return token
	}
	return ""
}

// WithSessionToken injects a session token into the context.
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ContextKeySessionToken, token)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, tests, CLI).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for unit tests
// that don't run the middleware chain and for batch operations that need a
// consistent timestamp.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

package testutil

import (
	"net/http"

	id "agora/pkg/domain"
	"agora/pkg/requestcontext"
)

// WithIdentity injects an authenticated identity into the request context,
// simulating what the RequireSession middleware does.
func WithIdentity(req *http.Request, userID id.UserID, tier id.Tier, token string) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithTier(ctx, tier)
	ctx = requestcontext.WithSessionToken(ctx, token)
	return req.WithContext(ctx)
}

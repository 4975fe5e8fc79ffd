package identity

import (
	"context"
)

// Provider is the boundary to the external identity issuer. GetSession is a
// one-shot read; Subscribe delivers every auth state transition (nil on
// sign-out) until the returned unsubscribe handle is invoked.
type Provider interface {
	GetSession(ctx context.Context) (*Session, error)
	Subscribe(fn func(*Session)) (unsubscribe func(), err error)
}

// Refresher re-fetches the identity behind a session token. The backend's
// GET /api/auth/user is the role source of truth, so tier promotions are
// observed here rather than guessed locally.
type Refresher interface {
	CurrentUser(ctx context.Context, sessionToken string) (*Identity, error)
}

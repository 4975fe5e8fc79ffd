package identity

import (
	"context"
)

// TokenProvider adapts a bearer token plus a Refresher into a Provider, so a
// per-user SessionContext can be stood up server-side. The one-shot read
// resolves the token against the role source of truth; there is no push
// channel, so transitions only arrive through Refresh.
type TokenProvider struct {
	refresher Refresher
	token     string
}

func NewTokenProvider(refresher Refresher, token string) *TokenProvider {
	return &TokenProvider{refresher: refresher, token: token}
}

func (p *TokenProvider) GetSession(ctx context.Context) (*Session, error) {
	ident, err := p.refresher.CurrentUser(ctx, p.token)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID: ident.ID,
		Email:  ident.Email,
		Role:   ident.Tier.String(),
		Token:  p.token,
	}, nil
}

func (p *TokenProvider) Subscribe(func(*Session)) (func(), error) {
	return func() {}, nil
}

var _ Provider = (*TokenProvider)(nil)

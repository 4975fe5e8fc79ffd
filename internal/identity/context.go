package identity

import (
	"context"
	"log/slog"
	"sync"

	id "agora/pkg/domain"
	dErrors "agora/pkg/domain-errors"
	"agora/pkg/platform/sentinel"
)

// SessionContext caches the current identity and keeps it in sync with the
// provider. It is created at startup, passed explicitly to everything that
// needs the signed-in user, and closed on shutdown (which releases the
// provider subscription).
//
// Loading semantics: IsLoading stays true until the first provider
// resolution completes, so route decisions can render a loading state
// instead of redirecting speculatively.
type SessionContext struct {
	provider  Provider
	refresher Refresher
	logger    *slog.Logger

	mu          sync.Mutex
	current     *Identity
	loading     bool
	disposed    bool
	unsubscribe func()
	nextSubID   int
	onChange    map[int]func(*Identity)

	// refreshMu serializes Refresh calls so a refresh in flight is never
	// raced against a stale cached tier.
	refreshMu sync.Mutex
}

// NewSessionContext builds an unstarted session context.
func NewSessionContext(provider Provider, refresher Refresher, logger *slog.Logger) *SessionContext {
	return &SessionContext{
		provider:  provider,
		refresher: refresher,
		logger:    logger,
		loading:   true,
		onChange:  make(map[int]func(*Identity)),
	}
}

// Start subscribes to provider transitions and performs the initial
// one-shot session read. Subscription comes first so a transition arriving
// during the initial read is not lost.
func (c *SessionContext) Start(ctx context.Context) error {
	unsubscribe, err := c.provider.Subscribe(func(s *Session) {
		c.apply(resolve(s))
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "subscribe to identity provider")
	}

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		unsubscribe()
		return sentinel.ErrTornDown
	}
	c.unsubscribe = unsubscribe
	c.mu.Unlock()

	session, err := c.provider.GetSession(ctx)
	if err != nil {
		c.apply(nil)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "read initial session")
	}
	c.apply(resolve(session))
	return nil
}

// Current returns the cached identity, or nil when signed out.
func (c *SessionContext) Current() *Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// IsLoading reports whether the first provider resolution is still pending.
func (c *SessionContext) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// TierState resolves the cached identity. Every redirect decision goes
// through this one path so no component re-derives tier logic.
func (c *SessionContext) TierState() TierState {
	return ResolveTier(c.Current())
}

// OnChange registers a callback invoked on every identity transition
// (including sign-out, with nil). The returned function unregisters it.
func (c *SessionContext) OnChange(fn func(*Identity)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	subID := c.nextSubID
	c.nextSubID++
	c.onChange[subID] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.onChange, subID)
	}
}

// Refresh re-fetches the identity from the role source of truth and installs
// it before returning. Callers that must observe a promotion (the seller
// workflow) call this and only then report success, which guarantees the
// next ResolveTier sees the new tier.
func (c *SessionContext) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return sentinel.ErrTornDown
	}
	current := c.current
	c.mu.Unlock()

	if current == nil {
		return dErrors.New(dErrors.CodeUnauthorized, "no session to refresh")
	}

	refreshed, err := c.refresher.CurrentUser(ctx, current.SessionToken)
	if err != nil {
		return err
	}
	refreshed.SessionToken = current.SessionToken
	c.apply(refreshed)
	return nil
}

// Close releases the provider subscription and marks the context disposed.
// Updates arriving after Close are dropped, never applied.
func (c *SessionContext) Close() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// apply installs a new identity snapshot and fans out to subscribers.
// Callbacks run outside the lock; a disposed context drops the update.
func (c *SessionContext) apply(ident *Identity) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.current = ident
	c.loading = false
	callbacks := make([]func(*Identity), 0, len(c.onChange))
	for _, fn := range c.onChange {
		callbacks = append(callbacks, fn)
	}
	c.mu.Unlock()

	if c.logger != nil {
		tier := id.TierUnauthenticated
		if ident != nil {
			tier = ident.Tier
		}
		c.logger.Debug("session transition", "tier", tier.String())
	}
	for _, fn := range callbacks {
		fn(ident)
	}
}

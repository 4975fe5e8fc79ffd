package cache

import (
	"context"
	"sync"
	"time"

	"agora/internal/identity"
	"agora/pkg/platform/sentinel"
	"agora/pkg/requestcontext"
)

// InMemory is the single-process cache used when redis is not configured.
type InMemory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	ident     identity.Identity
	expiresAt time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[string]memoryEntry)}
}

func (c *InMemory) Save(_ context.Context, sessionToken string, ident *identity.Identity, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key(sessionToken)] = memoryEntry{
		ident:     *ident,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (c *InMemory) Find(ctx context.Context, sessionToken string) (*identity.Identity, error) {
	c.mu.RLock()
	entry, ok := c.entries[key(sessionToken)]
	c.mu.RUnlock()
	if !ok || requestcontext.Now(ctx).After(entry.expiresAt) {
		return nil, sentinel.ErrNotFound
	}
	ident := entry.ident
	return &ident, nil
}

func (c *InMemory) Delete(_ context.Context, sessionToken string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key(sessionToken))
	return nil
}

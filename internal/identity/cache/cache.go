// Package cache stores identity snapshots keyed by session token so a
// restarted gateway can resolve tokens without a backend round trip.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"agora/internal/identity"
)

// Cache persists identity snapshots. Implementations must treat entries as
// ephemeral: the backend remains the role source of truth and a miss is
// never an error condition worth surfacing to users.
type Cache interface {
	Save(ctx context.Context, sessionToken string, ident *identity.Identity, ttl time.Duration) error
	Find(ctx context.Context, sessionToken string) (*identity.Identity, error)
	Delete(ctx context.Context, sessionToken string) error
}

// key hashes the session token so raw tokens never land in the cache store.
func key(sessionToken string) string {
	sum := sha256.Sum256([]byte(sessionToken))
	return "identity:" + hex.EncodeToString(sum[:])
}

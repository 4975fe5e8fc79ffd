//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora/internal/identity"
	id "agora/pkg/domain"
	"agora/pkg/platform/sentinel"
	"agora/pkg/testutil/containers"
)

func TestRedisCache_SaveAndFind(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	cache := NewRedis(rc.Client)

	ident := &identity.Identity{
		ID:           id.UserID(uuid.New()),
		Email:        "seller@example.com",
		Tier:         id.TierSeller,
		SessionToken: "tok-1",
		Fingerprint:  "fp-abc123",
	}
	require.NoError(t, cache.Save(ctx, "tok-1", ident, time.Minute))

	got, err := cache.Find(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, ident.ID, got.ID)
	assert.Equal(t, id.TierSeller, got.Tier)
	assert.Equal(t, "tok-1", got.SessionToken, "the full snapshot survives the round trip")
	assert.Equal(t, "fp-abc123", got.Fingerprint)
}

func TestRedisCache_MissIsNotFound(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	cache := NewRedis(rc.Client)

	_, err := cache.Find(context.Background(), "unknown-token")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestRedisCache_EntryExpires(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	cache := NewRedis(rc.Client)

	ident := &identity.Identity{ID: id.UserID(uuid.New()), Tier: id.TierBuyer}
	require.NoError(t, cache.Save(ctx, "tok-short", ident, 100*time.Millisecond))

	require.Eventually(t, func() bool {
		_, err := cache.Find(ctx, "tok-short")
		return errors.Is(err, sentinel.ErrNotFound)
	}, 3*time.Second, 50*time.Millisecond)
}

func TestRedisCache_DeleteRemovesEntry(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	cache := NewRedis(rc.Client)

	ident := &identity.Identity{ID: id.UserID(uuid.New()), Tier: id.TierBuyer}
	require.NoError(t, cache.Save(ctx, "tok-1", ident, time.Minute))
	require.NoError(t, cache.Delete(ctx, "tok-1"))

	_, err := cache.Find(ctx, "tok-1")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

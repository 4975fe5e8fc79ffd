package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"agora/internal/identity"
	id "agora/pkg/domain"
	"agora/pkg/platform/sentinel"
)

// Redis shares identity snapshots across gateway instances.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// redisIdentity includes the token and fingerprint the in-process Identity
// deliberately omits from JSON, since a cache hit must restore the full
// snapshot.
type redisIdentity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Tier        string `json:"tier"`
	Token       string `json:"token"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

func (c *Redis) Save(ctx context.Context, sessionToken string, ident *identity.Identity, ttl time.Duration) error {
	payload, err := json.Marshal(redisIdentity{
		ID:          ident.ID.String(),
		Email:       ident.Email,
		Tier:        ident.Tier.String(),
		Token:       ident.SessionToken,
		Fingerprint: ident.Fingerprint,
	})
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := c.client.Set(ctx, key(sessionToken), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

func (c *Redis) Find(ctx context.Context, sessionToken string) (*identity.Identity, error) {
	raw, err := c.client.Get(ctx, key(sessionToken)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	var stored redisIdentity
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("unmarshal identity: %w", err)
	}
	userID, err := id.ParseUserID(stored.ID)
	if err != nil {
		return nil, err
	}
	return &identity.Identity{
		ID:           userID,
		Email:        stored.Email,
		Tier:         id.ParseTier(stored.Tier),
		SessionToken: stored.Token,
		Fingerprint:  stored.Fingerprint,
	}, nil
}

func (c *Redis) Delete(ctx context.Context, sessionToken string) error {
	if err := c.client.Del(ctx, key(sessionToken)).Err(); err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-profile-backend/internal/domain"

	"github.com/redis/go-redis/v9"
)

const profileKeyPrefix = "profile:view:"

type profileCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewProfileCache stores read views as JSON under profile:view:<owner>.
func NewProfileCache(client redis.Cmdable, ttl time.Duration) domain.ProfileCache {
	return &profileCache{client: client, ttl: ttl}
}

func profileKey(ownerID string) string {
	return profileKeyPrefix + ownerID
}

func (c *profileCache) Get(ctx context.Context, ownerID string) (*domain.ProfileView, error) {
	raw, err := c.client.Get(ctx, profileKey(ownerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var view domain.ProfileView
	if err := json.Unmarshal(raw, &view); err != nil {
		// unreadable entries are dropped and treated as a miss
		_ = c.client.Del(ctx, profileKey(ownerID)).Err()
		return nil, nil
	}
	return &view, nil
}

func (c *profileCache) Set(ctx context.Context, ownerID string, view *domain.ProfileView) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, profileKey(ownerID), raw, c.ttl).Err()
}

func (c *profileCache) Invalidate(ctx context.Context, ownerID string) error {
	return c.client.Del(ctx, profileKey(ownerID)).Err()
}

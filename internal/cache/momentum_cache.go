package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"interviewprep/internal/model"
)

// momentumTTL bounds how long abandoned session momentum lingers
const momentumTTL = 2 * time.Hour

// MomentumCache stores per-session momentum. Momentum is ephemeral session
// state; losing it costs nothing but the in-session difficulty bias.
type MomentumCache interface {
	// Get returns nil when no momentum exists for the session
	Get(ctx context.Context, sessionID string) (*model.SessionMomentum, error)
	Set(ctx context.Context, m *model.SessionMomentum) error
	Delete(ctx context.Context, sessionID string) error
}

type momentumCache struct {
	client *redis.Client
}

// NewMomentumCache creates a Redis-backed momentum cache
func NewMomentumCache(client *redis.Client) MomentumCache {
	return &momentumCache{client: client}
}

func (c *momentumCache) Get(ctx context.Context, sessionID string) (*model.SessionMomentum, error) {
	data, err := c.client.Get(ctx, "momentum:"+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m model.SessionMomentum
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *momentumCache) Set(ctx context.Context, m *model.SessionMomentum) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "momentum:"+m.SessionID, data, momentumTTL).Err()
}

func (c *momentumCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, "momentum:"+sessionID).Err()
}

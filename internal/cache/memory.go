package cache

import (
	"context"
	"sync"

	"interviewprep/internal/model"
)

type memoryMomentumCache struct {
	mu      sync.RWMutex
	records map[string]model.SessionMomentum
}

// NewMemoryMomentumCache creates an in-memory momentum cache, used when no
// REDIS_URI is configured and by tests
func NewMemoryMomentumCache() MomentumCache {
	return &memoryMomentumCache{records: make(map[string]model.SessionMomentum)}
}

func (c *memoryMomentumCache) Get(_ context.Context, sessionID string) (*model.SessionMomentum, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.records[sessionID]; ok {
		return &m, nil
	}
	return nil, nil
}

func (c *memoryMomentumCache) Set(_ context.Context, m *model.SessionMomentum) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[m.SessionID] = *m
	return nil
}

func (c *memoryMomentumCache) Delete(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, sessionID)
	return nil
}

package memory

import (
	// Go Internal Packages
	"context"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// TokenCache is a process-local cache with per-key expiry.
type TokenCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func NewTokenCache() *TokenCache {
	return NewTokenCacheWithClock(time.Now)
}

// NewTokenCacheWithClock lets tests move time forward.
func NewTokenCacheWithClock(now func() time.Time) *TokenCache {
	return &TokenCache{entries: make(map[string]entry), now: now}
}

func (c *TokenCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return "", false, nil
	}
	return e.value, true, nil
}

func (c *TokenCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *TokenCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

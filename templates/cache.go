package templates

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is the short-lived response cache used by the Resolver.
// Implementations may be remote; errors are treated as misses by callers.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is a bounded in-process Cache with per-entry TTLs.
type MemoryCache struct {
	entries *lru.Cache[string, cacheEntry]
	now     func() time.Time
}

// NewMemoryCache returns a cache holding at most size entries. A nil now uses time.Now.
func NewMemoryCache(size int, now func() time.Time) (*MemoryCache, error) {
	if now == nil {
		now = time.Now
	}
	entries, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{entries: entries, now: now}, nil
}

// Get returns the value for key if it has not expired.
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	e, ok := c.entries.Get(key)
	if !ok {
		return "", false, nil
	}
	if !c.now().Before(e.expiresAt) {
		c.entries.Remove(key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Set stores value under key for ttl.
func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.entries.Add(key, cacheEntry{value: value, expiresAt: c.now().Add(ttl)})
	return nil
}

// Len reports the number of entries, expired or not.
func (c *MemoryCache) Len() int {
	return c.entries.Len()
}

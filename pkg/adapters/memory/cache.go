package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/demark/pkg/domain"
)

type entry struct {
	value   string
	stored  time.Time
	expires time.Time // zero means no expiration
}

// Cache implements ports.Cache in memory.
// Safe for concurrent use.
type Cache struct {
	data  map[string]entry
	mu    sync.RWMutex
	ttl   time.Duration
	limit int
	now   func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the expiration for entries. Zero keeps entries forever.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithLimit caps the number of entries. When full, the oldest entry is evicted.
func WithLimit(limit int) Option {
	return func(c *Cache) {
		c.limit = limit
	}
}

// WithClock overrides the time source used for expiration.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a new in-memory cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		data: make(map[string]entry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value stored under key.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()

	if !ok {
		return "", domain.ErrCacheMiss
	}
	if c.expired(e, c.now()) {
		// Lazy cleanup
		c.mu.Lock()
		if cur, ok := c.data[key]; ok && cur == e {
			delete(c.data, key)
		}
		c.mu.Unlock()
		return "", domain.ErrCacheMiss
	}
	return e.value, nil
}

// Set stores value under key.
func (c *Cache) Set(ctx context.Context, key, value string) error {
	now := c.now()
	e := entry{value: value, stored: now}
	if c.ttl > 0 {
		e.expires = now.Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.data[key]; !exists && c.limit > 0 && len(c.data) >= c.limit {
		c.evict(now)
	}
	c.data[key] = e
	return nil
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *Cache) expired(e entry, now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// evict drops expired entries, or the oldest one if none expired.
// Callers must hold the write lock.
func (c *Cache) evict(now time.Time) {
	var (
		oldestKey string
		oldest    time.Time
		dropped   bool
	)
	for k, e := range c.data {
		if c.expired(e, now) {
			delete(c.data, k)
			dropped = true
			continue
		}
		if oldestKey == "" || e.stored.Before(oldest) {
			oldestKey, oldest = k, e.stored
		}
	}
	if !dropped && oldestKey != "" {
		delete(c.data, oldestKey)
	}
}

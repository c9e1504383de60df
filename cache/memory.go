// Package cache provides in-memory caching implementations.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/CreativeUnicorns/typedprefs"
)

// item represents a single cache item with a payload and an expiration time.
type item struct {
	value      []byte
	expiration time.Time
}

func (it item) expired(now time.Time) bool {
	return !it.expiration.IsZero() && now.After(it.expiration)
}

// MemoryCache implements the Cache interface using an in-memory map.
type MemoryCache struct {
	mu     sync.RWMutex
	items  map[string]item
	stop   chan struct{}
	closed bool
}

// NewMemoryCache initializes a new MemoryCache instance.
// It starts a garbage collection goroutine that removes expired items every gcInterval.
func NewMemoryCache() *MemoryCache {
	return newMemoryCache(time.Minute)
}

func newMemoryCache(gcInterval time.Duration) *MemoryCache {
	c := &MemoryCache{
		items: make(map[string]item),
		stop:  make(chan struct{}),
	}
	go c.gc(gcInterval)
	return c
}

// Get returns the payload stored under key.
// Missing and expired keys return typedprefs.ErrNotFound.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, typedprefs.ErrCacheUnavailable
	}

	it, exists := c.items[key]
	if !exists || it.expired(time.Now()) {
		return nil, typedprefs.ErrNotFound
	}

	return append([]byte(nil), it.value...), nil
}

// Set stores a payload. If ttl is greater than zero the key expires after ttl.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return typedprefs.ErrCacheUnavailable
	}

	var expiration time.Time
	if ttl > 0 {
		expiration = time.Now().Add(ttl)
	}

	c.items[key] = item{
		value:      append([]byte(nil), value...),
		expiration: expiration,
	}
	return nil
}

// Delete removes a key from the cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Len returns the number of unexpired items.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	n := 0
	for _, it := range c.items {
		if !it.expired(now) {
			n++
		}
	}
	return n
}

// Close stops the gc goroutine and drops all items. Closing twice is a no-op.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.stop)
	c.items = make(map[string]item)
	return nil
}

// gc periodically removes expired items.
func (c *MemoryCache) gc(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, it := range c.items {
				if it.expired(now) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

type CacheItem[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// Cache is a TTL map. A zero TTL keeps entries for the life of the process.
type Cache[V any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]CacheItem[V]
	now   func() time.Time
}

func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		ttl:   ttl,
		items: make(map[string]CacheItem[V]),
		now:   time.Now,
	}
}

func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := CacheItem[V]{Value: value}
	if c.ttl > 0 {
		item.ExpiresAt = c.now().Add(c.ttl)
	}
	c.items[key] = item
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		var zero V
		return zero, false
	}

	if !item.ExpiresAt.IsZero() && c.now().After(item.ExpiresAt) {
		delete(c.items, key)
		var zero V
		return zero, false
	}

	return item.Value, true
}

// GenerateKey hashes parts into a fixed-length key.
func GenerateKey(parts ...string) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}

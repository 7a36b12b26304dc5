package cache

import (
	"sync"
	"time"
)

// Cache is a small in-process TTL cache. It backs read-mostly lookups such as
// the category list; writes invalidate explicitly.
type Cache[V any] struct {
	mu  sync.RWMutex
	ttl time.Duration
	now func() time.Time
	m   map[string]entry[V]
	// bumped by Delete; a load that started under an older generation is
	// returned to its caller but not stored.
	gen map[string]uint64
}

type entry[V any] struct {
	val V
	exp time.Time
}

func New[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache[V]{
		ttl: ttl,
		now: time.Now,
		m:   make(map[string]entry[V]),
		gen: make(map[string]uint64),
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()

	if !ok || now.After(e.exp) {
		var zero V
		if ok {
			c.Delete(key)
		}
		return zero, false
	}

	return e.val, true
}

func (c *Cache[V]) Set(key string, val V) {
	c.mu.Lock()
	c.m[key] = entry[V]{val: val, exp: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// GetOrLoad returns the cached value or calls load and caches its result.
// Errors are not cached, and neither is a result whose load overlapped a
// Delete of the same key.
func (c *Cache[V]) GetOrLoad(key string, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	c.mu.RLock()
	gen := c.gen[key]
	c.mu.RUnlock()

	v, err := load()
	if err != nil {
		return v, err
	}

	c.mu.Lock()
	if c.gen[key] == gen {
		c.m[key] = entry[V]{val: v, exp: c.now().Add(c.ttl)}
	}
	c.mu.Unlock()

	return v, nil
}

// Delete drops key and invalidates any load for it that is still running.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.gen[key]++
	c.mu.Unlock()
}

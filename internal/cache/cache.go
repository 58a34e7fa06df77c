package cache

import (
	"crypto/sha256"
	"sync"
)

// Key identifies cached work by the digest of its input.
type Key [sha256.Size]byte

// KeyOf returns the key for input b.
func KeyOf(b []byte) Key { return sha256.Sum256(b) }

// Stats reports cache activity.
type Stats struct {
	Len       int
	Limit     int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is an LRU of values keyed by content digest. Failed creations are
// not cached.
type Cache[V any] struct {
	mu      sync.Mutex
	limit   int
	entries map[Key]*node[V]
	order   lruList[V]
	stats   Stats
}

// New returns a cache holding at most limit entries. A limit below one
// is raised to one.
func New[V any](limit int) *Cache[V] {
	limit = max(limit, 1)
	return &Cache[V]{
		limit:   limit,
		entries: make(map[Key]*node[V], limit),
	}
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[V]) Get(key Key) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	c.order.moveToFront(n)
	return n.value, true
}

// Set stores value under key, evicting the least recently used entry when
// the cache is full.
func (c *Cache[V]) Set(key Key, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
}

func (c *Cache[V]) set(key Key, value V) {
	if n, ok := c.entries[key]; ok {
		n.value = value
		c.order.moveToFront(n)
		return
	}
	for c.order.len >= c.limit {
		old := c.order.popBack()
		delete(c.entries, old.key)
		c.stats.Evictions++
	}
	n := &node[V]{key: key, value: value}
	c.entries[key] = n
	c.order.pushFront(n)
}

// GetOrCreate returns the cached value for key, calling create on a miss.
// create runs with the cache locked, so concurrent callers asking for the
// same key create it once.
func (c *Cache[V]) GetOrCreate(key Key, create func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.entries[key]; ok {
		c.stats.Hits++
		c.order.moveToFront(n)
		return n.value, nil
	}
	c.stats.Misses++
	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	c.set(key, v)
	return v, nil
}

// Delete removes key and reports whether it was present.
func (c *Cache[V]) Delete(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.entries[key]
	if ok {
		c.order.unlink(n)
		delete(c.entries, key)
	}
	return ok
}

// Clear drops every entry. Counters are kept.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.order = lruList[V]{}
}

// Len returns the number of entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.len
}

// Stats returns a snapshot of the counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Len, s.Limit = c.order.len, c.limit
	return s
}

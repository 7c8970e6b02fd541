package consolidate

import (
	"sync"
	"time"

	"github.com/siegeai/siegeingest/jsonschema"
)

// Cache is a caller-owned store of named schemas with a fixed TTL. There is
// deliberately no package-level instance; whoever wants caching constructs
// one and owns its lifecycle.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	schema  jsonschema.Schema
	expires time.Time
}

// NewCache returns a cache whose entries expire ttl after Put. A
// non-positive ttl means entries never expire on their own.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Put stores a copy of s under name, replacing any previous entry.
func (c *Cache) Put(name string, s jsonschema.Schema) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := cacheEntry{schema: s.Clone()}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.entries[name] = e
}

// Get returns a copy of the schema stored under name. Expired entries are
// dropped and reported as misses.
func (c *Cache) Get(name string) (jsonschema.Schema, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[name]
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		delete(c.entries, name)
		return nil, false
	}
	return e.schema.Clone(), true
}

// Invalidate removes the entry stored under name, if any.
func (c *Cache) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len reports the number of stored entries, including any not yet swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

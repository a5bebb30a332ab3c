package genai

import (
	"sync"
	"time"
)

// Cache policy constants. Both bounds are advisory, never correctness-critical.
const (
	// DefaultCacheTTL is how long a cached reply stays fresh.
	DefaultCacheTTL = 5 * time.Minute
	// DefaultMaxCacheEntries bounds the cache size; one arbitrary entry is
	// evicted per insert once the bound is exceeded.
	DefaultMaxCacheEntries = 100
)

type cacheEntry struct {
	reply    string
	cachedAt time.Time
}

// ResponseCache is a bounded, TTL-based in-process reply cache with an
// injected clock. Eviction is unordered, not LRU.
type ResponseCache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewResponseCache creates a cache with the given TTL, size bound, and clock.
func NewResponseCache(ttl time.Duration, maxEntries int, now func() time.Time) *ResponseCache {
	if now == nil {
		now = time.Now
	}
	return &ResponseCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        now,
	}
}

// Get returns the cached reply for key if it is still fresh.
func (c *ResponseCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().Sub(entry.cachedAt) >= c.ttl {
		delete(c.entries, key)
		return "", false
	}
	return entry.reply, true
}

// Put stores a reply, evicting one arbitrary other entry if over the bound.
func (c *ResponseCache) Put(key, reply string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{reply: reply, cachedAt: c.now()}
	if len(c.entries) > c.maxEntries {
		for k := range c.entries {
			if k != key {
				delete(c.entries, k)
				break
			}
		}
	}
}

// Len reports the number of cached entries.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

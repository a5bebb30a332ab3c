package genai

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for cache tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestResponseCacheTTL(t *testing.T) {
	clock := newFakeClock()
	cache := NewResponseCache(5*time.Minute, 10, clock.Now)

	cache.Put("k", "reply")

	if got, ok := cache.Get("k"); !ok || got != "reply" {
		t.Fatalf("Get fresh = (%q, %v), want (reply, true)", got, ok)
	}

	clock.Advance(4 * time.Minute)
	if _, ok := cache.Get("k"); !ok {
		t.Error("entry expired before TTL")
	}

	clock.Advance(time.Minute)
	if _, ok := cache.Get("k"); ok {
		t.Error("entry still fresh at TTL boundary")
	}
	if cache.Len() != 0 {
		t.Errorf("stale entry not dropped, len = %d", cache.Len())
	}
}

func TestResponseCacheMiss(t *testing.T) {
	cache := NewResponseCache(time.Minute, 10, newFakeClock().Now)
	if got, ok := cache.Get("absent"); ok {
		t.Errorf("Get(absent) = (%q, true), want miss", got)
	}
}

func TestResponseCacheEvictionBound(t *testing.T) {
	clock := newFakeClock()
	const max = 5
	cache := NewResponseCache(time.Hour, max, clock.Now)

	for i := 0; i < max+3; i++ {
		cache.Put(fmt.Sprintf("key-%d", i), "reply")
	}

	if cache.Len() != max {
		t.Errorf("len = %d, want bound %d", cache.Len(), max)
	}
	// Eviction is unordered, but it must never evict the entry just added.
	if _, ok := cache.Get("key-7"); !ok {
		t.Error("most recent insert was evicted")
	}
}

func TestResponseCacheOverwrite(t *testing.T) {
	cache := NewResponseCache(time.Hour, 10, newFakeClock().Now)
	cache.Put("k", "old")
	cache.Put("k", "new")
	if got, _ := cache.Get("k"); got != "new" {
		t.Errorf("Get = %q, want new", got)
	}
	if cache.Len() != 1 {
		t.Errorf("len = %d, want 1", cache.Len())
	}
}

// Package cache provides the TTL cache that holds track analyses.
package cache

import (
	"sync"
	"time"

	"github.com/david/syncscout/internal/metrics"
)

// Entry is a cached value with the time it was stored.
type Entry[V any] struct {
	Value     V
	CreatedAt time.Time
}

type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Entries   int   `json:"entries"`
}

// Cache maps keys to values that stay valid for ttl after they are stored.
// Expired entries are dropped on the next lookup or by Prune.
type Cache[V any] struct {
	mu         sync.RWMutex
	entries    map[string]Entry[V]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	statsMu sync.Mutex
	stats   Stats
}

type Option func(*options)

type options struct {
	maxEntries int
	now        func() time.Time
}

// WithMaxEntries bounds the cache. When full, the oldest entry is evicted.
func WithMaxEntries(n int) Option {
	return func(o *options) { o.maxEntries = n }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func New[V any](ttl time.Duration, opts ...Option) *Cache[V] {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return &Cache[V]{
		entries:    make(map[string]Entry[V]),
		ttl:        ttl,
		maxEntries: o.maxEntries,
		now:        o.now,
	}
}

func (c *Cache[V]) fresh(e Entry[V], now time.Time) bool {
	return now.Sub(e.CreatedAt) < c.ttl
}

// Get returns the entry for key if it is younger than the ttl.
func (c *Cache[V]) Get(key string) (Entry[V], bool) {
	now := c.now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.recordMiss()
		return Entry[V]{}, false
	}
	if !c.fresh(e, now) {
		c.mu.Lock()
		// Another writer may have replaced it since the read.
		if cur, still := c.entries[key]; still && !c.fresh(cur, now) {
			delete(c.entries, key)
			c.recordEviction(1)
		}
		c.mu.Unlock()
		c.recordMiss()
		return Entry[V]{}, false
	}

	c.recordHit()
	return e, true
}

// Put stores value under key, replacing any existing entry.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[key] = Entry[V]{Value: value, CreatedAt: c.now()}
	metrics.AnalysisCacheEntries.Set(float64(len(c.entries)))
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.recordEviction(1)
		metrics.AnalysisCacheEntries.Set(float64(len(c.entries)))
	}
}

// Prune removes every expired entry and returns how many were removed.
func (c *Cache[V]) Prune(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if !c.fresh(e, now) {
			delete(c.entries, k)
			removed++
		}
	}
	if removed > 0 {
		c.recordEviction(removed)
	}
	metrics.AnalysisCacheEntries.Set(float64(len(c.entries)))
	return removed
}

func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache[V]) Stats() Stats {
	n := c.Len()
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	s := c.stats
	s.Entries = n
	return s
}

func (c *Cache[V]) evictOldestLocked() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.CreatedAt.Before(oldest) {
			oldestKey, oldest, found = k, e.CreatedAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
		c.recordEviction(1)
	}
}

func (c *Cache[V]) recordHit() {
	c.statsMu.Lock()
	c.stats.Hits++
	c.statsMu.Unlock()
	metrics.AnalysisCacheHits.Inc()
}

func (c *Cache[V]) recordMiss() {
	c.statsMu.Lock()
	c.stats.Misses++
	c.statsMu.Unlock()
	metrics.AnalysisCacheMisses.Inc()
}

func (c *Cache[V]) recordEviction(n int) {
	c.statsMu.Lock()
	c.stats.Evictions += int64(n)
	c.statsMu.Unlock()
	metrics.AnalysisCacheEvictions.Add(float64(n))
}

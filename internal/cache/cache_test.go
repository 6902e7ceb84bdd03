package cache

import (
	"sync"
	"testing"
	"time"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func TestCache_HitWithinTTL(t *testing.T) {
	clk := newClock()
	c := New[string](time.Minute, WithClock(clk.Now))

	c.Put("a", "one")
	clk.Advance(59 * time.Second)

	e, ok := c.Get("a")
	if !ok || e.Value != "one" {
		t.Fatalf("expected hit, got %v %v", e, ok)
	}
	if s := c.Stats(); s.Hits != 1 || s.Misses != 0 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestCache_ExpiredIsMissAndEvicted(t *testing.T) {
	clk := newClock()
	c := New[string](time.Minute, WithClock(clk.Now))

	c.Put("a", "one")
	clk.Advance(time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss at exactly ttl")
	}
	if c.Len() != 0 {
		t.Fatalf("expected lazy eviction, have %d entries", c.Len())
	}
	if s := c.Stats(); s.Misses != 1 || s.Evictions != 1 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestCache_PutOverwrites(t *testing.T) {
	clk := newClock()
	c := New[int](time.Minute, WithClock(clk.Now))

	c.Put("a", 1)
	clk.Advance(50 * time.Second)
	c.Put("a", 2)
	clk.Advance(50 * time.Second)

	e, ok := c.Get("a")
	if !ok || e.Value != 2 {
		t.Fatalf("expected refreshed entry 2, got %v %v", e.Value, ok)
	}
}

func TestCache_Prune(t *testing.T) {
	clk := newClock()
	c := New[int](time.Minute, WithClock(clk.Now))

	c.Put("old", 1)
	clk.Advance(45 * time.Second)
	c.Put("new", 2)
	clk.Advance(30 * time.Second)

	if n := c.Prune(clk.Now()); n != 1 {
		t.Fatalf("expected 1 pruned, got %d", n)
	}
	if _, ok := c.Get("new"); !ok {
		t.Fatal("expected new to survive")
	}
}

func TestCache_MaxEntriesEvictsOldest(t *testing.T) {
	clk := newClock()
	c := New[int](time.Hour, WithClock(clk.Now), WithMaxEntries(2))

	c.Put("a", 1)
	clk.Advance(time.Second)
	c.Put("b", 2)
	clk.Advance(time.Second)
	c.Put("c", 3)

	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected oldest entry evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("expected newest entry kept")
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New[int](time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := string(rune('a' + (i+j)%5))
				c.Put(key, j)
				c.Get(key)
				if j%50 == 0 {
					c.Prune(time.Now())
				}
			}
		}(i)
	}
	wg.Wait()
	if c.Len() > 5 {
		t.Fatalf("expected at most 5 keys, got %d", c.Len())
	}
}

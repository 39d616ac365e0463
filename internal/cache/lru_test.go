// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestLRU(capacity int, ttl time.Duration) (*LRU[int], *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRU[int](capacity, ttl)
	c.now = clk.Now
	return c, clk
}

func TestLRU_BasicOperations(t *testing.T) {
	t.Parallel()

	c, _ := newTestLRU(3, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("unexpected hit")
	}
	c.Add("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("update lost: %v", v)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}

	hits, misses, _, size := c.Stats()
	if hits != 2 || misses != 1 || size != 2 {
		t.Errorf("stats = %d/%d/%d", hits, misses, size)
	}
}

func TestLRU_Eviction(t *testing.T) {
	t.Parallel()

	c, _ := newTestLRU(3, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)
	c.Get("a")
	c.Add("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should be present", k)
		}
	}
	if _, _, ev, _ := c.Stats(); ev != 1 {
		t.Errorf("evictions = %d, want 1", ev)
	}
}

func TestLRU_TTL(t *testing.T) {
	t.Parallel()

	c, clk := newTestLRU(10, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)

	clk.Advance(30 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a expired too early")
	}

	clk.Advance(31 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
	if n := c.CleanupExpired(); n != 1 {
		t.Errorf("CleanupExpired = %d, want 1 (b)", n)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestLRU_RemoveRefusesStaleLoad(t *testing.T) {
	t.Parallel()

	c, _ := newTestLRU(10, time.Minute)

	tok := c.Token()
	// A write lands between the loader's miss and its populate.
	c.Remove("u1")

	if c.AddIfUnchanged("u1", 1, tok) {
		t.Fatal("stale load must not repopulate after invalidation")
	}
	if _, ok := c.Get("u1"); ok {
		t.Fatal("stale value visible")
	}

	fresh := c.Token()
	if !c.AddIfUnchanged("u1", 2, fresh) {
		t.Fatal("fresh load should populate")
	}
	if v, _ := c.Get("u1"); v != 2 {
		t.Errorf("Get = %d, want 2", v)
	}
}

func TestLRU_RemoveOtherKeyDoesNotBlock(t *testing.T) {
	t.Parallel()

	c, _ := newTestLRU(10, time.Minute)
	tok := c.Token()
	c.Remove("other")
	if !c.AddIfUnchanged("u1", 1, tok) {
		t.Error("invalidating another key should not refuse this one")
	}
}

func TestLRU_ClearRefusesOutstandingTokens(t *testing.T) {
	t.Parallel()

	c, _ := newTestLRU(10, time.Minute)
	c.Add("a", 1)
	tok := c.Token()
	c.Clear()

	if c.AddIfUnchanged("b", 1, tok) {
		t.Error("token from before Clear accepted")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d after Clear", c.Len())
	}
}

func TestLRU_RemovalLogIsBounded(t *testing.T) {
	t.Parallel()

	c, _ := newTestLRU(4, time.Minute)
	tok := c.Token()
	for i := 0; i < 20; i++ {
		c.Remove("k" + strconv.Itoa(i))
	}
	if len(c.removedAt) > 4 {
		t.Errorf("removedAt grew to %d", len(c.removedAt))
	}
	// Old token is refused even for keys whose removal record was dropped.
	if c.AddIfUnchanged("k0", 1, tok) {
		t.Error("old token accepted after removal log reset")
	}
}

func TestLRU_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](100, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				k := strconv.Itoa((g*31 + i) % 150)
				switch i % 4 {
				case 0:
					c.Add(k, i)
				case 1:
					c.Get(k)
				case 2:
					c.AddIfUnchanged(k, i, c.Token())
				default:
					c.Remove(k)
				}
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 100 {
		t.Errorf("Len = %d exceeds capacity", c.Len())
	}
}

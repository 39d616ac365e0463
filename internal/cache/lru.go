// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package cache

import (
	"sync"
	"time"
)

type lruEntry[V any] struct {
	key       string
	value     V
	prev      *lruEntry[V]
	next      *lruEntry[V]
	expiresAt time.Time
}

// LRU is a thread-safe least recently used cache with TTL and
// invalidation tracking.
//
// Besides plain Get/Add/Remove it supports guarded population for
// read-through callers: take a Token before loading from the backing store,
// then AddIfUnchanged. If the key was removed after the token was taken the
// add is refused, so a slow load can never overwrite a newer invalidation.
type LRU[V any] struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration
	now      func() time.Time

	items map[string]*lruEntry[V]
	head  *lruEntry[V] // head.next is most recent
	tail  *lruEntry[V] // tail.prev is least recent

	// epoch advances on every Remove/Clear. removedAt holds the epoch of the
	// last removal per key; when it grows past capacity it is dropped and
	// floor rises so older tokens are refused wholesale.
	epoch     uint64
	floor     uint64
	removedAt map[string]uint64

	hits, misses, evictions int64
}

// Token identifies the cache state observed by a read-through loader.
type Token uint64

// NewLRU returns an LRU holding at most capacity entries for ttl each.
// Non-positive values fall back to 10000 entries and 5 minutes.
func NewLRU[V any](capacity int, ttl time.Duration) *LRU[V] {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := &LRU[V]{
		capacity:  capacity,
		ttl:       ttl,
		now:       time.Now,
		items:     make(map[string]*lruEntry[V], capacity),
		head:      &lruEntry[V]{},
		tail:      &lruEntry[V]{},
		removedAt: make(map[string]uint64),
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the value for key when present and not expired.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.unlink(e)
		c.misses++
		return zero, false
	}
	c.moveToFront(e)
	c.hits++
	return e.value, true
}

// Add inserts or replaces key unconditionally.
func (c *LRU[V]) Add(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(key, value)
}

// Token returns the current invalidation epoch. Take it before loading.
func (c *LRU[V]) Token() Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Token(c.epoch)
}

// AddIfUnchanged adds key only if it has not been removed since tok was
// taken. It reports whether the value was stored.
func (c *LRU[V]) AddIfUnchanged(key string, value V, tok Token) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := uint64(tok)
	if t < c.floor {
		return false
	}
	if at, ok := c.removedAt[key]; ok && at > t {
		return false
	}
	c.put(key, value)
	return true
}

// Remove deletes key and records the invalidation. It reports whether an
// entry was present.
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	if len(c.removedAt) >= c.capacity {
		c.removedAt = make(map[string]uint64)
		c.floor = c.epoch
	}
	c.removedAt[key] = c.epoch

	if e, ok := c.items[key]; ok {
		c.unlink(e)
		return true
	}
	return false
}

// Clear drops every entry and refuses all outstanding tokens.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.floor = c.epoch
	c.removedAt = make(map[string]uint64)
	c.items = make(map[string]*lruEntry[V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// CleanupExpired removes expired entries and returns how many were dropped.
func (c *LRU[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for e := c.tail.prev; e != c.head; {
		prev := e.prev
		if now.After(e.expiresAt) {
			c.unlink(e)
			removed++
		}
		e = prev
	}
	return removed
}

// Stats returns hit, miss and eviction counts and the current size.
func (c *LRU[V]) Stats() (hits, misses, evictions int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.evictions, len(c.items)
}

// put requires c.mu.
func (c *LRU[V]) put(key string, value V) {
	exp := c.now().Add(c.ttl)
	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = exp
		c.moveToFront(e)
		return
	}
	e := &lruEntry[V]{key: key, value: value, expiresAt: exp}
	c.pushFront(e)
	c.items[key] = e
	for len(c.items) > c.capacity {
		oldest := c.tail.prev
		if oldest == c.head {
			break
		}
		c.unlink(oldest)
		c.evictions++
	}
}

func (c *LRU[V]) pushFront(e *lruEntry[V]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRU[V]) moveToFront(e *lruEntry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.pushFront(e)
}

func (c *LRU[V]) unlink(e *lruEntry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}

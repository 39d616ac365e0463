// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package profile

import (
	"context"
	"time"

	"github.com/tomtom215/aura/internal/cache"
	"github.com/tomtom215/aura/internal/metrics"
)

// Cache is a read-through profile cache in front of a Store.
//
// It is invalidate-only: writers persist through the Store and then call
// Invalidate, and the next Load fetches the fresh document. Cached values
// are never updated in place. Absent profiles are not cached.
type Cache struct {
	store Store
	lru   *cache.LRU[*Profile] // nil disables caching
}

// NewCache returns a cache over store. capacity <= 0 disables caching and
// every Load goes to the store.
func NewCache(store Store, capacity int, ttl time.Duration) *Cache {
	c := &Cache{store: store}
	if capacity > 0 {
		c.lru = cache.NewLRU[*Profile](capacity, ttl)
	}
	return c
}

// Load returns a private copy of the user's profile, or ErrNotFound.
func (c *Cache) Load(ctx context.Context, userID string) (*Profile, error) {
	if c.lru == nil {
		return c.store.Load(ctx, userID)
	}

	if p, ok := c.lru.Get(userID); ok {
		metrics.RecordCacheLookup(true)
		return p.Clone(), nil
	}
	metrics.RecordCacheLookup(false)

	tok := c.lru.Token()
	p, err := c.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.lru.AddIfUnchanged(userID, p.Clone(), tok)
	return p, nil
}

// Invalidate drops the cached copy. Call it after every successful write.
func (c *Cache) Invalidate(userID string) {
	if c.lru == nil {
		return
	}
	c.lru.Remove(userID)
}

// Len is the number of cached profiles.
func (c *Cache) Len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}

// Store returns the backing store.
func (c *Cache) Store() Store {
	return c.store
}

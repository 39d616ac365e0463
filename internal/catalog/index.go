// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/aura/internal/cache"
	"github.com/tomtom215/aura/internal/logging"
	"github.com/tomtom215/aura/internal/metrics"
)

// ErrNotLoaded is returned by Nearby before the first successful refresh.
var ErrNotLoaded = errors.New("catalog not loaded")

// Source lists the full catalog. database.DB implements it.
type Source interface {
	ListEvents(ctx context.Context) ([]Event, error)
}

// Index is the in-memory event catalog, searchable by radius.
type Index struct {
	grid *cache.GeoGrid[Event]
	// writeMu orders full reloads against single upserts. A refresh holds it
	// from listing to replacing, so an upsert landing meanwhile is applied
	// after the snapshot instead of being wiped by it.
	writeMu  sync.Mutex
	loaded   atomic.Bool
	loadedAt atomic.Int64
}

// NewIndex returns an empty index using cells of cellSizeDeg degrees.
func NewIndex(cellSizeDeg float64) *Index {
	return &Index{grid: cache.NewGeoGrid[Event](cellSizeDeg)}
}

// Refresh replaces the index content with src's events.
func (ix *Index) Refresh(ctx context.Context, src Source) (int, error) {
	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()

	start := time.Now()
	events, err := src.ListEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("list catalog events: %w", err)
	}
	ix.load(events)
	metrics.CatalogRefreshDuration.Observe(time.Since(start).Seconds())

	logging.Debug().Int("events", len(events)).Dur("took", time.Since(start)).Msg("Catalog index refreshed")
	return len(events), nil
}

// Load replaces the index content with events.
func (ix *Index) Load(events []Event) {
	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()
	ix.load(events)
}

func (ix *Index) load(events []Event) {
	byID := make(map[string]Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}
	ix.grid.Replace(byID, func(e Event) (float64, float64) { return e.Lat, e.Lng })
	ix.loaded.Store(true)
	ix.loadedAt.Store(time.Now().UnixNano())
	metrics.CatalogEvents.Set(float64(len(byID)))
}

// Upsert adds or replaces single events without a full reload.
func (ix *Index) Upsert(events ...Event) {
	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()
	for _, e := range events {
		ix.grid.Insert(e.ID, e.Lat, e.Lng, e)
	}
	ix.loaded.Store(true)
	metrics.CatalogEvents.Set(float64(ix.grid.Len()))
}

// Get returns one event by id.
func (ix *Index) Get(id string) (Event, bool) {
	return ix.grid.Get(id)
}

// Nearby returns events within radiusKm of (lat, lng), nearest first,
// capped at limit when limit > 0.
func (ix *Index) Nearby(lat, lng, radiusKm float64, limit int) ([]Event, error) {
	if !ix.loaded.Load() {
		return nil, ErrNotLoaded
	}
	hits := ix.grid.Nearby(lat, lng, radiusKm)
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]Event, len(hits))
	for i, h := range hits {
		out[i] = h.Value
	}
	return out, nil
}

// All returns every event ordered by id.
func (ix *Index) All() ([]Event, error) {
	if !ix.loaded.Load() {
		return nil, ErrNotLoaded
	}
	return ix.grid.All(), nil
}

// Loaded reports whether the index has been populated at least once.
func (ix *Index) Loaded() bool {
	return ix.loaded.Load()
}

func (ix *Index) Len() int {
	return ix.grid.Len()
}

// LoadedAt is the time of the last full load, zero before the first.
func (ix *Index) LoadedAt() time.Time {
	n := ix.loadedAt.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package cache

import (
	"math"
	"sort"
	"sync"
)

const (
	earthRadiusKm = 6371.0
	kmPerDegree   = 111.32
)

type cellKey struct {
	x, y int
}

type geoEntry[T any] struct {
	id    string
	lat   float64
	lng   float64
	value T
	cell  cellKey
}

// GeoHit is one result of a radius query.
type GeoHit[T any] struct {
	ID         string
	DistanceKm float64
	Value      T
}

// GeoGrid is a spatial hash over lat/lng points. A radius query visits only
// the cells overlapping the query's bounding box and then filters by
// great-circle distance.
type GeoGrid[T any] struct {
	mu       sync.RWMutex
	cellSize float64 // degrees
	cells    map[cellKey][]*geoEntry[T]
	byID     map[string]*geoEntry[T]
}

// NewGeoGrid returns an empty grid with square cells of cellSizeDeg degrees.
func NewGeoGrid[T any](cellSizeDeg float64) *GeoGrid[T] {
	if cellSizeDeg <= 0 {
		cellSizeDeg = 0.1
	}
	return &GeoGrid[T]{
		cellSize: cellSizeDeg,
		cells:    make(map[cellKey][]*geoEntry[T]),
		byID:     make(map[string]*geoEntry[T]),
	}
}

func (g *GeoGrid[T]) keyFor(lat, lng float64) cellKey {
	lng = normalizeLng(lng)
	return cellKey{
		x: int(math.Floor(lng / g.cellSize)),
		y: int(math.Floor(lat / g.cellSize)),
	}
}

// Insert adds or moves id.
func (g *GeoGrid[T]) Insert(id string, lat, lng float64, value T) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.insertLocked(id, lat, lng, value)
}

func (g *GeoGrid[T]) insertLocked(id string, lat, lng float64, value T) {
	if old, ok := g.byID[id]; ok {
		g.detachLocked(old)
	}
	e := &geoEntry[T]{id: id, lat: lat, lng: lng, value: value, cell: g.keyFor(lat, lng)}
	g.cells[e.cell] = append(g.cells[e.cell], e)
	g.byID[id] = e
}

// Remove deletes id and reports whether it was present.
func (g *GeoGrid[T]) Remove(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.byID[id]
	if !ok {
		return false
	}
	g.detachLocked(e)
	delete(g.byID, id)
	return true
}

func (g *GeoGrid[T]) detachLocked(e *geoEntry[T]) {
	list := g.cells[e.cell]
	for i, other := range list {
		if other.id == e.id {
			list[i] = list[len(list)-1]
			list = list[:len(list)-1]
			break
		}
	}
	if len(list) == 0 {
		delete(g.cells, e.cell)
		return
	}
	g.cells[e.cell] = list
}

// Get returns the value stored for id.
func (g *GeoGrid[T]) Get(id string) (T, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if e, ok := g.byID[id]; ok {
		return e.value, true
	}
	var zero T
	return zero, false
}

// Nearby returns every entry within radiusKm of (lat, lng), nearest first.
// Equal distances are ordered by id.
func (g *GeoGrid[T]) Nearby(lat, lng, radiusKm float64) []GeoHit[T] {
	if radiusKm <= 0 {
		return nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	dy := int(math.Ceil(radiusKm/kmPerDegree/g.cellSize)) + 1
	// Longitude degrees shrink with latitude. Near the poles scan every column.
	cosLat := math.Cos(lat * math.Pi / 180)
	dx := math.MaxInt32
	if cosLat > 0.01 {
		dx = int(math.Ceil(radiusKm/(kmPerDegree*cosLat)/g.cellSize)) + 1
	}
	center := g.keyFor(lat, lng)

	var hits []GeoHit[T]
	visit := func(list []*geoEntry[T]) {
		for _, e := range list {
			if d := Haversine(lat, lng, e.lat, e.lng); d <= radiusKm {
				hits = append(hits, GeoHit[T]{ID: e.id, DistanceKm: d, Value: e.value})
			}
		}
	}

	columns := int(math.Ceil(360 / g.cellSize))
	if dx >= columns/2 {
		// The window wraps the whole globe; walk the occupied cells instead.
		for k, list := range g.cells {
			if k.y >= center.y-dy && k.y <= center.y+dy {
				visit(list)
			}
		}
	} else {
		for x := center.x - dx; x <= center.x+dx; x++ {
			for y := center.y - dy; y <= center.y+dy; y++ {
				visit(g.cells[cellKey{x: wrapColumn(x, g.cellSize), y: y}])
			}
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].DistanceKm != hits[j].DistanceKm {
			return hits[i].DistanceKm < hits[j].DistanceKm
		}
		return hits[i].ID < hits[j].ID
	})
	return hits
}

// Replace swaps the whole content in one step. Readers see either the old
// or the new set, never a mix.
func (g *GeoGrid[T]) Replace(items map[string]T, locate func(T) (lat, lng float64)) {
	cells := make(map[cellKey][]*geoEntry[T])
	byID := make(map[string]*geoEntry[T], len(items))
	for id, v := range items {
		lat, lng := locate(v)
		e := &geoEntry[T]{id: id, lat: lat, lng: lng, value: v, cell: g.keyFor(lat, lng)}
		cells[e.cell] = append(cells[e.cell], e)
		byID[id] = e
	}

	g.mu.Lock()
	g.cells = cells
	g.byID = byID
	g.mu.Unlock()
}

// All returns every value ordered by id.
func (g *GeoGrid[T]) All() []T {
	g.mu.RLock()
	ids := make([]string, 0, len(g.byID))
	for id := range g.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = g.byID[id].value
	}
	g.mu.RUnlock()
	return out
}

func (g *GeoGrid[T]) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.byID)
}

func (g *GeoGrid[T]) NumCells() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.cells)
}

// Haversine returns the great-circle distance in kilometers.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func normalizeLng(lng float64) float64 {
	for lng >= 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return lng
}

// wrapColumn maps a column index across the antimeridian.
func wrapColumn(x int, cellSize float64) int {
	minX := int(math.Floor(-180 / cellSize))
	maxX := int(math.Floor((180 - 1e-9) / cellSize))
	span := maxX - minX + 1
	for x < minX {
		x += span
	}
	for x > maxX {
		x -= span
	}
	return x
}

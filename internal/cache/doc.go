// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

/*
Package cache provides the in-memory data structures Aura serves from.

# LRU

LRU[V] is a generic, thread-safe LRU with per-entry TTL. It backs the
profile cache. Read-through callers use the token protocol so that an
invalidation racing a slow load wins:

	tok := c.Token()
	p, err := store.Load(ctx, id)
	if err == nil {
	    c.AddIfUnchanged(id, p, tok) // refused if id was removed after Token
	}

# GeoGrid

GeoGrid[T] is a spatial hash keyed by lat/lng. The catalog keeps one
GeoGrid of events and answers "events within r km" by scanning only the
cells around the query point, then filtering by haversine distance.
Replace swaps the whole index in one step on catalog refresh.

Both structures are stdlib only.
*/
package cache

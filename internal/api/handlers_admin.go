// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package api

import (
	"net/http"

	"github.com/tomtom215/aura/internal/catalog"
	"github.com/tomtom215/aura/internal/logging"
)

// UpsertEventsRequest is the body of PUT /v1/admin/events. A batch holds at
// most 1000 events.
type UpsertEventsRequest struct {
	Events []catalog.Event `json:"events" validate:"required,min=1,max=1000,dive"`
}

type upsertEventsResult struct {
	Upserted      int `json:"upserted"`
	CatalogEvents int `json:"catalog_events"`
}

// UpsertEvents handles PUT /v1/admin/events.
//
// Events are written to DuckDB first and then applied to the in-memory
// index, so a failed write never shows up in recommendations. Duplicate ids
// in one batch resolve to the last occurrence.
func (h *Handler) UpsertEvents(w http.ResponseWriter, r *http.Request) {
	var req UpsertEventsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	events := dedupeEvents(req.Events)

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	if err := h.store.UpsertEvents(ctx, events); err != nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeDatabaseError, "failed to store events", err)
		return
	}
	h.index.Upsert(events...)

	logging.Ctx(ctx).Info().
		Int("upserted", len(events)).
		Int("catalog_events", h.index.Len()).
		Msg("Catalog events upserted")

	respondJSON(w, r, http.StatusOK, upsertEventsResult{
		Upserted:      len(events),
		CatalogEvents: h.index.Len(),
	})
}

// dedupeEvents keeps the last event for each id, in first-seen order.
func dedupeEvents(in []catalog.Event) []catalog.Event {
	pos := make(map[string]int, len(in))
	out := make([]catalog.Event, 0, len(in))
	for _, e := range in {
		if i, ok := pos[e.ID]; ok {
			out[i] = e
			continue
		}
		pos[e.ID] = len(out)
		out = append(out, e)
	}
	return out
}

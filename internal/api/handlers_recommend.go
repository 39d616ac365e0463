// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package api

import (
	"net/http"

	"github.com/tomtom215/aura/internal/auth"
	"github.com/tomtom215/aura/internal/recommend"
)

// RecommendFeed handles POST /v1/recommend/feed.
//
// Body: {"lat": 40.71, "lng": -74.0, "radius_km": 10, "count": 30}
func (h *Handler) RecommendFeed(w http.ResponseWriter, r *http.Request) {
	var req recommend.FeedRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	req.UserID = auth.UserID(r.Context())

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	resp, err := h.engine.RecommendFeed(ctx, req)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, resp)
}

// RecommendNatural handles POST /v1/recommend/natural.
//
// Body: {"query": "jazz in brooklyn tonight", "lat": 40.68, "lng": -73.94}
// A parser outage is not an error: the response carries degraded=true.
func (h *Handler) RecommendNatural(w http.ResponseWriter, r *http.Request) {
	var req recommend.NaturalRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if (req.Lat == nil) != (req.Lng == nil) {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "lat and lng must be given together", nil)
		return
	}
	req.UserID = auth.UserID(r.Context())

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	resp, err := h.engine.RecommendNatural(ctx, req)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, resp)
}

// RecommendHighlights handles POST /v1/recommend/highlights.
func (h *Handler) RecommendHighlights(w http.ResponseWriter, r *http.Request) {
	var req recommend.HighlightsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	req.UserID = auth.UserID(r.Context())

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	resp, err := h.engine.RecommendHighlights(ctx, req)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, resp)
}

// SubmitReward handles POST /v1/recommend/feedback/reward.
//
// Body: {"event_id": "evt_123", "action": "purchase", "reward": 1.0}
// The profile update is persisted before the response is written, so the
// next recommendation request already reflects it.
func (h *Handler) SubmitReward(w http.ResponseWriter, r *http.Request) {
	var req recommend.RewardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	req.UserID = auth.UserID(r.Context())

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	result, err := h.engine.SubmitReward(ctx, req)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}

// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package api

import (
	"net/http"
	"strconv"

	"github.com/tomtom215/aura/internal/auth"
	"github.com/tomtom215/aura/internal/logging"
	"github.com/tomtom215/aura/internal/models"
	"github.com/tomtom215/aura/internal/profile"
	"github.com/tomtom215/aura/internal/recommend"
)

// maxBehaviorLimit caps ?behavior=N on the profile view.
const maxBehaviorLimit = 200

// behaviorLogged is the response of LogBehavior.
type behaviorLogged struct {
	BehaviorID string `json:"behavior_id"`
}

// profileView is the response of GetProfile. RecentBehavior is only filled
// when the caller asks for it with ?behavior=N.
type profileView struct {
	Profile        *profile.Profile       `json:"profile"`
	RecentBehavior []models.BehaviorEvent `json:"recent_behavior,omitempty"`
}

// resetResult is the response of ResetProfile.
type resetResult struct {
	Deleted      bool `json:"deleted"`
	DeletedCount int  `json:"deleted_count"`
}

// LogBehavior handles POST /v1/behavior/log.
//
// Behavior on a known event also updates the profile; the raw record is
// always appended to the behavior log.
func (h *Handler) LogBehavior(w http.ResponseWriter, r *http.Request) {
	var req recommend.BehaviorLog
	if !decodeAndValidate(w, r, &req) {
		return
	}
	req.UserID = auth.UserID(r.Context())

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	id, err := h.engine.LogBehavior(ctx, req)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, behaviorLogged{BehaviorID: id})
}

// Onboarding handles POST /v1/user/onboarding.
func (h *Handler) Onboarding(w http.ResponseWriter, r *http.Request) {
	var req recommend.OnboardingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	req.UserID = auth.UserID(r.Context())

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	p, err := h.engine.Onboard(ctx, req)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, p)
}

// GetProfile handles GET /v1/user/profile[?behavior=N].
//
// With behavior=N the N most recent behavior log entries are included for
// debugging. A failing behavior log read is logged and the profile is still
// returned.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("behavior"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxBehaviorLimit {
			respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest,
				"behavior must be an integer between 0 and "+strconv.Itoa(maxBehaviorLimit), nil)
			return
		}
		limit = n
	}

	userID := auth.UserID(r.Context())
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	p, err := h.engine.GetProfile(ctx, userID)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	view := profileView{Profile: p}
	if limit > 0 {
		recent, err := h.store.RecentBehavior(ctx, userID, limit)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to read behavior log for profile view")
		} else {
			view.RecentBehavior = recent
		}
	}
	respondJSON(w, r, http.StatusOK, view)
}

// ResetProfile handles POST /v1/user/reset.
func (h *Handler) ResetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	deleted, err := h.engine.ResetProfile(ctx, auth.UserID(r.Context()))
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	res := resetResult{Deleted: deleted}
	if deleted {
		res.DeletedCount = 1
	}
	respondJSON(w, r, http.StatusOK, res)
}

// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package recommend

import (
	"time"

	"github.com/tomtom215/aura/internal/catalog"
	"github.com/tomtom215/aura/internal/models"
	"github.com/tomtom215/aura/internal/nlparser"
	"github.com/tomtom215/aura/internal/profile"
)

// BehaviorEvent and Action are shared with the event bus and the behavior
// log, which live below this package.
type (
	BehaviorEvent = models.BehaviorEvent
	Action        = models.Action
	SearchFilters = models.SearchFilters
)

// Reasons attached to recommendations.
const (
	ReasonTrending   = "Trending now"
	ReasonCurated    = "Curated for you"
	ReasonNewMember  = "Recommended for new members"
	ReasonExplore    = "Something new for you"
	reasonLovePrefix = "You love "

	HighlightsMessage = "Trending tonight in your area"
)

// Scoring paths reported in responses and metrics.
const (
	PathColdStart = "cold_start"
	PathWarm      = "warm"
	PathNatural   = "natural"
	PathDegraded  = "degraded"
)

// Scored is a candidate with its affinity for one user.
type Scored struct {
	Event       catalog.Event
	Affinity    float64
	Exploration bool
}

// Recommendation is one item of a ranked response.
type Recommendation struct {
	EventID     string  `json:"event_id"`
	Title       string  `json:"title,omitempty"`
	Category    string  `json:"category,omitempty"`
	Score       float64 `json:"score"`
	Reason      string  `json:"reason"`
	Exploration bool    `json:"exploration"`
}

// FeedRequest asks for the personalized home feed around a point.
type FeedRequest struct {
	UserID   string  `json:"-"`
	Lat      float64 `json:"lat" validate:"latitude"`
	Lng      float64 `json:"lng" validate:"longitude"`
	RadiusKm float64 `json:"radius_km,omitempty" validate:"omitempty,gt=0,lte=500"`
	Count    int     `json:"count,omitempty" validate:"omitempty,min=1,max=100"`
}

type FeedResponse struct {
	Events     []Recommendation `json:"events"`
	TotalCount int              `json:"total_count"`
	Path       string           `json:"path"`
}

// HighlightsRequest asks for the trending row shown under stories.
type HighlightsRequest struct {
	UserID   string  `json:"-"`
	Lat      float64 `json:"lat" validate:"latitude"`
	Lng      float64 `json:"lng" validate:"longitude"`
	RadiusKm float64 `json:"radius_km,omitempty" validate:"omitempty,gt=0,lte=500"`
}

type HighlightsResponse struct {
	EventIDs []string `json:"event_ids"`
	Message  string   `json:"message"`
}

// NaturalRequest is a free-text search. The location is optional; without
// it the whole catalog is searched.
type NaturalRequest struct {
	UserID   string   `json:"-"`
	Query    string   `json:"query" validate:"required,min=1,max=500"`
	Lat      *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lng      *float64 `json:"lng,omitempty" validate:"omitempty,longitude"`
	RadiusKm float64  `json:"radius_km,omitempty" validate:"omitempty,gt=0,lte=500"`
}

type NaturalResponse struct {
	ParsedIntent nlparser.ParsedIntent `json:"parsed_intent"`
	Events       []Recommendation      `json:"events"`
	Explanation  string                `json:"explanation"`
	Degraded     bool                  `json:"degraded"`
}

// RewardRequest reports the outcome of a recommendation. Action may be
// empty, in which case it is inferred from Reward. Reward is required; its
// range is checked by the engine.
type RewardRequest struct {
	UserID  string   `json:"-"`
	EventID string   `json:"event_id" validate:"required,max=128"`
	Action  Action   `json:"action,omitempty"`
	Reward  *float64 `json:"reward" validate:"required"`
}

type RewardResult struct {
	BehaviorID         string  `json:"behavior_id"`
	Action             Action  `json:"action"`
	Reward             float64 `json:"reward"`
	ColdStartCompleted bool    `json:"cold_start_completed"`
}

// BehaviorLog is a raw interaction reported by the client.
type BehaviorLog struct {
	UserID         string           `json:"-"`
	Action         Action           `json:"action" validate:"required"`
	EventID        string           `json:"event_id,omitempty" validate:"max=128"`
	Location       *models.GeoPoint `json:"location,omitempty"`
	QueryText      string           `json:"query_text,omitempty" validate:"max=500"`
	SessionID      string           `json:"session_id,omitempty" validate:"max=128"`
	ChosenEventIDs []string         `json:"chosen_event_ids,omitempty" validate:"max=100"`
	FiltersApplied *SearchFilters   `json:"filters_applied,omitempty"`
	Timestamp      time.Time        `json:"timestamp,omitempty"`
}

// OnboardingRequest carries the answers from the onboarding flow.
type OnboardingRequest struct {
	UserID string         `json:"-"`
	Intent profile.Intent `json:"onboarding_intent" validate:"omitempty,oneof=explore create freelance"`
	Age    *int           `json:"age,omitempty" validate:"omitempty,min=13,max=120"`
	Gender profile.Gender `json:"gender,omitempty" validate:"omitempty,oneof=male female non_binary prefer_not_to_say"`
}

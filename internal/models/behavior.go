// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package models

import (
	"strings"
	"time"
)

// Action is a user interaction kind.
type Action string

const (
	ActionSearch       Action = "search"
	ActionViewEvent    Action = "view_event"
	ActionLike         Action = "like"
	ActionRepost       Action = "repost"
	ActionPurchase     Action = "purchase"
	ActionAttend       Action = "attend"
	ActionSkip         Action = "skip"
	ActionNaturalQuery Action = "natural_query"
	ActionOpenApp      Action = "open_app"
)

// ParseAction normalizes a wire value. "view" is accepted as an alias of
// view_event. ok is false for anything unrecognized.
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case "view":
		return ActionViewEvent, true
	case ActionSearch, ActionViewEvent, ActionLike, ActionRepost, ActionPurchase,
		ActionAttend, ActionSkip, ActionNaturalQuery, ActionOpenApp:
		return a, true
	}
	return "", false
}

// IsPurchaseType reports purchase and attend.
func (a Action) IsPurchaseType() bool {
	return a == ActionPurchase || a == ActionAttend
}

// IsLikeType reports like and repost.
func (a Action) IsLikeType() bool {
	return a == ActionLike || a == ActionRepost
}

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SearchFilters are the filters the client had applied when a search or
// natural query was logged. They are stored for analysis only.
type SearchFilters struct {
	Category       string   `json:"category,omitempty" validate:"max=64"`
	PriceMax       *float64 `json:"price_max,omitempty" validate:"omitempty,gte=0"`
	Time           string   `json:"time,omitempty" validate:"max=32"`
	RadiusKm       *float64 `json:"radius_km,omitempty" validate:"omitempty,gt=0,lte=500"`
	AgeRestriction string   `json:"age_restriction,omitempty" validate:"max=16"`
}

// BehaviorEvent is one immutable interaction record. It is appended to the
// behavior log and never modified.
type BehaviorEvent struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	EventID        string         `json:"event_id,omitempty"`
	Action         Action         `json:"action"`
	Timestamp      time.Time      `json:"timestamp"`
	Reward         *float64       `json:"reward,omitempty"`
	Location       *GeoPoint      `json:"location,omitempty"`
	Category       string         `json:"category,omitempty"`
	City           string         `json:"city,omitempty"`
	Neighborhood   string         `json:"neighborhood,omitempty"`
	Price          *float64       `json:"price,omitempty"`
	QueryText      string         `json:"query_text,omitempty"`
	SessionID      string         `json:"session_id,omitempty"`
	ChosenEventIDs []string       `json:"chosen_event_ids,omitempty"`
	FiltersApplied *SearchFilters `json:"filters_applied,omitempty"`
}

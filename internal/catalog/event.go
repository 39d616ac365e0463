// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package catalog

import (
	"strings"
	"time"
)

// Time slot names. Start hours are evaluated in UTC.
const (
	SlotAfternoon    = "Afternoon"     // 12:00-16:59
	SlotEarlyEvening = "Early Evening" // 17:00-18:59
	SlotEvening      = "Evening"       // 19:00-21:59
	SlotLateNight    = "Late Night"    // 22:00-03:59
	SlotAllDay       = "All Day"       // everything else
)

// Age restriction labels.
const (
	Age21Plus = "21+"
	Age18Plus = "18+"
	AllAges   = "All Ages"
)

// Event is a recommendable event from the catalog. The engine treats it as
// read-only.
type Event struct {
	ID              string    `json:"id" validate:"required,max=128"`
	Title           string    `json:"title" validate:"required,max=512"`
	Category        string    `json:"category" validate:"required,max=64"`
	Tags            []string  `json:"tags,omitempty" validate:"max=32,dive,max=64"`
	Price           float64   `json:"price" validate:"gte=0"`
	Lat             float64   `json:"lat" validate:"latitude"`
	Lng             float64   `json:"lng" validate:"longitude"`
	City            string    `json:"city" validate:"max=128"`
	Neighborhood    string    `json:"neighborhood" validate:"max=128"`
	StartsAt        time.Time `json:"starts_at" validate:"required"`
	PopularityScore float64   `json:"popularity_score" validate:"gte=0,lte=1"`
	TrendingScore   float64   `json:"trending_score" validate:"gte=0,lte=1"`
	TrendingAge     int       `json:"trending_age" validate:"gte=0,lte=120"`
	AgeRestriction  string    `json:"age_restriction,omitempty" validate:"omitempty,oneof=21+ 18+ 'All Ages'"`
}

// TimeSlot returns the slot name for the event's start hour.
func (e Event) TimeSlot() string {
	return SlotFor(e.StartsAt)
}

// DayOfWeek returns the UTC weekday the event starts on.
func (e Event) DayOfWeek() time.Weekday {
	return e.StartsAt.UTC().Weekday()
}

// SlotFor maps a time to its slot name.
func SlotFor(t time.Time) string {
	h := t.UTC().Hour()
	switch {
	case h >= 12 && h < 17:
		return SlotAfternoon
	case h >= 17 && h < 19:
		return SlotEarlyEvening
	case h >= 19 && h < 22:
		return SlotEvening
	case h >= 22 || h < 4:
		return SlotLateNight
	default:
		return SlotAllDay
	}
}

// HasTag reports whether the event carries tag, case-insensitively.
func (e Event) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// MatchesAny reports whether the category or any tag equals one of labels.
func (e Event) MatchesAny(labels ...string) bool {
	for _, l := range labels {
		if strings.EqualFold(e.Category, l) || e.HasTag(l) {
			return true
		}
	}
	return false
}

// LocatedIn reports whether loc is a case-insensitive substring of the city
// or neighborhood.
func (e Event) LocatedIn(loc string) bool {
	loc = strings.ToLower(strings.TrimSpace(loc))
	if loc == "" {
		return false
	}
	return strings.Contains(strings.ToLower(e.City), loc) ||
		strings.Contains(strings.ToLower(e.Neighborhood), loc)
}

// AllowsAge reports whether the event's restriction admits the requested
// restriction level. An event with no restriction admits everything.
func (e Event) AllowsAge(restriction string) bool {
	if restriction == "" || e.AgeRestriction == "" {
		return true
	}
	return strings.EqualFold(e.AgeRestriction, restriction)
}

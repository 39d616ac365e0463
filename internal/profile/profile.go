// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package profile

import (
	"time"
)

// Intent is the goal a user picked during onboarding.
type Intent string

const (
	IntentExplore   Intent = "explore"
	IntentCreate    Intent = "create"
	IntentFreelance Intent = "freelance"
)

// Valid reports whether i is a known intent. The empty intent is valid.
func (i Intent) Valid() bool {
	switch i {
	case "", IntentExplore, IntentCreate, IntentFreelance:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale           Gender = "male"
	GenderFemale         Gender = "female"
	GenderNonBinary      Gender = "non_binary"
	GenderPreferNotToSay Gender = "prefer_not_to_say"
)

func (g Gender) Valid() bool {
	switch g {
	case "", GenderMale, GenderFemale, GenderNonBinary, GenderPreferNotToSay:
		return true
	}
	return false
}

// ColdStartThreshold is the number of attended or purchased events after
// which a profile is considered warm.
const ColdStartThreshold = 3

type CategoryScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// PriceRange is the running affordability band learned from purchases and
// likes.
type PriceRange struct {
	Avg          float64 `json:"avg"`
	MaxEverPaid  float64 `json:"max_ever_paid"`
	SweetSpotMin float64 `json:"sweet_spot_min"`
	SweetSpotMax float64 `json:"sweet_spot_max"`
}

// Contains reports whether price lies inside the sweet spot, bounds included.
func (r *PriceRange) Contains(price float64) bool {
	if r == nil {
		return false
	}
	return price >= r.SweetSpotMin && price <= r.SweetSpotMax
}

type LocationPreference struct {
	City         string  `json:"city"`
	Neighborhood string  `json:"neighborhood"`
	Score        float64 `json:"score"`
}

// Profile is the persisted per-user preference document. JSON field names
// are part of the storage format.
type Profile struct {
	UserID              string               `json:"user_id"`
	UpdatedAt           time.Time            `json:"updated_at"`
	OnboardingIntent    Intent               `json:"onboarding_intent,omitempty"`
	Age                 *int                 `json:"age,omitempty"`
	Gender              Gender               `json:"gender,omitempty"`
	PreferredCategories []CategoryScore      `json:"preferred_categories"`
	PreferredPriceRange *PriceRange          `json:"preferred_price_range,omitempty"`
	PreferredTimeSlots  []string             `json:"preferred_time_slots"`
	PreferredDays       []string             `json:"preferred_days"`
	PreferredLocations  []LocationPreference `json:"preferred_locations"`
	TotalEventsAttended int                  `json:"total_events_attended"`
	ColdStartCompleted  bool                 `json:"cold_start_completed"`
	EmbeddingVector     []float64            `json:"embedding_vector,omitempty"`
}

// New returns an empty profile for userID.
func New(userID string, now time.Time) *Profile {
	return &Profile{
		UserID:              userID,
		UpdatedAt:           now.UTC(),
		PreferredCategories: []CategoryScore{},
		PreferredTimeSlots:  []string{},
		PreferredDays:       []string{},
		PreferredLocations:  []LocationPreference{},
	}
}

// Clone returns a deep copy. A nil profile clones to nil.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	if p.Age != nil {
		age := *p.Age
		c.Age = &age
	}
	if p.PreferredPriceRange != nil {
		pr := *p.PreferredPriceRange
		c.PreferredPriceRange = &pr
	}
	c.PreferredCategories = append([]CategoryScore{}, p.PreferredCategories...)
	c.PreferredTimeSlots = append([]string{}, p.PreferredTimeSlots...)
	c.PreferredDays = append([]string{}, p.PreferredDays...)
	c.PreferredLocations = append([]LocationPreference{}, p.PreferredLocations...)
	if p.EmbeddingVector != nil {
		c.EmbeddingVector = append([]float64{}, p.EmbeddingVector...)
	}
	return &c
}

// CategoryScore returns the learned score for category.
func (p *Profile) CategoryScore(name string) (float64, bool) {
	if p == nil {
		return 0, false
	}
	for _, c := range p.PreferredCategories {
		if c.Name == name {
			return c.Score, true
		}
	}
	return 0, false
}

// LocationScore returns the learned score for (city, neighborhood).
func (p *Profile) LocationScore(city, neighborhood string) (float64, bool) {
	if p == nil {
		return 0, false
	}
	for _, l := range p.PreferredLocations {
		if l.City == city && l.Neighborhood == neighborhood {
			return l.Score, true
		}
	}
	return 0, false
}

// TopCategory returns the highest scoring category, or "" when none is known.
// Ties keep the earlier entry.
func (p *Profile) TopCategory() string {
	if p == nil {
		return ""
	}
	best, name := -1.0, ""
	for _, c := range p.PreferredCategories {
		if c.Score > best {
			best, name = c.Score, c.Name
		}
	}
	return name
}

// IsCold reports whether the profile still needs cold-start blending.
func (p *Profile) IsCold() bool {
	return p == nil || !p.ColdStartCompleted
}

// RecomputeColdStart derives ColdStartCompleted from the attendance counter.
func (p *Profile) RecomputeColdStart() {
	p.ColdStartCompleted = p.TotalEventsAttended >= ColdStartThreshold
}

// ResetLearned clears everything learned from behavior while keeping
// identity and demographic fields.
func (p *Profile) ResetLearned() {
	p.PreferredCategories = []CategoryScore{}
	p.PreferredPriceRange = nil
	p.PreferredTimeSlots = []string{}
	p.PreferredDays = []string{}
	p.PreferredLocations = []LocationPreference{}
	p.TotalEventsAttended = 0
	p.ColdStartCompleted = false
}

// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package recommend

import (
	"sort"
	"time"

	"github.com/tomtom215/aura/internal/catalog"
	"github.com/tomtom215/aura/internal/profile"
)

// Weights is the contribution of each cold-start signal to the blended
// score. They are applied as-is, without renormalization.
type Weights struct {
	Popular float64 `json:"popular"`
	Age     float64 `json:"age"`
	Intent  float64 `json:"intent"`
	Time    float64 `json:"time"`
}

// DefaultWeights are the production blend weights.
func DefaultWeights() Weights {
	return Weights{Popular: 0.40, Age: 0.25, Intent: 0.20, Time: 0.15}
}

// Signals holds one eventID -> score map per cold-start signal. A nil map
// is an empty signal.
type Signals struct {
	Popular map[string]float64
	Age     map[string]float64
	Intent  map[string]float64
	Time    map[string]float64
}

// Blended is one fused candidate.
type Blended struct {
	EventID string
	Score   float64
}

// Blend fuses the four signals into one ranking using w.
//
// Each candidate's score is the weighted sum of its clamped signal scores,
// a missing signal contributing 0. Results are ordered by score, then by
// popularity, then by event id, and capped at limit when limit > 0.
func Blend(w Weights, s Signals, popularity map[string]float64, limit int) []Blended {
	totals := make(map[string]float64)
	add := func(m map[string]float64, weight float64) {
		for id, score := range m {
			totals[id] += weight * clamp01(score)
		}
	}
	add(s.Popular, w.Popular)
	add(s.Age, w.Age)
	add(s.Intent, w.Intent)
	add(s.Time, w.Time)

	out := make([]Blended, 0, len(totals))
	for id, score := range totals {
		out = append(out, Blended{EventID: id, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		pa, pb := popularity[a.EventID], popularity[b.EventID]
		if pa != pb {
			return pa > pb
		}
		return a.EventID < b.EventID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Tags that mark an event as a fit for each onboarding intent.
var intentTags = map[profile.Intent][]string{
	profile.IntentExplore:   {"diverse_category"},
	profile.IntentCreate:    {"large_scale", "production_event"},
	profile.IntentFreelance: {"industry_networking", "professional_event"},
}

const (
	ageWindowYears = 3
	sameSlotScore  = 1.0
	otherSlotScore = 0.6
	intentHitScore = 1.0
	defaultUserAge = 25
)

// SignalBuilder derives cold-start signals from a candidate pool.
type SignalBuilder struct {
	// DefaultAge is assumed when the profile carries no age. Zero means 25.
	DefaultAge int
}

// Build computes the four signals for candidates, which are assumed to be
// radius-filtered already. p may be nil.
func (b SignalBuilder) Build(p *profile.Profile, candidates []catalog.Event, now time.Time) Signals {
	age := b.DefaultAge
	if age <= 0 {
		age = defaultUserAge
	}
	intent := profile.IntentExplore
	if p != nil {
		if p.Age != nil {
			age = *p.Age
		}
		if p.OnboardingIntent != "" {
			intent = p.OnboardingIntent
		}
	}
	tags, ok := intentTags[intent]
	if !ok {
		tags = intentTags[profile.IntentExplore]
	}

	now = now.UTC()
	nowSlot := catalog.SlotFor(now)

	s := Signals{
		Popular: make(map[string]float64, len(candidates)),
		Age:     make(map[string]float64),
		Intent:  make(map[string]float64),
		Time:    make(map[string]float64),
	}
	for _, c := range candidates {
		s.Popular[c.ID] = c.PopularityScore

		if c.TrendingAge > 0 && abs(c.TrendingAge-age) <= ageWindowYears {
			s.Age[c.ID] = c.TrendingScore
		}

		if c.MatchesAny(tags...) {
			s.Intent[c.ID] = intentHitScore
		}

		if c.DayOfWeek() == now.Weekday() {
			if c.TimeSlot() == nowSlot {
				s.Time[c.ID] = sameSlotScore
			} else {
				s.Time[c.ID] = otherSlotScore
			}
		}
	}
	return s
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

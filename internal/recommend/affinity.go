// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package recommend

import (
	"github.com/tomtom215/aura/internal/catalog"
	"github.com/tomtom215/aura/internal/profile"
)

const (
	neutralAffinity = 0.5
	sweetSpotBonus  = 0.1
)

// Affinity scores how well e fits the learned profile p, in [0, 1].
//
// The category score (0.5 when unknown) is averaged with the location score
// when the location is known, and a price inside the sweet spot adds 0.1.
func Affinity(e catalog.Event, p *profile.Profile) float64 {
	if p == nil {
		return neutralAffinity
	}
	score, ok := p.CategoryScore(e.Category)
	if !ok {
		score = neutralAffinity
	}
	if loc, ok := p.LocationScore(e.City, e.Neighborhood); ok {
		score = (score + loc) / 2
	}
	if p.PreferredPriceRange.Contains(e.Price) {
		score += sweetSpotBonus
	}
	return clamp01(score)
}

// Reason explains a warm recommendation.
func Reason(e catalog.Event, p *profile.Profile) string {
	if p == nil {
		return ReasonTrending
	}
	if _, ok := p.CategoryScore(e.Category); ok {
		return reasonLovePrefix + e.Category
	}
	return ReasonCurated
}

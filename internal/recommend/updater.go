// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package recommend

import (
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/aura/internal/models"
	"github.com/tomtom215/aura/internal/profile"
)

const (
	// newDimensionBase is the score a category or location starts from the
	// first time a non-neutral action touches it.
	newDimensionBase = 0.5

	priceDecay     = 0.8
	sweetSpotWidth = 0.35
)

var actionDeltas = map[Action]float64{
	models.ActionPurchase:  0.15,
	models.ActionAttend:    0.15,
	models.ActionLike:      0.08,
	models.ActionRepost:    0.08,
	models.ActionViewEvent: 0.02,
	models.ActionSkip:      -0.05,
}

// ActionDelta is the score change an action applies to each affected
// dimension. Recorded-only actions return 0.
func ActionDelta(a Action) float64 {
	return actionDeltas[a]
}

// InferAction maps a bare reward to the action it most likely stands for.
func InferAction(reward float64) Action {
	switch {
	case reward >= 0.8:
		return models.ActionPurchase
	case reward < -0.5:
		return models.ActionSkip
	default:
		return models.ActionLike
	}
}

// ValidateReward rejects rewards outside [-1, 1], NaN included.
func ValidateReward(reward float64) error {
	if math.IsNaN(reward) || reward < -1 || reward > 1 {
		return fmt.Errorf("%w: %v", ErrOutOfRangeReward, reward)
	}
	return nil
}

// Updater turns one behavior event into the next version of a profile.
type Updater struct {
	// ColdStartThreshold is the attendance count that completes cold start.
	// Zero means profile.ColdStartThreshold.
	ColdStartThreshold int
}

// Apply returns the profile that results from ev. It never mutates current;
// a nil current starts a fresh profile for ev.UserID.
//
// The event's category and (city, neighborhood) are the affected
// dimensions, so callers enrich ev from the catalog before applying it.
func (u Updater) Apply(current *profile.Profile, ev *BehaviorEvent, reward float64) (*profile.Profile, error) {
	if ev == nil {
		return nil, errors.New("nil behavior event")
	}
	action, ok := models.ParseAction(string(ev.Action))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEventKind, ev.Action)
	}
	if err := ValidateReward(reward); err != nil {
		return nil, err
	}

	var next *profile.Profile
	if current == nil {
		next = profile.New(ev.UserID, ev.Timestamp)
	} else {
		next = current.Clone()
	}

	if delta := ActionDelta(action); delta != 0 {
		if ev.Category != "" {
			bumpCategory(next, ev.Category, delta)
		}
		if ev.City != "" || ev.Neighborhood != "" {
			bumpLocation(next, ev.City, ev.Neighborhood, delta)
		}
	}

	if price, ok := knownPrice(ev); ok && (action.IsPurchaseType() || action.IsLikeType()) {
		observePrice(next, price, action.IsPurchaseType())
	}

	if action.IsPurchaseType() {
		next.TotalEventsAttended++
	}
	threshold := u.ColdStartThreshold
	if threshold <= 0 {
		threshold = profile.ColdStartThreshold
	}
	next.ColdStartCompleted = next.TotalEventsAttended >= threshold

	if !ev.Timestamp.IsZero() {
		next.UpdatedAt = ev.Timestamp.UTC()
	}
	return next, nil
}

func bumpCategory(p *profile.Profile, name string, delta float64) {
	for i := range p.PreferredCategories {
		if p.PreferredCategories[i].Name == name {
			p.PreferredCategories[i].Score = clamp01(p.PreferredCategories[i].Score + delta)
			return
		}
	}
	p.PreferredCategories = append(p.PreferredCategories, profile.CategoryScore{
		Name:  name,
		Score: clamp01(newDimensionBase + delta),
	})
}

func bumpLocation(p *profile.Profile, city, neighborhood string, delta float64) {
	for i := range p.PreferredLocations {
		l := &p.PreferredLocations[i]
		if l.City == city && l.Neighborhood == neighborhood {
			l.Score = clamp01(l.Score + delta)
			return
		}
	}
	p.PreferredLocations = append(p.PreferredLocations, profile.LocationPreference{
		City:         city,
		Neighborhood: neighborhood,
		Score:        clamp01(newDimensionBase + delta),
	})
}

func knownPrice(ev *BehaviorEvent) (float64, bool) {
	if ev.Price == nil {
		return 0, false
	}
	price := *ev.Price
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, false
	}
	return price, true
}

// observePrice folds price into the running average and recomputes the
// sweet spot around it. The first observation seeds the average.
func observePrice(p *profile.Profile, price float64, purchased bool) {
	pr := p.PreferredPriceRange
	if pr == nil {
		pr = &profile.PriceRange{Avg: price}
		p.PreferredPriceRange = pr
	} else {
		pr.Avg = pr.Avg*priceDecay + price*(1-priceDecay)
	}
	pr.SweetSpotMin = math.Max(0, pr.Avg-sweetSpotWidth*pr.Avg)
	pr.SweetSpotMax = pr.Avg + sweetSpotWidth*pr.Avg
	if purchased && price > pr.MaxEverPaid {
		pr.MaxEverPaid = price
	}
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

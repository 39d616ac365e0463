// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package recommend

import (
	"testing"
	"time"

	"github.com/tomtom215/aura/internal/catalog"
	"github.com/tomtom215/aura/internal/profile"
)

func TestAffinity(t *testing.T) {
	t.Parallel()

	p := profile.New("u1", time.Now())
	p.PreferredCategories = []profile.CategoryScore{{Name: "Techno", Score: 0.9}}
	p.PreferredLocations = []profile.LocationPreference{{City: "New York", Neighborhood: "Brooklyn", Score: 0.5}}
	p.PreferredPriceRange = &profile.PriceRange{Avg: 30, SweetSpotMin: 19.5, SweetSpotMax: 40.5}

	tests := []struct {
		name  string
		event catalog.Event
		p     *profile.Profile
		want  float64
	}{
		{"no profile", catalog.Event{Category: "Techno"}, nil, 0.5},
		{"category only", catalog.Event{Category: "Techno", Price: 100}, p, 0.9},
		{"unknown category", catalog.Event{Category: "Jazz", Price: 100}, p, 0.5},
		{"category and location", catalog.Event{Category: "Techno", City: "New York", Neighborhood: "Brooklyn", Price: 100}, p, 0.7},
		{"sweet spot bonus", catalog.Event{Category: "Jazz", Price: 30}, p, 0.6},
		{"clamped", catalog.Event{Category: "Techno", Price: 20}, p, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Affinity(tt.event, tt.p); !approx(got, tt.want) {
				t.Errorf("Affinity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReason(t *testing.T) {
	t.Parallel()

	p := profile.New("u1", time.Now())
	p.PreferredCategories = []profile.CategoryScore{{Name: "Techno", Score: 0.9}}

	if got := Reason(catalog.Event{Category: "Techno"}, nil); got != ReasonTrending {
		t.Errorf("nil profile reason = %q", got)
	}
	if got := Reason(catalog.Event{Category: "Techno"}, p); got != "You love Techno" {
		t.Errorf("known category reason = %q", got)
	}
	if got := Reason(catalog.Event{Category: "Jazz"}, p); got != ReasonCurated {
		t.Errorf("unknown category reason = %q", got)
	}
}

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

func TestBlend_PopularOnly(t *testing.T) {
	t.Parallel()

	got := Blend(DefaultWeights(), Signals{Popular: map[string]float64{"a": 1.0}}, nil, 0)
	if len(got) != 1 || got[0].EventID != "a" || !approx(got[0].Score, 0.40) {
		t.Errorf("Blend = %+v, want [{a 0.40}]", got)
	}
}

func TestBlend_AllSignalsAndClamp(t *testing.T) {
	t.Parallel()

	s := Signals{
		Popular: map[string]float64{"a": 1.0, "b": 2.0},
		Age:     map[string]float64{"a": 1.0},
		Intent:  map[string]float64{"a": 1.0},
		Time:    map[string]float64{"a": 1.0, "b": -3},
	}
	got := Blend(DefaultWeights(), s, nil, 0)
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].EventID != "a" || !approx(got[0].Score, 1.0) {
		t.Errorf("first = %+v, want {a 1.0}", got[0])
	}
	if got[1].EventID != "b" || !approx(got[1].Score, 0.40) {
		t.Errorf("second = %+v, want {b 0.40} (inputs clamped)", got[1])
	}
}

func TestBlend_TieBreaks(t *testing.T) {
	t.Parallel()

	s := Signals{Popular: map[string]float64{"c": 0.5, "b": 0.5, "a": 0.5, "d": 0.5}}
	popularity := map[string]float64{"d": 0.9, "c": 0.1}
	got := Blend(DefaultWeights(), s, popularity, 3)

	want := []string{"d", "c", "a"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].EventID != id {
			t.Errorf("got[%d] = %s, want %s", i, got[i].EventID, id)
		}
	}
}

func TestBlend_Empty(t *testing.T) {
	t.Parallel()

	if got := Blend(DefaultWeights(), Signals{}, nil, 10); got == nil || len(got) != 0 {
		t.Errorf("Blend(empty) = %#v, want empty slice", got)
	}
}

func TestSignalBuilder_Build(t *testing.T) {
	t.Parallel()

	// Saturday 20:30 UTC is in the Evening slot.
	now := time.Date(2026, 3, 14, 20, 30, 0, 0, time.UTC)
	age := 30
	p := profile.New("u1", now)
	p.Age = &age
	p.OnboardingIntent = profile.IntentCreate

	candidates := []catalog.Event{
		{ID: "same-slot", PopularityScore: 0.9, TrendingScore: 0.8, TrendingAge: 28, StartsAt: time.Date(2026, 3, 21, 19, 0, 0, 0, time.UTC), Tags: []string{"large_scale"}},
		{ID: "other-slot", PopularityScore: 0.3, TrendingScore: 0.5, TrendingAge: 33, StartsAt: time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC), Category: "production_event"},
		{ID: "other-day", PopularityScore: 0.1, TrendingScore: 0.9, TrendingAge: 22, StartsAt: time.Date(2026, 3, 15, 20, 0, 0, 0, time.UTC), Tags: []string{"diverse_category"}},
		{ID: "unknown-age", PopularityScore: 0.2, TrendingScore: 0.9, StartsAt: time.Date(2026, 3, 16, 20, 0, 0, 0, time.UTC)},
	}

	s := SignalBuilder{}.Build(p, candidates, now)

	if len(s.Popular) != 4 || s.Popular["same-slot"] != 0.9 {
		t.Errorf("Popular = %v", s.Popular)
	}
	if len(s.Age) != 2 || s.Age["same-slot"] != 0.8 || s.Age["other-slot"] != 0.5 {
		t.Errorf("Age = %v, want same-slot and other-slot", s.Age)
	}
	if len(s.Intent) != 2 || s.Intent["same-slot"] != 1 || s.Intent["other-slot"] != 1 {
		t.Errorf("Intent = %v, want create matches only", s.Intent)
	}
	if len(s.Time) != 2 || s.Time["same-slot"] != 1.0 || s.Time["other-slot"] != 0.6 {
		t.Errorf("Time = %v", s.Time)
	}
}

func TestSignalBuilder_Defaults(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 20, 30, 0, 0, time.UTC)
	candidates := []catalog.Event{
		{ID: "a", TrendingAge: 25, TrendingScore: 0.7, Tags: []string{"diverse_category"}, StartsAt: now},
		{ID: "b", TrendingAge: 29, TrendingScore: 0.7, Tags: []string{"large_scale"}, StartsAt: now},
	}

	s := SignalBuilder{}.Build(nil, candidates, now)
	if _, ok := s.Age["a"]; !ok {
		t.Error("default age 25 should match trending age 25")
	}
	if _, ok := s.Age["b"]; ok {
		t.Error("trending age 29 is outside the default window")
	}
	if len(s.Intent) != 1 || s.Intent["a"] != 1 {
		t.Errorf("Intent = %v, want explore match on a", s.Intent)
	}
}

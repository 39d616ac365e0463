// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package models

import "testing"

func TestParseAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   Action
		wantOK bool
	}{
		{"purchase", ActionPurchase, true},
		{" Like ", ActionLike, true},
		{"view", ActionViewEvent, true},
		{"view_event", ActionViewEvent, true},
		{"open_app", ActionOpenApp, true},
		{"natural_query", ActionNaturalQuery, true},
		{"bookmark", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseAction(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseAction(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestActionKinds(t *testing.T) {
	t.Parallel()

	if !ActionAttend.IsPurchaseType() || ActionLike.IsPurchaseType() {
		t.Error("IsPurchaseType")
	}
	if !ActionRepost.IsLikeType() || ActionSkip.IsLikeType() {
		t.Error("IsLikeType")
	}
}

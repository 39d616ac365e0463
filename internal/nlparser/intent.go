// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package nlparser

import (
	"context"
	"errors"
)

var (
	// ErrParserTimeout is returned when the parser did not answer in time.
	ErrParserTimeout = errors.New("parser timed out")

	// ErrParserUnavailable covers transport failures, bad responses, an open
	// circuit breaker and local rate limiting.
	ErrParserUnavailable = errors.New("parser unavailable")
)

// DefaultExplanation is shown when no generated explanation is available.
const DefaultExplanation = "Here are personalized event recommendations based on your search."

// ParsedIntent is the structured form of a free-text query. Empty fields
// mean "no constraint".
type ParsedIntent struct {
	Categories     []string `json:"categories"`
	PriceMax       *float64 `json:"price_max"`
	TimeSlot       string   `json:"time_slot,omitempty"`
	Location       string   `json:"location,omitempty"`
	AgeRestriction string   `json:"age_restriction,omitempty"`
	VibeKeywords   []string `json:"vibe_keywords"`
}

// HasConstraints reports whether the intent narrows the candidate set at
// all. Vibe keywords are descriptive and do not count.
func (p ParsedIntent) HasConstraints() bool {
	return len(p.Categories) > 0 || p.PriceMax != nil || p.TimeSlot != "" ||
		p.Location != "" || p.AgeRestriction != ""
}

// FallbackIntent is the intent used when nothing could be extracted.
func FallbackIntent() ParsedIntent {
	return ParsedIntent{Categories: []string{}, VibeKeywords: []string{"general"}}
}

// Parser turns a query into an intent and explains a result set.
type Parser interface {
	Parse(ctx context.Context, query string) (ParsedIntent, error)
	Explain(ctx context.Context, query string, intent ParsedIntent, count int) (string, error)
}

// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package nlparser

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// Time slot names as stored on catalog events.
const (
	slotAfternoon    = "Afternoon"
	slotEarlyEvening = "Early Evening"
	slotEvening      = "Evening"
	slotLateNight    = "Late Night"
)

var (
	pricePattern = regexp.MustCompile(`(?:under|below|less than|max|cheaper than|up to)\s*\$?\s*(\d+(?:\.\d+)?)|\$(\d+(?:\.\d+)?)\s*(?:or less|max)`)
	// Stops at the next keyword that usually follows a place.
	locationPattern = regexp.MustCompile(`\b(?:in|near|around|at)\s+([a-z][a-z ]*?)(?:\s+(?:tonight|today|tomorrow|this|under|below|for|with|on|after|before|less|max)\b|[,.!?]|$)`)
	agePattern      = regexp.MustCompile(`\b(21\+|18\+|all ages)`)
	wordPattern     = regexp.MustCompile(`[a-z0-9+-]+`)
)

// categoryVocabulary maps query words to catalog category or tag labels.
var categoryVocabulary = map[string]string{
	"techno":     "techno",
	"house":      "house",
	"hip-hop":    "hip-hop",
	"hiphop":     "hip-hop",
	"rap":        "hip-hop",
	"jazz":       "jazz",
	"comedy":     "comedy",
	"standup":    "comedy",
	"theater":    "theater",
	"theatre":    "theater",
	"music":      "music",
	"concert":    "music",
	"concerts":   "music",
	"art":        "art",
	"gallery":    "art",
	"food":       "food",
	"dance":      "dance",
	"salsa":      "dance",
	"film":       "film",
	"movie":      "film",
	"networking": "networking",
	"tech":       "tech",
	"festival":   "festival",
	"nightlife":  "nightlife",
	"trivia":     "trivia",
	"pop":        "pop",
	"rock":       "rock",
}

var vibeVocabulary = []string{
	"intimate", "energetic", "chill", "underground", "mainstream",
	"cozy", "loud", "outdoor", "rooftop", "romantic", "casual",
}

// KeywordParser extracts an intent with fixed vocabularies and patterns.
// It never fails and never blocks.
type KeywordParser struct{}

// NewKeywordParser returns the local fallback parser.
func NewKeywordParser() *KeywordParser {
	return &KeywordParser{}
}

// Parse extracts whatever it recognizes. A query with nothing recognizable
// yields FallbackIntent.
func (KeywordParser) Parse(_ context.Context, query string) (ParsedIntent, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	intent := ParsedIntent{Categories: []string{}, VibeKeywords: []string{}}

	seen := make(map[string]bool)
	free := false
	for _, w := range wordPattern.FindAllString(q, -1) {
		if w == "free" {
			free = true
		}
		if c, ok := categoryVocabulary[w]; ok && !seen[c] {
			seen[c] = true
			intent.Categories = append(intent.Categories, c)
		}
	}
	for _, v := range vibeVocabulary {
		if strings.Contains(q, v) {
			intent.VibeKeywords = append(intent.VibeKeywords, v)
		}
	}

	if m := pricePattern.FindStringSubmatch(q); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if p, err := strconv.ParseFloat(raw, 64); err == nil {
			intent.PriceMax = &p
		}
	}
	if free && intent.PriceMax == nil {
		zero := 0.0
		intent.PriceMax = &zero
	}

	intent.TimeSlot = keywordSlot(q)

	if m := locationPattern.FindStringSubmatch(q); m != nil {
		loc := strings.TrimSpace(m[1])
		if _, isCategory := categoryVocabulary[loc]; !isCategory && loc != "the" {
			intent.Location = loc
		}
	}

	if m := agePattern.FindStringSubmatch(q); m != nil {
		switch m[1] {
		case "all ages":
			intent.AgeRestriction = "All Ages"
		default:
			intent.AgeRestriction = m[1]
		}
	}

	if !intent.HasConstraints() && len(intent.VibeKeywords) == 0 {
		return FallbackIntent(), nil
	}
	return intent, nil
}

// Explain always returns DefaultExplanation.
func (KeywordParser) Explain(context.Context, string, ParsedIntent, int) (string, error) {
	return DefaultExplanation, nil
}

func keywordSlot(q string) string {
	switch {
	case strings.Contains(q, "late night"), strings.Contains(q, "after midnight"), strings.Contains(q, "late-night"):
		return slotLateNight
	case strings.Contains(q, "early evening"), strings.Contains(q, "after work"), strings.Contains(q, "happy hour"):
		return slotEarlyEvening
	case strings.Contains(q, "tonight"), strings.Contains(q, "evening"):
		return slotEvening
	case strings.Contains(q, "afternoon"):
		return slotAfternoon
	default:
		return ""
	}
}

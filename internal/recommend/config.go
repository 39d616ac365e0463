// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package recommend

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/aura/internal/config"
	"github.com/tomtom215/aura/internal/profile"
)

// Config contains the engine's tunables.
type Config struct {
	// Weights of the cold-start blend.
	Weights Weights

	// ExploitBP is the exploit share of every selection in basis points.
	ExploitBP int

	// Epsilon is the explore sampling floor added to every affinity.
	Epsilon float64

	// Seed for exploration sampling. Zero seeds from the clock.
	Seed int64

	DefaultFeedCount  int
	MaxFeedCount      int
	MaxNaturalResults int

	// DefaultRadiusKm applies when a request carries no radius.
	DefaultRadiusKm float64

	// MaxCandidates caps how many nearby events are scored per request.
	// Zero means no cap.
	MaxCandidates int

	HighlightsThreshold float64
	HighlightsMax       int
	HighlightsMin       int

	ColdStartThreshold int
	DefaultAge         int

	// ParserTimeout bounds each call to the external parser.
	ParserTimeout time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights:             DefaultWeights(),
		ExploitBP:           8500,
		Epsilon:             0.05,
		DefaultFeedCount:    30,
		MaxFeedCount:        100,
		MaxNaturalResults:   50,
		DefaultRadiusKm:     25,
		MaxCandidates:       1000,
		HighlightsThreshold: 0.7,
		HighlightsMax:       10,
		HighlightsMin:       5,
		ColdStartThreshold:  profile.ColdStartThreshold,
		DefaultAge:          25,
		ParserTimeout:       2 * time.Second,
	}
}

// ConfigFrom builds the engine config from the application config.
func ConfigFrom(cfg *config.Config) *Config {
	c := DefaultConfig()
	r := cfg.Recommend
	c.Weights = Weights{
		Popular: r.WeightPopular,
		Age:     r.WeightAge,
		Intent:  r.WeightIntent,
		Time:    r.WeightTime,
	}
	c.ExploitBP = int(math.Round(r.ExploitRatio * basisPoints))
	c.Epsilon = r.Epsilon
	c.Seed = r.Seed
	c.DefaultFeedCount = r.DefaultFeedCount
	c.MaxFeedCount = r.MaxFeedCount
	c.MaxNaturalResults = r.MaxNaturalResults
	c.HighlightsThreshold = r.HighlightsThreshold
	c.ColdStartThreshold = r.ColdStartThreshold
	c.DefaultAge = r.DefaultAge

	if cfg.Catalog.DefaultRadiusKm > 0 {
		c.DefaultRadiusKm = cfg.Catalog.DefaultRadiusKm
	}
	c.MaxCandidates = cfg.Catalog.MaxCandidates
	if cfg.Parser.Timeout > 0 {
		c.ParserTimeout = cfg.Parser.Timeout
	}
	return c
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	for name, w := range map[string]float64{
		"weights.popular": c.Weights.Popular,
		"weights.age":     c.Weights.Age,
		"weights.intent":  c.Weights.Intent,
		"weights.time":    c.Weights.Time,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %f", name, w)
		}
	}
	if c.ExploitBP < 0 || c.ExploitBP > basisPoints {
		return fmt.Errorf("exploit_bp must be in [0, %d], got %d", basisPoints, c.ExploitBP)
	}
	if c.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, got %f", c.Epsilon)
	}
	if c.DefaultFeedCount < 1 || c.MaxFeedCount < c.DefaultFeedCount {
		return fmt.Errorf("feed counts must satisfy 1 <= default (%d) <= max (%d)", c.DefaultFeedCount, c.MaxFeedCount)
	}
	if c.MaxNaturalResults < 1 {
		return fmt.Errorf("max_natural_results must be positive, got %d", c.MaxNaturalResults)
	}
	if c.DefaultRadiusKm <= 0 {
		return fmt.Errorf("default_radius_km must be positive, got %f", c.DefaultRadiusKm)
	}
	if c.MaxCandidates < 0 {
		return fmt.Errorf("max_candidates must be non-negative, got %d", c.MaxCandidates)
	}
	if c.HighlightsThreshold < 0 || c.HighlightsThreshold > 1 {
		return fmt.Errorf("highlights_threshold must be in [0, 1], got %f", c.HighlightsThreshold)
	}
	if c.HighlightsMin < 0 || c.HighlightsMax < c.HighlightsMin {
		return fmt.Errorf("highlights bounds must satisfy 0 <= min (%d) <= max (%d)", c.HighlightsMin, c.HighlightsMax)
	}
	if c.ColdStartThreshold < 1 {
		return fmt.Errorf("cold_start_threshold must be positive, got %d", c.ColdStartThreshold)
	}
	if c.ParserTimeout <= 0 {
		return fmt.Errorf("parser_timeout must be positive, got %s", c.ParserTimeout)
	}
	return nil
}

// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validate checks the loaded configuration. All problems are reported
// together, joined with errors.Join.
func (c *Config) Validate() error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	add(c.validateServer())
	add(c.validateStore())
	add(c.validateCatalog())
	add(c.validateParser())
	add(c.validateEventBus())
	add(c.validateSecurity())
	add(c.validateRecommend())

	return errors.Join(errs...)
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	return nil
}

func (c *Config) validateStore() error {
	if !c.Store.InMemory && c.Store.Path == "" {
		return errors.New("store.path is required unless store.in_memory is set")
	}
	if c.Store.ConflictRetries < 1 {
		return fmt.Errorf("store.conflict_retries must be at least 1, got %d", c.Store.ConflictRetries)
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.CellSizeDeg <= 0 || c.Catalog.CellSizeDeg > 10 {
		return fmt.Errorf("catalog.cell_size_deg must be in (0, 10], got %v", c.Catalog.CellSizeDeg)
	}
	if c.Catalog.DefaultRadiusKm <= 0 {
		return fmt.Errorf("catalog.default_radius_km must be positive, got %v", c.Catalog.DefaultRadiusKm)
	}
	return nil
}

func (c *Config) validateParser() error {
	if !c.Parser.Enabled {
		return nil
	}
	if c.Parser.BaseURL == "" {
		return errors.New("parser.base_url is required when the parser is enabled")
	}
	if c.Parser.APIKey == "" {
		return errors.New("OPENAI_API_KEY is required when the parser is enabled")
	}
	if c.Parser.Timeout <= 0 {
		return errors.New("parser.timeout must be positive")
	}
	return nil
}

func (c *Config) validateEventBus() error {
	switch c.EventBus.Driver {
	case "gochannel":
		return nil
	case "nats":
		if c.EventBus.URL == "" && !c.EventBus.EmbeddedServer {
			return errors.New("eventbus.url is required for the nats driver without an embedded server")
		}
		if c.EventBus.SubscribersCount < 1 {
			return errors.New("eventbus.subscribers_count must be at least 1")
		}
		return nil
	default:
		return fmt.Errorf("eventbus.driver must be gochannel or nats, got %q", c.EventBus.Driver)
	}
}

func (c *Config) validateSecurity() error {
	switch strings.ToLower(c.Security.AuthMode) {
	case "jwt":
		if len(c.Security.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters when AUTH_MODE is jwt")
		}
	case "none":
		if c.IsProduction() {
			return errors.New("AUTH_MODE=none is not allowed in production")
		}
		if c.Security.DevUserID == "" {
			return errors.New("security.dev_user_id is required when AUTH_MODE is none")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be jwt or none, got %q", c.Security.AuthMode)
	}
	if !c.Security.RateLimitDisabled && (c.Security.RateLimitReqs < 1 || c.Security.RateLimitWindow <= 0) {
		return errors.New("rate limit requests and window must be positive")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	sum := r.WeightPopular + r.WeightAge + r.WeightIntent + r.WeightTime
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("recommend weights must sum to 1.0, got %v", sum)
	}
	for _, w := range []float64{r.WeightPopular, r.WeightAge, r.WeightIntent, r.WeightTime} {
		if w < 0 {
			return errors.New("recommend weights must not be negative")
		}
	}
	if r.ExploitRatio < 0 || r.ExploitRatio > 1 {
		return fmt.Errorf("recommend.exploit_ratio must be in [0,1], got %v", r.ExploitRatio)
	}
	if r.Epsilon <= 0 {
		return fmt.Errorf("recommend.epsilon must be positive, got %v", r.Epsilon)
	}
	if r.DefaultFeedCount < 1 || r.DefaultFeedCount > r.MaxFeedCount {
		return fmt.Errorf("recommend.default_feed_count must be in [1,%d]", r.MaxFeedCount)
	}
	if r.ColdStartThreshold < 1 {
		return errors.New("recommend.cold_start_threshold must be at least 1")
	}
	return nil
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// ShouldWarnAboutCORS reports a wildcard origin outside development.
func (c *Config) ShouldWarnAboutCORS() bool {
	if !c.IsProduction() {
		return false
	}
	for _, o := range c.Security.CORSOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

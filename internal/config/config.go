// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package config

import "time"

// Config holds all application configuration.
//
// Loading order (see LoadWithKoanf):
//  1. Defaults from defaultConfig()
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/aura/config.yaml)
//  3. Environment variables (see envMappings)
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Store     StoreConfig     `koanf:"store"`
	Cache     CacheConfig     `koanf:"cache"`
	Database  DatabaseConfig  `koanf:"database"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Parser    ParserConfig    `koanf:"parser"`
	EventBus  EventBusConfig  `koanf:"eventbus"`
	Security  SecurityConfig  `koanf:"security"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// StoreConfig configures the BadgerDB profile store.
type StoreConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
	// SyncWrites fsyncs every commit. Slower, survives power loss.
	SyncWrites      bool          `koanf:"sync_writes"`
	ConflictRetries int           `koanf:"conflict_retries"`
	RetryBackoff    time.Duration `koanf:"retry_backoff"`
	GCInterval      time.Duration `koanf:"gc_interval"`
}

// CacheConfig configures the in-process profile cache.
type CacheConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Capacity int           `koanf:"capacity"`
	TTL      time.Duration `koanf:"ttl"`
}

// DatabaseConfig configures DuckDB (event catalog and behavior log).
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
	SeedDemo  bool   `koanf:"seed_demo"`
}

type CatalogConfig struct {
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	// CellSizeDeg is the geo grid cell edge in degrees (0.1 is roughly 11 km).
	CellSizeDeg     float64 `koanf:"cell_size_deg"`
	DefaultRadiusKm float64 `koanf:"default_radius_km"`
	MaxCandidates   int     `koanf:"max_candidates"`
}

// ParserConfig configures the external natural-language parser.
type ParserConfig struct {
	Enabled     bool          `koanf:"enabled"`
	BaseURL     string        `koanf:"base_url"`
	APIKey      string        `koanf:"api_key"`
	Model       string        `koanf:"model"`
	Temperature float64       `koanf:"temperature"`
	MaxTokens   int           `koanf:"max_tokens"`
	Timeout     time.Duration `koanf:"timeout"`

	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
	BreakerInterval    time.Duration `koanf:"breaker_interval"`

	RateLimitPerSecond float64 `koanf:"rate_limit_per_second"`
	RateLimitBurst     int     `koanf:"rate_limit_burst"`
}

// EventBusConfig configures behavior event delivery.
type EventBusConfig struct {
	// Driver is "gochannel" (in-process) or "nats" (JetStream).
	Driver           string        `koanf:"driver"`
	Topic            string        `koanf:"topic"`
	BufferSize       int64         `koanf:"buffer_size"`
	URL              string        `koanf:"url"`
	EmbeddedServer   bool          `koanf:"embedded_server"`
	ServerPort       int           `koanf:"server_port"`
	StoreDir         string        `koanf:"store_dir"`
	MaxMemory        int64         `koanf:"max_memory"`
	MaxStore         int64         `koanf:"max_store"`
	SubscribersCount int           `koanf:"subscribers_count"`
	QueueGroup       string        `koanf:"queue_group"`
	AckWaitTimeout   time.Duration `koanf:"ack_wait_timeout"`
	CloseTimeout     time.Duration `koanf:"close_timeout"`
	RetryCount       int           `koanf:"retry_count"`
	RetryInterval    time.Duration `koanf:"retry_interval"`
}

// SecurityConfig configures authentication and HTTP hardening.
type SecurityConfig struct {
	// AuthMode is "jwt" or "none". "none" serves every request as DevUserID
	// and is refused in production.
	AuthMode          string        `koanf:"auth_mode"`
	JWTSecret         string        `koanf:"jwt_secret"`
	JWTIssuer         string        `koanf:"jwt_issuer"`
	TokenTTL          time.Duration `koanf:"token_ttl"`
	DevUserID         string        `koanf:"dev_user_id"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	AdminUsers        []string      `koanf:"admin_users"`
	// PolicyPath overrides the embedded casbin policy when set.
	PolicyPath        string        `koanf:"policy_path"`
}

// RecommendConfig holds the engine's tunables.
type RecommendConfig struct {
	WeightPopular float64 `koanf:"weight_popular"`
	WeightAge     float64 `koanf:"weight_age"`
	WeightIntent  float64 `koanf:"weight_intent"`
	WeightTime    float64 `koanf:"weight_time"`

	ExploitRatio float64 `koanf:"exploit_ratio"`
	Epsilon      float64 `koanf:"epsilon"`
	Seed         int64   `koanf:"seed"`

	DefaultFeedCount    int     `koanf:"default_feed_count"`
	MaxFeedCount        int     `koanf:"max_feed_count"`
	MaxNaturalResults   int     `koanf:"max_natural_results"`
	HighlightsThreshold float64 `koanf:"highlights_threshold"`
	ColdStartThreshold  int     `koanf:"cold_start_threshold"`
	DefaultAge          int     `koanf:"default_age"`
}

// Addr is the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}

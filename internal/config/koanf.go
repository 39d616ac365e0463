// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/aura/config.yaml",
	"/etc/aura/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Path:            "/data/profiles",
			ConflictRetries: 5,
			RetryBackoff:    5 * time.Millisecond,
			GCInterval:      10 * time.Minute,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 10000,
			TTL:      5 * time.Minute,
		},
		Database: DatabaseConfig{
			Path:      "/data/aura.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = runtime.NumCPU()
		},
		Catalog: CatalogConfig{
			RefreshInterval: time.Minute,
			CellSizeDeg:     0.1,
			DefaultRadiusKm: 25,
			MaxCandidates:   1000,
		},
		Parser: ParserConfig{
			Enabled:            false,
			BaseURL:            "https://api.openai.com/v1",
			Model:              "gpt-4-turbo",
			Temperature:        0.3,
			MaxTokens:          500,
			Timeout:            2 * time.Second,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
			BreakerInterval:    time.Minute,
			RateLimitPerSecond: 10,
			RateLimitBurst:     20,
		},
		EventBus: EventBusConfig{
			Driver:           "gochannel",
			Topic:            "aura.behavior",
			BufferSize:       1024,
			URL:              "nats://127.0.0.1:4222",
			EmbeddedServer:   false,
			ServerPort:       4222,
			StoreDir:         "/data/nats",
			MaxMemory:        256 << 20,
			MaxStore:         1 << 30,
			SubscribersCount: 2,
			QueueGroup:       "behavior-writers",
			AckWaitTimeout:   30 * time.Second,
			CloseTimeout:     10 * time.Second,
			RetryCount:       3,
			RetryInterval:    100 * time.Millisecond,
		},
		Security: SecurityConfig{
			AuthMode:        "jwt",
			JWTIssuer:       "aura",
			TokenTTL:        24 * time.Hour,
			DevUserID:       "test_user_no_auth",
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
		Recommend: RecommendConfig{
			WeightPopular:       0.40,
			WeightAge:           0.25,
			WeightIntent:        0.20,
			WeightTime:          0.15,
			ExploitRatio:        0.85,
			Epsilon:             0.05,
			Seed:                0, // 0 = seed from the clock
			DefaultFeedCount:    30,
			MaxFeedCount:        100,
			MaxNaturalResults:   50,
			HighlightsThreshold: 0.7,
			ColdStartThreshold:  3,
			DefaultAge:          25,
		},
	}
}

// LoadWithKoanf loads defaults, then the optional YAML file, then the
// environment, and validates the result. Precedence is ENV > file > defaults.
func LoadWithKoanf() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile is LoadWithKoanf with an explicit file path. An empty path skips
// the file layer.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.admin_users",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"port":                  "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"profile_store_path":       "store.path",
	"profile_store_in_memory":  "store.in_memory",
	"profile_store_sync":       "store.sync_writes",
	"profile_conflict_retries": "store.conflict_retries",

	"profile_cache_enabled":  "cache.enabled",
	"profile_cache_capacity": "cache.capacity",
	"profile_cache_ttl":      "cache.ttl",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"seed_demo_events":  "database.seed_demo",

	"catalog_refresh_interval": "catalog.refresh_interval",
	"catalog_cell_size":        "catalog.cell_size_deg",
	"default_radius_km":        "catalog.default_radius_km",

	"parser_enabled":    "parser.enabled",
	"openai_base_url":   "parser.base_url",
	"openai_api_key":    "parser.api_key",
	"openai_model":      "parser.model",
	"parser_timeout":    "parser.timeout",
	"parser_rate_limit": "parser.rate_limit_per_second",

	"eventbus_driver":  "eventbus.driver",
	"eventbus_topic":   "eventbus.topic",
	"nats_url":         "eventbus.url",
	"nats_embedded":    "eventbus.embedded_server",
	"nats_port":        "eventbus.server_port",
	"nats_store_dir":   "eventbus.store_dir",
	"nats_subscribers": "eventbus.subscribers_count",
	"nats_queue_group": "eventbus.queue_group",

	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"jwt_issuer":          "security.jwt_issuer",
	"token_ttl":           "security.token_ttl",
	"dev_user_id":         "security.dev_user_id",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"admin_users":         "security.admin_users",
	"authz_policy_path":   "security.policy_path",

	"recommend_epsilon":       "recommend.epsilon",
	"recommend_exploit_ratio": "recommend.exploit_ratio",
	"recommend_seed":          "recommend.seed",
}

// envTransformFunc returns the koanf path for an environment variable, or ""
// to skip it.
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

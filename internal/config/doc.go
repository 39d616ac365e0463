// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

// Package config loads Aura's configuration with koanf v2.
//
// Sources are layered: struct defaults, an optional YAML file, then
// environment variables. Only environment variables listed in envMappings
// are read, so unrelated variables in the process environment cannot leak
// into the configuration.
//
// Example config.yaml:
//
//	server:
//	  port: 8000
//	security:
//	  auth_mode: jwt
//	  jwt_secret: "<32+ random characters>"
//	eventbus:
//	  driver: nats
//	  embedded_server: true
//	recommend:
//	  epsilon: 0.05
//
// Common environment overrides: HTTP_PORT, LOG_LEVEL, JWT_SECRET,
// AUTH_MODE, OPENAI_API_KEY, DUCKDB_PATH, PROFILE_STORE_PATH, NATS_URL.
package config

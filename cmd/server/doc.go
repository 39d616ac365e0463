// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

// Command server runs the Aura recommendation API.
//
// Startup order:
//
//  1. Configuration (koanf: defaults, config.yaml, environment)
//  2. Logging (zerolog)
//  3. BadgerDB profile store and DuckDB catalog/behavior database
//  4. First catalog load into the in-memory geo index
//  5. Event bus (gochannel, or NATS JetStream with an optional embedded server)
//  6. Recommendation engine with the natural-language parser
//  7. chi router with JWT authentication and casbin authorization
//  8. suture tree: catalog refresh and store GC, behavior consumer, HTTP server
//
// SIGINT or SIGTERM cancels the tree. The HTTP server drains for
// HTTP_SHUTDOWN_TIMEOUT, then the event bus, DuckDB and BadgerDB are closed
// in that order.
//
// Development:
//
//	AUTH_MODE=none PROFILE_STORE_IN_MEMORY=true DUCKDB_PATH=:memory: SEED_DEMO_EVENTS=true ./server
//
// Production:
//
//	JWT_SECRET=$(openssl rand -base64 48) ENVIRONMENT=production ./server
package main

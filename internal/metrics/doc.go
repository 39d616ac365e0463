// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

// Package metrics defines Aura's Prometheus metrics.
//
// Metrics are package-level promauto collectors registered with the default
// registry and exposed at /metrics. Callers use the Record* helpers rather
// than touching label values directly, which keeps label sets bounded.
//
// Families:
//
//   - api_*: request count, latency and in-flight gauge (middleware.PrometheusMetrics)
//   - recommendations_*, rewards_*: engine outcomes
//   - profile_*: cache hit ratio and store conflict retries
//   - nlparser_*: parser outcome and breaker state
//   - catalog_*: index size and refresh latency
//   - behavior_events_*: event bus publish and persistence
//   - duckdb_*: query latency and errors
package metrics

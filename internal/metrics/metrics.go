// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Recommendations
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Recommendation responses by kind (feed, natural, highlights) and path (warm, cold, degraded, keyword)",
		},
		[]string{"kind", "path"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Time to build one recommendation response",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"kind"},
	)

	RewardsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewards_processed_total",
			Help: "Profile updates applied, by action",
		},
		[]string{"action"},
	)

	RewardFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reward_failures_total",
			Help: "Rejected or failed reward submissions, by reason",
		},
		[]string{"reason"},
	)

	// Profile store and cache
	ProfileCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_cache_hits_total",
			Help: "Profile cache hits",
		},
	)

	ProfileCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_cache_misses_total",
			Help: "Profile cache misses",
		},
	)

	ProfileStoreConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_store_conflicts_total",
			Help: "BadgerDB transaction conflicts retried by the profile store",
		},
	)

	// Natural-language parser
	NLParserRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlparser_requests_total",
			Help: "Parser calls by outcome (success, timeout, unavailable, rejected, fallback)",
		},
		[]string{"outcome"},
	)

	NLParserCircuitState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nlparser_circuit_state",
			Help: "Parser circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Catalog
	CatalogEvents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_events",
			Help: "Events currently held in the in-memory catalog index",
		},
	)

	CatalogRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_refresh_duration_seconds",
			Help:    "Time to reload the catalog index from DuckDB",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Behavior events
	BehaviorEventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "behavior_events_published_total",
			Help: "Behavior events published to the event bus",
		},
	)

	BehaviorEventsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "behavior_events_persisted_total",
			Help: "Behavior events written to DuckDB",
		},
	)

	BehaviorEventsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "behavior_events_failed_total",
			Help: "Behavior events that could not be published or persisted",
		},
		[]string{"stage"}, // publish, decode, persist
	)

	// Database
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)
)

// RecordAPIRequest records one finished HTTP request.
func RecordAPIRequest(method, route, status string, d time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// RecordRecommendation records one served response.
func RecordRecommendation(kind, path string, d time.Duration) {
	RecommendationsServed.WithLabelValues(kind, path).Inc()
	RecommendationDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func RecordReward(action string) {
	RewardsProcessed.WithLabelValues(action).Inc()
}

func RecordRewardFailure(reason string) {
	RewardFailures.WithLabelValues(reason).Inc()
}

func RecordCacheLookup(hit bool) {
	if hit {
		ProfileCacheHits.Inc()
		return
	}
	ProfileCacheMisses.Inc()
}

func RecordParserOutcome(outcome string) {
	NLParserRequests.WithLabelValues(outcome).Inc()
}

// SetParserCircuitState maps a breaker state name to the gauge value.
func SetParserCircuitState(state string) {
	switch state {
	case "closed":
		NLParserCircuitState.Set(0)
	case "half-open":
		NLParserCircuitState.Set(1)
	case "open":
		NLParserCircuitState.Set(2)
	}
}

// RecordDBQuery records a DuckDB query. err may be nil.
func RecordDBQuery(operation, table string, d time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(d.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

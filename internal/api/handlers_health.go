// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package api

import (
	"context"
	"net/http"
	"time"
)

// healthCheckTimeout bounds the database ping of health probes.
const healthCheckTimeout = 2 * time.Second

// HealthStatus is the body of GET /v1/health.
type HealthStatus struct {
	Status            string     `json:"status"`
	Version           string     `json:"version"`
	DatabaseConnected bool       `json:"database_connected"`
	CatalogLoaded     bool       `json:"catalog_loaded"`
	CatalogEvents     int        `json:"catalog_events"`
	CatalogLoadedAt   *time.Time `json:"catalog_loaded_at,omitempty"`
	Uptime            float64    `json:"uptime_seconds"`
}

// Health handles GET /v1/health. It always answers 200; status is
// "degraded" when a dependency is down.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.pingDB(r.Context())
	loaded := h.index.Loaded()

	status := "healthy"
	if !dbConnected || !loaded {
		status = "degraded"
	}

	health := HealthStatus{
		Status:            status,
		Version:           Version,
		DatabaseConnected: dbConnected,
		CatalogLoaded:     loaded,
		CatalogEvents:     h.index.Len(),
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if at := h.index.LoadedAt(); !at.IsZero() {
		at = at.UTC()
		health.CatalogLoadedAt = &at
	}
	respondJSON(w, r, http.StatusOK, health)
}

// HealthLive handles GET /v1/health/live. It answers 200 while the process
// serves HTTP, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"alive":          true,
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles GET /v1/health/ready. It answers 503 until DuckDB is
// reachable and the catalog index has been loaded.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.pingDB(r.Context())
	loaded := h.index.Loaded()

	if !dbConnected || !loaded {
		w.Header().Set("Retry-After", "5")
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeNotReady, notReadyReason(dbConnected, loaded), nil)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"ready":          true,
		"catalog_events": h.index.Len(),
	})
}

func (h *Handler) pingDB(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return h.store.Ping(ctx) == nil
}

func notReadyReason(dbConnected, catalogLoaded bool) string {
	switch {
	case !dbConnected && !catalogLoaded:
		return "database unreachable and catalog not loaded"
	case !dbConnected:
		return "database unreachable"
	default:
		return "catalog not loaded"
	}
}

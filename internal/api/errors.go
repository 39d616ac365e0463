// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/aura/internal/recommend"
)

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeInvalidEventKind   = "INVALID_EVENT_KIND"
	ErrCodeOutOfRangeReward   = "OUT_OF_RANGE_REWARD"
	ErrCodeEventNotFound      = "EVENT_NOT_FOUND"
	ErrCodeProfileNotFound    = "PROFILE_NOT_FOUND"
	ErrCodeProfileUnavailable = "PROFILE_UNAVAILABLE"
	ErrCodePersistence        = "PERSISTENCE_ERROR"
	ErrCodeCatalogUnavailable = "CATALOG_UNAVAILABLE"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
	ErrCodeNotReady           = "NOT_READY"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
)

// engineErrorStatus maps an engine error to its HTTP status, code and
// client message. Unknown errors are internal.
func engineErrorStatus(err error) (int, string, string) {
	switch {
	case errors.Is(err, recommend.ErrInvalidEventKind):
		return http.StatusBadRequest, ErrCodeInvalidEventKind, "unknown behavior action"
	case errors.Is(err, recommend.ErrOutOfRangeReward):
		return http.StatusBadRequest, ErrCodeOutOfRangeReward, "reward must be between -1 and 1"
	case errors.Is(err, recommend.ErrEventNotFound):
		return http.StatusNotFound, ErrCodeEventNotFound, "event not found"
	case errors.Is(err, recommend.ErrProfileNotFound):
		return http.StatusNotFound, ErrCodeProfileNotFound, "profile not found"
	case errors.Is(err, recommend.ErrProfileUnavailable):
		return http.StatusServiceUnavailable, ErrCodeProfileUnavailable, "profile store unavailable, retry later"
	case errors.Is(err, recommend.ErrPersistence):
		return http.StatusServiceUnavailable, ErrCodePersistence, "profile update was not saved, retry the request"
	case errors.Is(err, recommend.ErrCandidatesUnavailable):
		return http.StatusServiceUnavailable, ErrCodeCatalogUnavailable, "event catalog is loading, retry later"
	default:
		return http.StatusInternalServerError, ErrCodeInternalError, "internal server error"
	}
}

// respondEngineError writes the response for an error returned by the
// recommendation engine.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := engineErrorStatus(err)
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	respondError(w, r, status, code, message, err)
}

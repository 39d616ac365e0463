// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package models

import "time"

// APIResponse is the envelope of every JSON response.
//
//	{"success": true, "data": {...}, "meta": {"timestamp": "...", "request_id": "..."}}
//	{"success": false, "error": {"code": "OUT_OF_RANGE_REWARD", "message": "..."}, "meta": {...}}
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    Meta        `json:"meta"`
}

// Meta carries response bookkeeping.
type Meta struct {
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
	QueryTimeMS int64     `json:"query_time_ms"`
}

// APIError is a machine-readable error.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse builds the envelope for a failed request.
func ErrorResponse(code, message, requestID string) APIResponse {
	return APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    Meta{Timestamp: time.Now().UTC(), RequestID: requestID},
	}
}

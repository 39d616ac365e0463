// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

/*
Package api provides the HTTP interface of the recommendation engine.

Routes (chi):

	POST /v1/recommend/feed              personalized feed around a point
	POST /v1/recommend/natural           free-text search
	POST /v1/recommend/highlights        trending row
	POST /v1/recommend/feedback/reward   reward for a shown event
	POST /v1/behavior/log                raw interaction log
	POST /v1/user/onboarding             onboarding answers
	GET  /v1/user/profile                current profile (?behavior=N adds the log tail)
	POST /v1/user/reset                  delete the profile
	PUT  /v1/admin/events                catalog upsert (admin role)
	GET  /v1/health, /live, /ready       probes
	GET  /metrics                        Prometheus

All /v1 routes except health require authentication; the user id is taken
from the token, never from the body.

Response Format:

Every response uses the envelope from package models:

	{"success": true, "data": {...}, "meta": {"timestamp": "...", "request_id": "...", "query_time_ms": 3}}
	{"success": false, "error": {"code": "OUT_OF_RANGE_REWARD", "message": "..."}, "meta": {...}}

Engine errors map to status codes in errors.go. Profile store and
persistence failures answer 503 with Retry-After so clients retry; they are
never reported as success.
*/
package api

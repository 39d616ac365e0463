// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

/*
Package middleware provides chi-compatible HTTP middleware for request
tracking and instrumentation.

Key Components:

  - RequestID: UUID request ids (or a sanitized upstream X-Request-ID) in the
    response header and the logging context
  - PrometheusMetrics: api_requests_total, api_request_duration_seconds and
    api_active_requests, labelled by chi route pattern
  - RequestLogger: per-request debug log and a warn line for slow requests

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.RequestLogger(time.Second))

Authentication and authorization live in packages auth and authz; CORS,
rate limiting and compression come from go-chi.
*/
package middleware

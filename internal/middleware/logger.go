// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/aura/internal/logging"
)

// DefaultSlowRequestThreshold is the latency above which a request is
// logged at warn level.
const DefaultSlowRequestThreshold = time.Second

// RequestLogger logs every finished request at debug level and slow ones at
// warn. It must run after RequestID so log lines carry the request id.
func RequestLogger(slowThreshold time.Duration) func(http.Handler) http.Handler {
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowRequestThreshold
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newStatusRecorder(w)

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			logger := logging.Ctx(r.Context())
			event := logger.Debug()
			msg := "Request completed"
			if duration > slowThreshold {
				event = logger.Warn().Dur("threshold", slowThreshold)
				msg = "Slow request detected"
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Int("status", rw.status).
				Dur("duration", duration).
				Msg(msg)
		})
	}
}

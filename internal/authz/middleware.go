// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package authz

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aura/internal/auth"
	"github.com/tomtom215/aura/internal/logging"
	"github.com/tomtom215/aura/internal/models"
)

// Middleware provides authorization middleware using Casbin.
type Middleware struct {
	enforcer *Enforcer
}

// NewMiddleware creates a new authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{enforcer: enforcer}
}

// Authorize returns middleware that checks a fixed object and action.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.allow(w, r, object, action) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// AuthorizeRequest derives the action from the HTTP method and authorizes
// the request path. It must run after auth.Middleware.Authenticate.
func (m *Middleware) AuthorizeRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.allow(w, r, r.URL.Path, methodToAction(r.Method)) {
			next.ServeHTTP(w, r)
		}
	})
}

// allow writes the error response itself when it returns false.
func (m *Middleware) allow(w http.ResponseWriter, r *http.Request, object, action string) bool {
	subject := auth.SubjectFromContext(r.Context())
	if subject == nil {
		writeError(w, r, http.StatusForbidden, "FORBIDDEN", "no authentication context")
		return false
	}

	allowed, err := m.enforcer.EnforceWithRoles(subject.ID, subject.Roles, object, action)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "authorization failed")
		return false
	}
	if !allowed {
		logging.Ctx(r.Context()).Debug().
			Str("object", object).
			Str("action", action).
			Strs("roles", subject.Roles).
			Msg("Access denied")
		writeError(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
		return false
	}
	return true
}

// methodToAction maps HTTP methods to Casbin actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return ActionWrite
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionRead
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := models.ErrorResponse(code, message, logging.RequestIDFromContext(r.Context()))
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Failed to encode authorization error response")
	}
}

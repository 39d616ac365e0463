// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aura/internal/config"
	"github.com/tomtom215/aura/internal/logging"
	"github.com/tomtom215/aura/internal/models"
)

// Middleware authenticates requests and stores the Subject in the request
// context.
type Middleware struct {
	mode      AuthMode
	jwt       *JWTManager
	devUserID string
	admins    map[string]bool
}

// NewMiddleware creates the authentication middleware. jwtManager may be
// nil only when the auth mode is "none".
func NewMiddleware(cfg *config.SecurityConfig, jwtManager *JWTManager) (*Middleware, error) {
	mode, err := ParseAuthMode(cfg.AuthMode)
	if err != nil {
		return nil, err
	}
	if mode == AuthModeJWT && jwtManager == nil {
		return nil, errors.New("jwt auth mode requires a JWT manager")
	}

	devUserID := cfg.DevUserID
	if devUserID == "" {
		devUserID = DefaultDevUserID
	}
	admins := make(map[string]bool, len(cfg.AdminUsers))
	for _, u := range cfg.AdminUsers {
		admins[u] = true
	}

	return &Middleware{
		mode:      mode,
		jwt:       jwtManager,
		devUserID: devUserID,
		admins:    admins,
	}, nil
}

// Mode returns the active auth mode.
func (m *Middleware) Mode() AuthMode {
	return m.mode
}

// Authenticate is middleware that enforces authentication.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var subject *Subject
		if m.mode == AuthModeNone {
			subject = &Subject{ID: m.devUserID, Source: AuthModeNone}
		} else {
			s, err := m.authenticateJWT(r)
			if err != nil {
				logging.Ctx(r.Context()).Debug().Err(err).Msg("Authentication failed")
				writeUnauthorized(w, r, err)
				return
			}
			subject = s
		}
		if m.admins[subject.ID] && !subject.HasRole(RoleAdmin) {
			subject.Roles = append(subject.Roles, RoleAdmin)
		}

		ctx := ContextWithSubject(r.Context(), subject)
		ctx = logging.ContextWithUserID(ctx, subject.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) authenticateJWT(r *http.Request) (*Subject, error) {
	token, err := bearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}
	claims, err := m.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &Subject{
		ID:     claims.Subject,
		Roles:  append([]string(nil), claims.Roles...),
		Source: AuthModeJWT,
	}, nil
}

// bearerToken extracts the token from an Authorization header. The scheme
// is case-insensitive.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrNoCredentials
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("%w: expected Bearer scheme", ErrInvalidCredentials)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrNoCredentials
	}
	return token, nil
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, err error) {
	message := "authentication required"
	switch {
	case errors.Is(err, ErrExpiredCredentials):
		message = "token expired"
	case errors.Is(err, ErrInvalidCredentials):
		message = "invalid token"
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="aura"`)
	w.WriteHeader(http.StatusUnauthorized)
	resp := models.ErrorResponse("UNAUTHORIZED", message, logging.RequestIDFromContext(r.Context()))
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		logging.Error().Err(encErr).Msg("Failed to encode auth error response")
	}
}

// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package auth

import (
	"context"
	"errors"
)

// AuthMode represents the authentication strategy.
type AuthMode string

const (
	// AuthModeNone disables authentication. Every request is served as the
	// configured development user.
	AuthModeNone AuthMode = "none"

	// AuthModeJWT requires an HS256 bearer token.
	AuthModeJWT AuthMode = "jwt"
)

// ParseAuthMode converts a string to AuthMode.
func ParseAuthMode(s string) (AuthMode, error) {
	switch s {
	case "jwt", "":
		return AuthModeJWT, nil
	case "none":
		return AuthModeNone, nil
	default:
		return "", errors.New("invalid auth mode: " + s)
	}
}

func (m AuthMode) String() string {
	return string(m)
}

// Standard authentication errors
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates credentials were invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpiredCredentials indicates credentials have expired.
	ErrExpiredCredentials = errors.New("credentials expired")
)

// RoleAdmin may manage the event catalog.
const RoleAdmin = "admin"

// DefaultDevUserID is the identity used when authentication is disabled
// and no other id is configured.
const DefaultDevUserID = "test_user_no_auth"

// Subject is the authenticated caller.
type Subject struct {
	// ID is the user id profiles are keyed by.
	ID    string   `json:"id"`
	Roles []string `json:"roles,omitempty"`
	// Source is the auth mode that produced the subject.
	Source AuthMode `json:"source"`
}

// HasRole reports whether the subject holds role.
func (s *Subject) HasRole(role string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type contextKey string

const subjectContextKey contextKey = "auth-subject"

// ContextWithSubject stores s in ctx.
func ContextWithSubject(ctx context.Context, s *Subject) context.Context {
	return context.WithValue(ctx, subjectContextKey, s)
}

// SubjectFromContext returns the authenticated subject, or nil.
func SubjectFromContext(ctx context.Context) *Subject {
	s, _ := ctx.Value(subjectContextKey).(*Subject)
	return s
}

// UserID returns the authenticated user id, or "".
func UserID(ctx context.Context) string {
	if s := SubjectFromContext(ctx); s != nil {
		return s.ID
	}
	return ""
}

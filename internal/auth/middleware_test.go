// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aura/internal/config"
	"github.com/tomtom215/aura/internal/logging"
	"github.com/tomtom215/aura/internal/models"
)

// captureHandler records the subject it was called with.
type captureHandler struct {
	called  bool
	subject *Subject
	logUser string
}

func (h *captureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.subject = SubjectFromContext(r.Context())
	h.logUser = logging.UserIDFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func newJWTMiddleware(t *testing.T, admins ...string) (*Middleware, *JWTManager) {
	t.Helper()
	jm := newTestManager(t)
	mw, err := NewMiddleware(&config.SecurityConfig{AuthMode: "jwt", AdminUsers: admins}, jm)
	if err != nil {
		t.Fatalf("NewMiddleware() error = %v", err)
	}
	return mw, jm
}

func TestMiddleware_Authenticate_JWT(t *testing.T) {
	t.Parallel()
	mw, jm := newJWTMiddleware(t)

	token, err := jm.GenerateToken("alice")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{"valid token", "Bearer " + token, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + token, http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "authentication required"},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "invalid token"},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, "invalid token"},
		{"empty token", "Bearer   ", http.StatusUnauthorized, "authentication required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			next := &captureHandler{}
			req := httptest.NewRequest(http.MethodGet, "/v1/recommendations/feed", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			mw.Authenticate(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if next.subject == nil || next.subject.ID != "alice" {
					t.Errorf("subject = %+v, want alice", next.subject)
				}
				if next.logUser != "alice" {
					t.Errorf("log user id = %q, want alice", next.logUser)
				}
				return
			}

			if next.called {
				t.Error("next handler should not run on auth failure")
			}
			if rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
			var resp models.APIResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if resp.Success || resp.Error == nil || resp.Error.Code != "UNAUTHORIZED" {
				t.Errorf("body = %+v", resp)
			}
			if resp.Error.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", resp.Error.Message, tt.wantMsg)
			}
		})
	}
}

func TestMiddleware_Authenticate_AdminRole(t *testing.T) {
	t.Parallel()
	mw, jm := newJWTMiddleware(t, "root")

	tests := []struct {
		user      string
		roles     []string
		wantAdmin bool
	}{
		{"root", nil, true},
		{"bob", []string{RoleAdmin}, true},
		{"carol", nil, false},
	}

	for _, tt := range tests {
		token, err := jm.GenerateToken(tt.user, tt.roles...)
		if err != nil {
			t.Fatal(err)
		}
		next := &captureHandler{}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		mw.Authenticate(next).ServeHTTP(httptest.NewRecorder(), req)

		if got := next.subject.HasRole(RoleAdmin); got != tt.wantAdmin {
			t.Errorf("%s: HasRole(admin) = %v, want %v", tt.user, got, tt.wantAdmin)
		}
		if next.subject.Source != AuthModeJWT {
			t.Errorf("%s: Source = %q", tt.user, next.subject.Source)
		}
	}
}

func TestMiddleware_Authenticate_None(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		devUser string
		want    string
	}{
		{"default dev user", "", DefaultDevUserID},
		{"configured dev user", "dev-1", "dev-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mw, err := NewMiddleware(&config.SecurityConfig{AuthMode: "none", DevUserID: tt.devUser}, nil)
			if err != nil {
				t.Fatal(err)
			}
			next := &captureHandler{}
			mw.Authenticate(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

			if next.subject == nil || next.subject.ID != tt.want {
				t.Errorf("subject = %+v, want %s", next.subject, tt.want)
			}
			if next.subject.Source != AuthModeNone {
				t.Errorf("Source = %q, want none", next.subject.Source)
			}
		})
	}
}

func TestNewMiddleware(t *testing.T) {
	t.Parallel()

	if _, err := NewMiddleware(&config.SecurityConfig{AuthMode: "jwt"}, nil); err == nil {
		t.Error("jwt mode without manager should fail")
	}
	if _, err := NewMiddleware(&config.SecurityConfig{AuthMode: "basic"}, nil); err == nil {
		t.Error("unknown mode should fail")
	}
	mw, err := NewMiddleware(&config.SecurityConfig{}, newTestManager(t))
	if err != nil {
		t.Fatal(err)
	}
	if mw.Mode() != AuthModeJWT {
		t.Errorf("Mode() = %q, want jwt", mw.Mode())
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{"Bearer abc", "abc", nil},
		{"BEARER  abc ", "abc", nil},
		{"", "", ErrNoCredentials},
		{"Bearer", "", ErrInvalidCredentials},
		{"Token abc", "", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		got, err := bearerToken(tt.header)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("bearerToken(%q) error = %v, want %v", tt.header, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestSubjectContext(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if UserID(req.Context()) != "" {
		t.Error("UserID on empty context should be empty")
	}
	ctx := ContextWithSubject(req.Context(), &Subject{ID: "u1"})
	if UserID(ctx) != "u1" {
		t.Errorf("UserID() = %q, want u1", UserID(ctx))
	}
	var nilSubject *Subject
	if nilSubject.HasRole(RoleAdmin) {
		t.Error("nil subject should hold no roles")
	}
}

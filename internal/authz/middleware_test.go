// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aura/internal/auth"
	"github.com/tomtom215/aura/internal/models"
)

func TestMiddleware_AuthorizeRequest(t *testing.T) {
	t.Parallel()
	m := NewMiddleware(newTestEnforcer(t))

	tests := []struct {
		name       string
		method     string
		path       string
		subject    *auth.Subject
		wantStatus int
	}{
		{"user feed", http.MethodPost, "/v1/recommend/feed", &auth.Subject{ID: "u1"}, http.StatusOK},
		{"user profile", http.MethodGet, "/v1/user/profile", &auth.Subject{ID: "u1"}, http.StatusOK},
		{"user admin denied", http.MethodPut, "/v1/admin/events", &auth.Subject{ID: "u1"}, http.StatusForbidden},
		{"admin upsert", http.MethodPut, "/v1/admin/events", &auth.Subject{ID: "a1", Roles: []string{auth.RoleAdmin}}, http.StatusOK},
		{"no subject", http.MethodPost, "/v1/recommend/feed", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.subject != nil {
				req = req.WithContext(auth.ContextWithSubject(req.Context(), tt.subject))
			}
			rec := httptest.NewRecorder()

			m.AuthorizeRequest(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if called != (tt.wantStatus == http.StatusOK) {
				t.Errorf("handler called = %v", called)
			}
			if tt.wantStatus == http.StatusForbidden {
				var resp models.APIResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if resp.Error == nil || resp.Error.Code != "FORBIDDEN" {
					t.Errorf("error = %+v, want FORBIDDEN", resp.Error)
				}
			}
		})
	}
}

func TestMiddleware_Authorize(t *testing.T) {
	t.Parallel()
	m := NewMiddleware(newTestEnforcer(t))
	h := m.Authorize("/v1/admin/events", ActionWrite)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req = req.WithContext(auth.ContextWithSubject(req.Context(), &auth.Subject{ID: "u1"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("user status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/anything", nil)
	req = req.WithContext(auth.ContextWithSubject(req.Context(), &auth.Subject{ID: "a1", Roles: []string{auth.RoleAdmin}}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("admin status = %d, want 204", rec.Code)
	}
}

func TestMethodToAction(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		http.MethodGet:     ActionRead,
		http.MethodHead:    ActionRead,
		http.MethodOptions: ActionRead,
		http.MethodPost:    ActionWrite,
		http.MethodPut:     ActionWrite,
		http.MethodPatch:   ActionWrite,
		http.MethodDelete:  ActionDelete,
	}
	for method, want := range tests {
		if got := methodToAction(method); got != want {
			t.Errorf("methodToAction(%s) = %s, want %s", method, got, want)
		}
	}
}

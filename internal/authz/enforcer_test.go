// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package authz

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/aura/internal/config"
)

func newTestEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(nil)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestEnforcer_EmbeddedPolicy(t *testing.T) {
	t.Parallel()
	e := newTestEnforcer(t)

	tests := []struct {
		subject string
		object  string
		action  string
		want    bool
	}{
		{RoleUser, "/v1/recommend/feed", ActionWrite, true},
		{RoleUser, "/v1/recommend/feedback/reward", ActionWrite, true},
		{RoleUser, "/v1/behavior/log", ActionWrite, true},
		{RoleUser, "/v1/user/profile", ActionRead, true},
		{RoleUser, "/v1/user/reset", ActionWrite, true},
		{RoleUser, "/v1/admin/events", ActionWrite, false},
		{RoleUser, "/v1/user/profile", ActionDelete, false},
		{"admin", "/v1/admin/events", ActionWrite, true},
		{"admin", "/v1/admin/events", ActionDelete, true},
		{"admin", "/v1/recommend/natural", ActionWrite, true},
		{"stranger", "/v1/recommend/feed", ActionWrite, false},
	}

	for _, tt := range tests {
		got, err := e.Enforce(tt.subject, tt.object, tt.action)
		if err != nil {
			t.Fatalf("Enforce() error = %v", err)
		}
		if got != tt.want {
			t.Errorf("Enforce(%s, %s, %s) = %v, want %v", tt.subject, tt.object, tt.action, got, tt.want)
		}
	}
}

func TestEnforcer_EnforceWithRoles(t *testing.T) {
	t.Parallel()
	e := newTestEnforcer(t)

	tests := []struct {
		name   string
		roles  []string
		object string
		want   bool
	}{
		{"no roles falls back to user", nil, "/v1/recommend/feed", true},
		{"no roles cannot reach admin", nil, "/v1/admin/events", false},
		{"admin role", []string{"admin"}, "/v1/admin/events", true},
		{"unknown role has no default", []string{"guest"}, "/v1/recommend/feed", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.EnforceWithRoles("u1", tt.roles, tt.object, ActionWrite)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("EnforceWithRoles(%v, %s) = %v, want %v", tt.roles, tt.object, got, tt.want)
			}
		})
	}
}

func TestEnforcer_AddRoleForUser(t *testing.T) {
	t.Parallel()
	e := newTestEnforcer(t)

	if allowed, _ := e.Enforce("carol", "/v1/admin/events", ActionWrite); allowed {
		t.Fatal("carol should not be admin yet")
	}
	added, err := e.AddRoleForUser("carol", "admin")
	if err != nil || !added {
		t.Fatalf("AddRoleForUser() = %v, %v", added, err)
	}
	if allowed, _ := e.Enforce("carol", "/v1/admin/events", ActionWrite); !allowed {
		t.Error("carol should be admin after role assignment")
	}
	roles, err := e.GetRolesForUser("carol")
	if err != nil || len(roles) != 1 || roles[0] != "admin" {
		t.Errorf("GetRolesForUser() = %v, %v", roles, err)
	}
}

func TestEnforcer_PolicyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "policy.csv")
	policy := "p, user, /v1/recommend/*, write\ng, dave, admin\np, admin, /v1/admin/*, *\n"
	if err := os.WriteFile(path, []byte(policy), 0o600); err != nil {
		t.Fatal(err)
	}

	e, err := NewEnforcer(EnforcerConfigFrom(&config.SecurityConfig{PolicyPath: path}))
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	defer e.Close()

	if allowed, _ := e.Enforce("dave", "/v1/admin/events", ActionWrite); !allowed {
		t.Error("dave should be admin from the policy file")
	}
	if allowed, _ := e.Enforce(RoleUser, "/v1/user/profile", ActionRead); allowed {
		t.Error("file policy grants no /v1/user access")
	}
	if err := e.Reload(); err != nil {
		t.Errorf("Reload() error = %v", err)
	}
}

func TestEnforcer_MissingPolicyFile(t *testing.T) {
	t.Parallel()

	_, err := NewEnforcer(&EnforcerConfig{PolicyPath: filepath.Join(t.TempDir(), "missing.csv")})
	if err == nil {
		t.Error("NewEnforcer() with missing policy file should fail")
	}
}

func TestEnforcer_ReloadEmbedded(t *testing.T) {
	t.Parallel()
	if err := newTestEnforcer(t).Reload(); !errors.Is(err, ErrNoAdapter) {
		t.Errorf("Reload() error = %v, want ErrNoAdapter", err)
	}
}

func TestLoadPolicyText_Malformed(t *testing.T) {
	t.Parallel()
	e := newTestEnforcer(t)

	if err := loadPolicyText(e.enforcer, "p, user, /x\n"); err == nil {
		t.Error("short p line should fail")
	}
	if err := loadPolicyText(e.enforcer, "# comment only\n\n"); err != nil {
		t.Errorf("comments should be skipped: %v", err)
	}
}

func TestEnforcerConfigFrom(t *testing.T) {
	t.Parallel()

	cfg := EnforcerConfigFrom(&config.SecurityConfig{})
	if cfg.PolicyPath != "" || cfg.AutoReload || cfg.DefaultRole != RoleUser {
		t.Errorf("EnforcerConfigFrom(empty) = %+v", cfg)
	}
	cfg = EnforcerConfigFrom(&config.SecurityConfig{PolicyPath: "/etc/aura/policy.csv"})
	if !cfg.AutoReload {
		t.Error("a policy file should enable auto reload")
	}
}

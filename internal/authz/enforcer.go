// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package authz

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/tomtom215/aura/internal/config"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// RoleUser is held by every authenticated caller without explicit roles.
const RoleUser = "user"

// Actions derived from HTTP methods.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
)

// EnforcerConfig holds configuration for the Casbin enforcer.
type EnforcerConfig struct {
	// PolicyPath is a casbin CSV policy file. Empty uses the embedded policy.
	PolicyPath string

	// AutoReload re-reads PolicyPath every ReloadInterval.
	AutoReload     bool
	ReloadInterval time.Duration

	// DefaultRole is assigned to subjects without explicit roles.
	DefaultRole string
}

// DefaultEnforcerConfig returns the embedded-policy configuration.
func DefaultEnforcerConfig() *EnforcerConfig {
	return &EnforcerConfig{
		ReloadInterval: 30 * time.Second,
		DefaultRole:    RoleUser,
	}
}

// EnforcerConfigFrom builds the enforcer configuration from security settings.
func EnforcerConfigFrom(sec *config.SecurityConfig) *EnforcerConfig {
	cfg := DefaultEnforcerConfig()
	if sec != nil && sec.PolicyPath != "" {
		cfg.PolicyPath = sec.PolicyPath
		cfg.AutoReload = true
	}
	return cfg
}

// Enforcer wraps a synchronized Casbin enforcer.
type Enforcer struct {
	config   *EnforcerConfig
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer creates an enforcer from the embedded RBAC model and either the
// embedded policy or the configured policy file.
func NewEnforcer(cfg *EnforcerConfig) (*Enforcer, error) {
	if cfg == nil {
		cfg = DefaultEnforcerConfig()
	}

	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" {
		if _, statErr := os.Stat(cfg.PolicyPath); statErr != nil {
			return nil, fmt.Errorf("policy file: %w", statErr)
		}
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadPolicyText(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if cfg.AutoReload && cfg.PolicyPath != "" && cfg.ReloadInterval > 0 {
		enforcer.StartAutoLoadPolicy(cfg.ReloadInterval)
	}

	return &Enforcer{config: cfg, enforcer: enforcer}, nil
}

// loadPolicyText adds "p" and "g" rules from casbin CSV text. Blank lines
// and # comments are skipped.
func loadPolicyText(enforcer *casbin.SyncedEnforcer, text string) error {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		switch {
		case fields[0] == "p" && len(fields) == 4:
			if _, err := enforcer.AddPolicy(fields[1], fields[2], fields[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", fields[1:], err)
			}
		case fields[0] == "g" && len(fields) == 3:
			if _, err := enforcer.AddGroupingPolicy(fields[1], fields[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", fields[1:], err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

// Enforce checks if the subject can perform the action on the object.
func (e *Enforcer) Enforce(subject, object, action string) (bool, error) {
	allowed, err := e.enforcer.Enforce(subject, object, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	return allowed, nil
}

// EnforceWithRoles allows the request if the subject itself or any of its
// roles is allowed. Subjects without roles are checked as DefaultRole.
func (e *Enforcer) EnforceWithRoles(subject string, roles []string, object, action string) (bool, error) {
	if allowed, err := e.Enforce(subject, object, action); err != nil || allowed {
		return allowed, err
	}

	if len(roles) == 0 && e.config.DefaultRole != "" {
		roles = []string{e.config.DefaultRole}
	}
	for _, role := range roles {
		if allowed, err := e.Enforce(role, object, action); err != nil || allowed {
			return allowed, err
		}
	}
	return false, nil
}

// AddRoleForUser assigns a role to a user.
func (e *Enforcer) AddRoleForUser(user, role string) (bool, error) {
	added, err := e.enforcer.AddGroupingPolicy(user, role)
	if err != nil {
		return false, fmt.Errorf("failed to add role: %w", err)
	}
	return added, nil
}

// GetRolesForUser returns the roles directly assigned to user by policy.
func (e *Enforcer) GetRolesForUser(user string) ([]string, error) {
	return e.enforcer.GetRolesForUser(user)
}

// ErrNoAdapter is returned by Reload when the embedded policy is in use.
var ErrNoAdapter = errors.New("no policy adapter configured; using embedded policy")

// Reload re-reads the policy file.
func (e *Enforcer) Reload() error {
	if e.config.PolicyPath == "" {
		return ErrNoAdapter
	}
	return e.enforcer.LoadPolicy()
}

// Close stops policy auto-reload.
func (e *Enforcer) Close() {
	e.enforcer.StopAutoLoadPolicy()
}

// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/tomtom215/aura/internal/config"
	"github.com/tomtom215/aura/internal/logging"
	"github.com/tomtom215/aura/internal/supervisor"
)

const testConfigYAML = `
store:
  in_memory: true
database:
  path: ":memory:"
  seed_demo: true
security:
  auth_mode: none
  rate_limit_disabled: true
`

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testConfigYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	return cfg
}

func TestBuildParser(t *testing.T) {
	t.Parallel()

	if p := buildParser(&config.ParserConfig{Enabled: false}); p != nil {
		t.Errorf("disabled parser should be a nil interface, got %T", p)
	}
	if p := buildParser(&config.ParserConfig{Enabled: true, BaseURL: "http://localhost", APIKey: "k"}); p == nil {
		t.Error("enabled parser should not be nil")
	}
}

func TestNewApp_ServesReadyWithSeededCatalog(t *testing.T) {
	cfg := loadTestConfig(t)

	a, err := newApp(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	defer a.Close()

	if a.index.Len() == 0 {
		t.Fatal("seeded catalog should be loaded into the index")
	}

	rec := httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ready status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/user/onboarding", strings.NewReader(`{"onboarding_intent":"explore"}`))
	req.Header.Set("Content-Type", "application/json")
	a.server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), cfg.Security.DevUserID) {
		t.Fatalf("onboarding status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestApp_RegisterAndClose(t *testing.T) {
	cfg := loadTestConfig(t)
	a, err := newApp(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	tree, err := supervisor.NewSupervisorTree(slog.New(slog.NewTextHandler(io.Discard, nil)), supervisor.TreeConfig{})
	if err != nil {
		t.Fatal(err)
	}
	a.Register(tree)

	a.Close()
	if a.closers != nil {
		t.Error("Close should release every tracked component")
	}
	a.Close() // second call is a no-op
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewApp_LogsEachStoreOnce(t *testing.T) {
	out := &lockedBuffer{}
	prev := logging.Logger()
	logging.SetLogger(logging.NewTestLogger(out))
	t.Cleanup(func() { logging.SetLogger(prev) })

	a, err := newApp(context.Background(), loadTestConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	a.Close()

	if n := strings.Count(out.String(), "Profile store opened"); n != 1 {
		t.Errorf("profile store open logged %d times, want 1", n)
	}
}

// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// captureGlobal swaps in a buffer-backed global logger for the test.
// Tests using it must not run in parallel.
func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := Logger()
	prevLevel := zerolog.GlobalLevel()
	buf := &bytes.Buffer{}
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	SetLogger(NewTestLogger(buf))
	t.Cleanup(func() {
		SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	})
	return buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if i := strings.LastIndex(line, "\n"); i >= 0 {
		line = line[i+1:]
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("log line is not JSON: %q: %v", line, err)
	}
	return m
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" info ", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidLevel(t *testing.T) {
	t.Parallel()

	if !ValidLevel("Warn") {
		t.Error("Warn should be valid")
	}
	if ValidLevel("loud") {
		t.Error("loud should not be valid")
	}
}

func TestInit_JSONWritesStructuredLine(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev); zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Timestamp: true, Output: &buf})

	Debug().Str("user_id", "u1").Msg("hello")

	m := decodeLine(t, &buf)
	if m["message"] != "hello" {
		t.Errorf("message = %v", m["message"])
	}
	if m["user_id"] != "u1" {
		t.Errorf("user_id = %v", m["user_id"])
	}
	if _, ok := m["time"]; !ok {
		t.Error("expected time field")
	}
}

func TestInit_LevelFilters(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev); zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})

	Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	Warn().Msg("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("warn line missing: %q", buf.String())
	}
}

func TestErr_LevelFollowsError(t *testing.T) {
	buf := captureGlobal(t)

	Err(errors.New("boom")).Msg("with error")
	m := decodeLine(t, buf)
	if m["level"] != "error" || m["error"] != "boom" {
		t.Errorf("unexpected entry %v", m)
	}

	buf.Reset()
	Err(nil).Msg("without error")
	m = decodeLine(t, buf)
	if m["level"] != "info" {
		t.Errorf("level = %v, want info", m["level"])
	}
}

func TestWithComponent(t *testing.T) {
	buf := captureGlobal(t)

	l := WithComponent("recommend")
	l.Info().Msg("x")

	m := decodeLine(t, buf)
	if m["component"] != "recommend" {
		t.Errorf("component = %v", m["component"])
	}
}

func TestCtx_AddsScopedIDs(t *testing.T) {
	buf := captureGlobal(t)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr-1")
	ctx = ContextWithUserID(ctx, "user-1")

	Ctx(ctx).Info().Msg("scoped")

	m := decodeLine(t, buf)
	for k, want := range map[string]string{
		"request_id":     "req-1",
		"correlation_id": "corr-1",
		"user_id":        "user-1",
	} {
		if m[k] != want {
			t.Errorf("%s = %v, want %s", k, m[k], want)
		}
	}
}

func TestCtx_EmptyContextAddsNothing(t *testing.T) {
	buf := captureGlobal(t)

	Ctx(context.Background()).Info().Msg("bare")

	m := decodeLine(t, buf)
	for _, k := range []string{"request_id", "correlation_id", "user_id"} {
		if _, ok := m[k]; ok {
			t.Errorf("unexpected field %s", k)
		}
	}
}

func TestCtxFrom_KeepsBaseFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := NewTestLogger(&buf).With().Str("component", "api").Logger()
	ctx := ContextWithRequestID(context.Background(), "r-9")

	CtxFrom(ctx, base).Info().Msg("m")

	m := decodeLine(t, &buf)
	if m["component"] != "api" || m["request_id"] != "r-9" {
		t.Errorf("unexpected entry %v", m)
	}
}

func TestNewIDs(t *testing.T) {
	t.Parallel()

	a, b := NewRequestID(), NewRequestID()
	if a == b || len(a) != 36 {
		t.Errorf("request ids %q %q", a, b)
	}
	if got := len(NewCorrelationID()); got != 8 {
		t.Errorf("correlation id length = %d, want 8", got)
	}
}

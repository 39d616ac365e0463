// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandler_FieldsAndLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zl := NewTestLogger(&buf).Level(zerolog.TraceLevel)
	sl := slog.New(NewSlogHandler(zl))

	sl.Warn("restarting", "service", "catalog", "attempt", 3, "backoff", 2*time.Second)

	m := decodeLine(t, &buf)
	if m["level"] != "warn" {
		t.Errorf("level = %v", m["level"])
	}
	if m["service"] != "catalog" {
		t.Errorf("service = %v", m["service"])
	}
	if m["attempt"] != float64(3) {
		t.Errorf("attempt = %v", m["attempt"])
	}
	if m["message"] != "restarting" {
		t.Errorf("message = %v", m["message"])
	}
}

func TestSlogHandler_GroupsAndAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sl := slog.New(NewSlogHandler(NewTestLogger(&buf)))

	sl.With("topic", "behavior").WithGroup("msg").Info("handled", "uuid", "abc", slog.Group("meta", "kind", "like"))

	m := decodeLine(t, &buf)
	if m["topic"] != "behavior" {
		t.Errorf("topic = %v", m["topic"])
	}
	if m["msg.uuid"] != "abc" {
		t.Errorf("msg.uuid = %v", m["msg.uuid"])
	}
	if m["msg.meta.kind"] != "like" {
		t.Errorf("msg.meta.kind = %v", m["msg.meta.kind"])
	}
}

func TestSlogHandler_Error(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sl := slog.New(NewSlogHandler(NewTestLogger(&buf)))
	sl.Error("failed", "err", errors.New("disk full"))

	m := decodeLine(t, &buf)
	if m["level"] != "error" || m["err"] != "disk full" {
		t.Errorf("unexpected entry %v", m)
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	h := NewSlogHandler(NewTestLogger(&bytes.Buffer{}).Level(zerolog.WarnLevel))
	ctx := context.Background()
	if h.Enabled(ctx, slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(ctx, slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestZerologLevel(t *testing.T) {
	t.Parallel()

	tests := map[slog.Level]zerolog.Level{
		slog.LevelDebug - 4: zerolog.TraceLevel,
		slog.LevelDebug:     zerolog.DebugLevel,
		slog.LevelInfo:      zerolog.InfoLevel,
		slog.LevelInfo + 2:  zerolog.InfoLevel,
		slog.LevelWarn:      zerolog.WarnLevel,
		slog.LevelError + 4: zerolog.ErrorLevel,
	}
	for in, want := range tests {
		if got := zerologLevel(in); got != want {
			t.Errorf("zerologLevel(%v) = %v, want %v", in, got, want)
		}
	}
}

// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package logging

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// SlogHandler is a slog.Handler that writes through a zerolog.Logger.
type SlogHandler struct {
	zl     zerolog.Logger
	prefix string // dotted group path, including the trailing dot
	attrs  []slog.Attr
}

// NewSlogHandler wraps zl. The zerolog level of zl is honored by Enabled.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSlogHandler(zl zerolog.Logger) *SlogHandler {
	return &SlogHandler{zl: zl}
}

// NewSlogLogger returns a *slog.Logger backed by the global zerolog logger
// and tagged with component when it is non-empty.
func NewSlogLogger(component string) *slog.Logger {
	zl := Logger()
	if component != "" {
		zl = zl.With().Str("component", component).Logger()
	}
	return slog.New(NewSlogHandler(zl))
}

func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	lvl := zerologLevel(level)
	return lvl >= h.zl.GetLevel() && lvl >= zerolog.GlobalLevel()
}

//nolint:gocritic // slog.Record is passed by value per slog.Handler
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	ev := h.zl.WithLevel(zerologLevel(r.Level))
	if ev == nil {
		return nil
	}
	for _, a := range h.attrs {
		ev = appendAttr(ev, h.prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		ev = appendAttr(ev, h.prefix, a)
		return true
	})
	ev.Msg(r.Message)
	return nil
}

func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	// Resolve against the current prefix now so later groups don't rename them.
	zctx := h.zl.With()
	for _, a := range attrs {
		zctx = appendCtxAttr(zctx, h.prefix, a)
	}
	return &SlogHandler{zl: zctx.Logger(), prefix: h.prefix, attrs: h.attrs}
}

func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &SlogHandler{zl: h.zl, prefix: h.prefix + name + ".", attrs: h.attrs}
}

func appendAttr(ev *zerolog.Event, prefix string, a slog.Attr) *zerolog.Event {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return ev
	}
	key := prefix + a.Key
	v := a.Value
	switch v.Kind() {
	case slog.KindGroup:
		for _, ga := range v.Group() {
			ev = appendAttr(ev, key+".", ga)
		}
		return ev
	case slog.KindString:
		return ev.Str(key, v.String())
	case slog.KindInt64:
		return ev.Int64(key, v.Int64())
	case slog.KindUint64:
		return ev.Uint64(key, v.Uint64())
	case slog.KindFloat64:
		return ev.Float64(key, v.Float64())
	case slog.KindBool:
		return ev.Bool(key, v.Bool())
	case slog.KindDuration:
		return ev.Dur(key, v.Duration())
	case slog.KindTime:
		return ev.Time(key, v.Time())
	default:
		if err, ok := v.Any().(error); ok {
			return ev.AnErr(key, err)
		}
		return ev.Interface(key, v.Any())
	}
}

func appendCtxAttr(zctx zerolog.Context, prefix string, a slog.Attr) zerolog.Context {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return zctx
	}
	key := prefix + a.Key
	v := a.Value
	switch v.Kind() {
	case slog.KindGroup:
		for _, ga := range v.Group() {
			zctx = appendCtxAttr(zctx, key+".", ga)
		}
		return zctx
	case slog.KindString:
		return zctx.Str(key, v.String())
	case slog.KindInt64:
		return zctx.Int64(key, v.Int64())
	case slog.KindFloat64:
		return zctx.Float64(key, v.Float64())
	case slog.KindBool:
		return zctx.Bool(key, v.Bool())
	case slog.KindDuration:
		return zctx.Dur(key, v.Duration())
	default:
		return zctx.Interface(key, v.Any())
	}
}

func zerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level >= slog.LevelError:
		return zerolog.ErrorLevel
	case level >= slog.LevelWarn:
		return zerolog.WarnLevel
	case level >= slog.LevelInfo:
		return zerolog.InfoLevel
	case level >= slog.LevelDebug:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

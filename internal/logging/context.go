// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey     contextKey = "request_id"
	correlationIDKey contextKey = "correlation_id"
	userIDKey        contextKey = "user_id"
)

// NewRequestID returns a fresh UUIDv4 string.
func NewRequestID() string {
	return uuid.NewString()
}

// NewCorrelationID returns a short id used to stitch together log lines of
// one logical operation that spans goroutines (for example reward handling
// and the asynchronous behavior write it triggers).
func NewCorrelationID() string {
	return uuid.NewString()[:8]
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// ContextWithUserID records the authenticated user for log enrichment.
// Authorization decisions must not read it; use auth.UserIDFromContext.
func ContextWithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// Ctx returns the global logger enriched with whatever request scoped ids
// are present in ctx.
func Ctx(ctx context.Context) *zerolog.Logger {
	zctx := With()
	if id := RequestIDFromContext(ctx); id != "" {
		zctx = zctx.Str("request_id", id)
	}
	if id := CorrelationIDFromContext(ctx); id != "" {
		zctx = zctx.Str("correlation_id", id)
	}
	if id := UserIDFromContext(ctx); id != "" {
		zctx = zctx.Str("user_id", id)
	}
	l := zctx.Logger()
	return &l
}

// CtxFrom enriches an existing component logger with the ids in ctx.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func CtxFrom(ctx context.Context, base zerolog.Logger) *zerolog.Logger {
	zctx := base.With()
	if id := RequestIDFromContext(ctx); id != "" {
		zctx = zctx.Str("request_id", id)
	}
	if id := CorrelationIDFromContext(ctx); id != "" {
		zctx = zctx.Str("correlation_id", id)
	}
	if id := UserIDFromContext(ctx); id != "" {
		zctx = zctx.Str("user_id", id)
	}
	l := zctx.Logger()
	return &l
}

// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

// Package logging provides the process-wide zerolog logger for Aura.
//
// A single global logger is configured once at startup and shared by every
// package. JSON output is the production default; console output is meant
// for local development.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("user_id", userID).Msg("profile updated")
//	logging.Error().Err(err).Msg("reward persistence failed")
//
// # Request-scoped logging
//
// HTTP middleware stores the request id and the authenticated user id in the
// request context. Ctx(ctx) returns a logger that carries both:
//
//	logging.Ctx(ctx).Warn().Err(err).Msg("parser degraded")
//
// # Components
//
// Long-lived components derive a child logger with a component field:
//
//	logger := logging.WithComponent("recommend")
//
// # slog bridge
//
// Suture (via sutureslog) and Watermill accept a *slog.Logger. NewSlogLogger
// returns one whose records are written through zerolog, so every library
// ends up in the same stream with the same field names.
package logging

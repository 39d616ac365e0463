// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

/*
Package nlparser turns free-text event searches into a ParsedIntent.

Two implementations of Parser are provided:

  - Client: an OpenAI-compatible chat completions client guarded by a
    golang.org/x/time/rate limiter and a sony/gobreaker circuit breaker.
    Each call carries its own timeout. Failures map to ErrParserTimeout or
    ErrParserUnavailable.
  - KeywordParser: a local vocabulary and pattern matcher used when the
    client is disabled or fails. It never returns an error.

The recommendation engine tries the client first and falls back to the
keyword parser, marking the response as degraded.
*/
package nlparser

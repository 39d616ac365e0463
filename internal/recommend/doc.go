// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

// Package recommend is the adaptive recommendation engine.
//
// # Components
//
//   - Updater: pure transform from (profile, behavior event, reward) to the
//     next profile. Fixed per-action deltas on the event's category and
//     location, a running price average with a sweet spot, and the
//     attendance counter that ends cold start.
//   - Blend and SignalBuilder: cold-start ranking as a weighted sum of four
//     signals (popular in area, trending for the user's age, intent match,
//     time pattern).
//   - Selector: stateless exploit/explore split. The exploit share is
//     rounded half up in basis points; explore slots are drawn by weighted
//     sampling without replacement.
//   - Engine: feed, natural-language search, highlights, reward feedback,
//     behavior logging, onboarding and profile management.
//
// # Consistency
//
// Every profile write goes through profile.Store.Update and is followed by
// a cache invalidation before the call returns, so the next request from
// the same user reads the updated profile.
//
// # Degradation
//
// Natural-language parsing runs under its own timeout. A slow or failing
// parser falls back to the keyword parser and the response is flagged as
// degraded; it never fails the request. Profile store failures are not
// degraded: reads return ErrProfileUnavailable and writes ErrPersistence.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.ConfigFrom(cfg), recommend.Dependencies{
//	    Store:    store,
//	    Profiles: profile.NewCache(store, 10000, 5*time.Minute),
//	    Catalog:  index,
//	    Recorder: bus,
//	    Parser:   nlparser.NewClient(&cfg.Parser, nil),
//	}, logging.Logger())
package recommend

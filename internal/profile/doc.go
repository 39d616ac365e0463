// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

// Package profile holds the per-user preference document and its storage.
//
// Profile is the persisted model: category and location scores in [0,1],
// a running price band, an attendance counter and the derived cold-start
// flag. BadgerStore keeps one JSON document per user in BadgerDB and
// retries read-modify-write updates on transaction conflicts. Cache sits in
// front of any Store and is invalidated by writers, never updated in place.
package profile

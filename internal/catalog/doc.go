// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

// Package catalog holds the recommendable events and the radius index used
// for candidate retrieval. DuckDB is the source of truth; Index is reloaded
// from it periodically and patched in place on admin upserts.
package catalog

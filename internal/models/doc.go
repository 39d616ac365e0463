// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

/*
Package models defines data structures shared across Aura's packages.

  - BehaviorEvent and Action: interaction records, produced by the engine,
    carried by the event bus and persisted by the database package.
  - APIResponse, Meta, APIError: the HTTP response envelope.

Types here carry no behavior beyond small parsing helpers so that every
layer can import them without cycles.
*/
package models

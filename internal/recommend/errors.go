// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package recommend

import "errors"

var (
	// ErrInvalidEventKind is returned for an unrecognized behavior action.
	ErrInvalidEventKind = errors.New("invalid event kind")

	// ErrOutOfRangeReward is returned for a reward outside [-1, 1] or NaN.
	ErrOutOfRangeReward = errors.New("reward out of range")

	// ErrProfileUnavailable is returned when the profile store cannot be
	// read. Recommendations are not served from a guessed profile.
	ErrProfileUnavailable = errors.New("profile store unavailable")

	// ErrPersistence is returned when a profile write failed. The client
	// must retry; the update was not applied.
	ErrPersistence = errors.New("profile persistence failed")

	ErrProfileNotFound = errors.New("profile not found")

	// ErrEventNotFound is returned when a reward references an event the
	// catalog does not know.
	ErrEventNotFound = errors.New("event not found")

	// ErrCandidatesUnavailable is returned when the catalog index has not
	// been loaded yet.
	ErrCandidatesUnavailable = errors.New("candidate catalog unavailable")
)

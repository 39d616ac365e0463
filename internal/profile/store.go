// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package profile

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no document exists for a user.
	ErrNotFound = errors.New("profile not found")

	// ErrEmptyUserID is returned for operations on a blank user id.
	ErrEmptyUserID = errors.New("user id cannot be empty")

	// ErrConflictRetriesExhausted is returned when Update kept losing
	// optimistic transaction conflicts.
	ErrConflictRetriesExhausted = errors.New("profile update conflict retries exhausted")
)

// UpdateFunc transforms the current profile into the next one. current is
// nil when no document exists. It may run more than once under contention
// and must not mutate current.
type UpdateFunc func(current *Profile) (*Profile, error)

// Store persists one Profile per user.
type Store interface {
	// Load returns ErrNotFound when the user has no document.
	Load(ctx context.Context, userID string) (*Profile, error)

	// Upsert writes p as a whole.
	Upsert(ctx context.Context, p *Profile) error

	// Update runs fn inside a read-modify-write transaction and returns the
	// stored result.
	Update(ctx context.Context, userID string, fn UpdateFunc) (*Profile, error)

	// Delete removes the document and reports whether one existed.
	Delete(ctx context.Context, userID string) (bool, error)
}

// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package profile

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/aura/internal/logging"
	"github.com/tomtom215/aura/internal/metrics"
)

const keyPrefix = "profile:"

// Options configures OpenBadger.
type Options struct {
	Path            string
	InMemory        bool
	SyncWrites      bool
	ConflictRetries int
	RetryBackoff    time.Duration
}

// BadgerStore is a Store on BadgerDB. Each profile is one JSON value under
// "profile:<user_id>". Update relies on Badger's serializable transactions:
// a concurrent commit to the same key makes ours fail with ErrConflict, and
// the whole read-modify-write is retried on a fresh snapshot.
type BadgerStore struct {
	db       *badger.DB
	ownsDB   bool
	retries  int
	backoff  time.Duration
	inMemory bool
}

// OpenBadger opens (or creates) the database described by opts.
func OpenBadger(opts Options) (*BadgerStore, error) {
	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.SyncWrites = opts.SyncWrites
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := NewBadgerStore(db, opts.ConflictRetries, opts.RetryBackoff)
	s.ownsDB = true
	s.inMemory = opts.InMemory

	logging.Info().
		Str("path", opts.Path).
		Bool("in_memory", opts.InMemory).
		Bool("sync_writes", opts.SyncWrites).
		Msg("Profile store opened")
	return s, nil
}

// NewBadgerStore wraps an already open database. The caller keeps ownership.
func NewBadgerStore(db *badger.DB, retries int, backoff time.Duration) *BadgerStore {
	if retries < 1 {
		retries = 5
	}
	if backoff <= 0 {
		backoff = 5 * time.Millisecond
	}
	return &BadgerStore{db: db, retries: retries, backoff: backoff}
}

func key(userID string) []byte {
	return []byte(keyPrefix + userID)
}

func (s *BadgerStore) Load(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var p *Profile
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		p, err = readTxn(txn, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *BadgerStore) Upsert(ctx context.Context, p *Profile) error {
	if p == nil || p.UserID == "" {
		return ErrEmptyUserID
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(p.UserID), data)
	}); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

func (s *BadgerStore) Update(ctx context.Context, userID string, fn UpdateFunc) (*Profile, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	for attempt := 0; attempt < s.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var next *Profile
		err := s.db.Update(func(txn *badger.Txn) error {
			current, err := readTxn(txn, userID)
			if err != nil {
				return err
			}
			next, err = fn(current)
			if err != nil {
				return err
			}
			if next == nil {
				return errors.New("update function returned nil profile")
			}
			next.UserID = userID
			data, err := json.Marshal(next)
			if err != nil {
				return fmt.Errorf("marshal profile: %w", err)
			}
			return txn.Set(key(userID), data)
		})
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, badger.ErrConflict) {
			return nil, err
		}

		metrics.ProfileStoreConflicts.Inc()
		logging.Debug().Str("user_id", userID).Int("attempt", attempt+1).Msg("Profile update conflict, retrying")
		if err := sleepCtx(ctx, s.jitter(attempt)); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: user %s after %d attempts", ErrConflictRetriesExhausted, userID, s.retries)
}

func (s *BadgerStore) Delete(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, ErrEmptyUserID
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	existed := false
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key(userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		existed = true
		return txn.Delete(key(userID))
	})
	if err != nil {
		return false, fmt.Errorf("delete profile: %w", err)
	}
	return existed, nil
}

// Count returns the number of stored profiles.
func (s *BadgerStore) Count(ctx context.Context) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

// RunGC reclaims value log space until Badger reports nothing to rewrite.
func (s *BadgerStore) RunGC() error {
	if s.inMemory {
		return nil
	}
	for {
		err := s.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close closes the database if the store opened it.
func (s *BadgerStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

func readTxn(txn *badger.Txn, userID string) (*Profile, error) {
	item, err := txn.Get(key(userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	var p Profile
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &p)
	}); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// jitter returns backoff*2^attempt plus up to the same amount of noise.
func (s *BadgerStore) jitter(attempt int) time.Duration {
	base := s.backoff << uint(attempt)
	return base + time.Duration(rand.Int63n(int64(base)+1)) //nolint:gosec // retry jitter, not security sensitive
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aura/internal/catalog"
	"github.com/tomtom215/aura/internal/metrics"
)

const eventColumns = `id, title, category, tags, price, lat, lng, city, neighborhood,
	starts_at, popularity_score, trending_score, trending_age, age_restriction`

// ListEvents returns the whole catalog ordered by id. It satisfies
// catalog.Source.
func (db *DB) ListEvents(ctx context.Context) (events []catalog.Event, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "events", time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

// GetEvent returns one event, or ErrNotFound.
func (db *DB) GetEvent(ctx context.Context, id string) (e catalog.Event, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() {
		qerr := err
		if errors.Is(err, ErrNotFound) {
			qerr = nil
		}
		metrics.RecordDBQuery("select", "events", time.Since(start), qerr)
	}()

	row := db.conn.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err = scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Event{}, fmt.Errorf("event %q: %w", id, ErrNotFound)
	}
	return e, err
}

// UpsertEvents inserts or replaces events in one transaction.
func (db *DB) UpsertEvents(ctx context.Context, events []catalog.Event) (err error) {
	if len(events) == 0 {
		return nil
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "events", time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO events (`+eventColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer closeWithLog(stmt, "statement")

	now := time.Now().UTC()
	for i := range events {
		e := &events[i]
		tags, err := json.Marshal(nonNilStrings(e.Tags))
		if err != nil {
			return fmt.Errorf("failed to encode tags for %s: %w", e.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.Title, e.Category, string(tags), e.Price, e.Lat, e.Lng,
			e.City, e.Neighborhood, e.StartsAt.UTC(), e.PopularityScore,
			e.TrendingScore, e.TrendingAge, e.AgeRestriction, now,
		); err != nil {
			return fmt.Errorf("failed to upsert event %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}
	return nil
}

// DeleteEvent removes an event. It reports whether a row existed.
func (db *DB) DeleteEvent(ctx context.Context, id string) (bool, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := db.conn.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	metrics.RecordDBQuery("delete", "events", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// CountEvents returns the catalog size.
func (db *DB) CountEvents(ctx context.Context) (int, error) {
	return db.count(ctx, "events")
}

func (db *DB) count(ctx context.Context, table string) (int, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var n int
	start := time.Now()
	//nolint:gosec // table is one of two package constants
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	metrics.RecordDBQuery("count", table, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (catalog.Event, error) {
	var (
		e    catalog.Event
		tags string
	)
	err := row.Scan(
		&e.ID, &e.Title, &e.Category, &tags, &e.Price, &e.Lat, &e.Lng,
		&e.City, &e.Neighborhood, &e.StartsAt, &e.PopularityScore,
		&e.TrendingScore, &e.TrendingAge, &e.AgeRestriction,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("failed to scan event: %w", err)
	}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
			return e, fmt.Errorf("failed to decode tags for %s: %w", e.ID, err)
		}
	}
	if len(e.Tags) == 0 {
		e.Tags = nil
	}
	e.StartsAt = e.StartsAt.UTC()
	return e, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

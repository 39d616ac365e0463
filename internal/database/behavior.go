// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aura/internal/metrics"
	"github.com/tomtom215/aura/internal/models"
)

const behaviorColumns = `id, user_id, event_id, action, ts, reward, lat, lng, category,
	city, neighborhood, price, query_text, session_id, chosen_event_ids, filters_applied`

const insertBehaviorSQL = `INSERT OR IGNORE INTO behavior_events (` + behaviorColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// InsertBehaviorEvent appends one event to the behavior log. An event whose
// id is already present is ignored.
func (db *DB) InsertBehaviorEvent(ctx context.Context, ev *models.BehaviorEvent) error {
	return db.InsertBehaviorEvents(ctx, []*models.BehaviorEvent{ev})
}

// InsertBehaviorEvents appends a batch in one transaction.
func (db *DB) InsertBehaviorEvents(ctx context.Context, events []*models.BehaviorEvent) (err error) {
	if len(events) == 0 {
		return nil
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "behavior_events", time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertBehaviorSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer closeWithLog(stmt, "statement")

	for _, ev := range events {
		args, err := behaviorArgs(ev)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert behavior event %s: %w", ev.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit behavior events: %w", err)
	}
	return nil
}

// RecentBehavior returns up to limit of a user's events, newest first.
func (db *DB) RecentBehavior(ctx context.Context, userID string, limit int) (events []models.BehaviorEvent, err error) {
	if limit <= 0 {
		limit = 20
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "behavior_events", time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+behaviorColumns+` FROM behavior_events WHERE user_id = ? ORDER BY ts DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query behavior: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		ev, err := scanBehavior(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating behavior: %w", err)
	}
	return events, nil
}

// ActionCounts returns the number of logged events per action since the
// given time.
func (db *DB) ActionCounts(ctx context.Context, since time.Time) (counts map[models.Action]int, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("aggregate", "behavior_events", time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT action, COUNT(*) FROM behavior_events WHERE ts >= ? GROUP BY action`,
		since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate behavior: %w", err)
	}
	defer closeWithLog(rows, "rows")

	counts = make(map[models.Action]int)
	for rows.Next() {
		var (
			action string
			n      int
		)
		if err := rows.Scan(&action, &n); err != nil {
			return nil, fmt.Errorf("failed to scan action count: %w", err)
		}
		counts[models.Action(action)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating action counts: %w", err)
	}
	return counts, nil
}

// CountBehavior returns the size of the behavior log.
func (db *DB) CountBehavior(ctx context.Context) (int, error) {
	return db.count(ctx, "behavior_events")
}

func behaviorArgs(ev *models.BehaviorEvent) ([]any, error) {
	chosen, err := json.Marshal(nonNilStrings(ev.ChosenEventIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to encode chosen events for %s: %w", ev.ID, err)
	}
	var filters string
	if ev.FiltersApplied != nil {
		raw, err := json.Marshal(ev.FiltersApplied)
		if err != nil {
			return nil, fmt.Errorf("failed to encode filters for %s: %w", ev.ID, err)
		}
		filters = string(raw)
	}
	var lat, lng sql.NullFloat64
	if ev.Location != nil {
		lat = sql.NullFloat64{Float64: ev.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: ev.Location.Lng, Valid: true}
	}
	return []any{
		ev.ID, ev.UserID, ev.EventID, string(ev.Action), ev.Timestamp.UTC(),
		nullFloat(ev.Reward), lat, lng, ev.Category, ev.City, ev.Neighborhood,
		nullFloat(ev.Price), ev.QueryText, ev.SessionID, string(chosen), filters,
	}, nil
}

func scanBehavior(row rowScanner) (models.BehaviorEvent, error) {
	var (
		ev                      models.BehaviorEvent
		action, chosen, filters string
		reward, lat, lng, price sql.NullFloat64
	)
	err := row.Scan(
		&ev.ID, &ev.UserID, &ev.EventID, &action, &ev.Timestamp, &reward, &lat, &lng,
		&ev.Category, &ev.City, &ev.Neighborhood, &price, &ev.QueryText, &ev.SessionID, &chosen, &filters,
	)
	if err != nil {
		return ev, fmt.Errorf("failed to scan behavior event: %w", err)
	}
	ev.Action = models.Action(action)
	ev.Timestamp = ev.Timestamp.UTC()
	if reward.Valid {
		ev.Reward = &reward.Float64
	}
	if price.Valid {
		ev.Price = &price.Float64
	}
	if lat.Valid && lng.Valid {
		ev.Location = &models.GeoPoint{Lat: lat.Float64, Lng: lng.Float64}
	}
	if chosen != "" && chosen != "[]" {
		if err := json.Unmarshal([]byte(chosen), &ev.ChosenEventIDs); err != nil {
			return ev, fmt.Errorf("failed to decode chosen events for %s: %w", ev.ID, err)
		}
	}
	if filters != "" {
		ev.FiltersApplied = &models.SearchFilters{}
		if err := json.Unmarshal([]byte(filters), ev.FiltersApplied); err != nil {
			return ev, fmt.Errorf("failed to decode filters for %s: %w", ev.ID, err)
		}
	}
	return ev, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

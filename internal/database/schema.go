// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

/*
schema.go - Database Schema

Tables:
  - events: the recommendable catalog. Tags are stored as a JSON array in a
    VARCHAR column so no DuckDB extension is needed to read them back.
  - behavior_events: the append-only interaction log. Rows are keyed by the
    event id assigned at creation, so a redelivered message is ignored.

The events table carries no secondary index: DuckDB refuses ON CONFLICT
updates of indexed columns, and the catalog is always read in full.

All timestamps are stored as naive TIMESTAMP values in UTC. TIMESTAMPTZ
would require the ICU extension, which is never autoloaded.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	for _, query := range indexCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS events (
			id VARCHAR PRIMARY KEY,
			title VARCHAR NOT NULL,
			category VARCHAR NOT NULL,
			tags VARCHAR NOT NULL DEFAULT '[]',
			price DOUBLE NOT NULL DEFAULT 0,
			lat DOUBLE NOT NULL,
			lng DOUBLE NOT NULL,
			city VARCHAR NOT NULL DEFAULT '',
			neighborhood VARCHAR NOT NULL DEFAULT '',
			starts_at TIMESTAMP NOT NULL,
			popularity_score DOUBLE NOT NULL DEFAULT 0,
			trending_score DOUBLE NOT NULL DEFAULT 0,
			trending_age INTEGER NOT NULL DEFAULT 0,
			age_restriction VARCHAR NOT NULL DEFAULT '',
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS behavior_events (
			id VARCHAR PRIMARY KEY,
			user_id VARCHAR NOT NULL,
			event_id VARCHAR NOT NULL DEFAULT '',
			action VARCHAR NOT NULL,
			ts TIMESTAMP NOT NULL,
			reward DOUBLE,
			lat DOUBLE,
			lng DOUBLE,
			category VARCHAR NOT NULL DEFAULT '',
			city VARCHAR NOT NULL DEFAULT '',
			neighborhood VARCHAR NOT NULL DEFAULT '',
			price DOUBLE,
			query_text VARCHAR NOT NULL DEFAULT '',
			session_id VARCHAR NOT NULL DEFAULT '',
			chosen_event_ids VARCHAR NOT NULL DEFAULT '[]',
			filters_applied VARCHAR NOT NULL DEFAULT ''
		)`,
	}
}

func indexCreationQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_behavior_user_ts ON behavior_events(user_id, ts)`,
		`CREATE INDEX IF NOT EXISTS idx_behavior_action ON behavior_events(action)`,
	}
}

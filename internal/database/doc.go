// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

// Package database provides DuckDB-backed storage for the event catalog and
// the append-only behavior log.
//
// # Overview
//
// The catalog table feeds the in-memory geographic index (catalog.Index)
// through ListEvents, which satisfies catalog.Source. The behavior log is
// written by the event bus consumer and read back for profile debugging and
// admin statistics.
//
// Files:
//   - database.go: connection lifecycle, pool configuration, checkpoint on close
//   - schema.go: table and index creation
//   - events.go: catalog reads and upserts
//   - behavior.go: behavior log inserts and queries
//   - seed.go: demo catalog for development
//
// # Database Technology
//
// DuckDB is opened through the CGO driver github.com/duckdb/duckdb-go/v2 with
// extension auto-install and auto-load disabled. Every query records latency
// and failures through the metrics package.
//
// # Usage
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	index := catalog.NewIndex(cfg.Catalog.CellSizeDeg)
//	if _, err := index.Refresh(ctx, db); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// DB is safe for concurrent use; database/sql pools connections.
package database

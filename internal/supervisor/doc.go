// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

/*
Package supervisor runs Aura's long-lived goroutines under a suture v4 tree.

	aura (root)
	├── data-layer       catalog-refresh, profile-store-gc
	├── messaging-layer  behavior-consumer
	└── api-layer        http-server

Each layer is its own supervisor, so restarts of a failing consumer are
counted and backed off without touching the HTTP server. Supervisor events
are logged through sutureslog on top of the zerolog slog bridge.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewCatalogRefreshService(index, db, cfg.Catalog.RefreshInterval))
	tree.AddMessagingService(consumer)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	err = tree.Serve(ctx)

A service that returns an error is restarted; FailureThreshold failures
within the FailureDecay window put its layer into FailureBackoff. On
shutdown every service gets ShutdownTimeout to return; stragglers are listed
by UnstoppedServiceReport.

DuckDB and BadgerDB are not services. They are opened before the tree starts
and closed after it stops.
*/
package supervisor

// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tomtom215/aura/internal/api"
	"github.com/tomtom215/aura/internal/auth"
	"github.com/tomtom215/aura/internal/authz"
	"github.com/tomtom215/aura/internal/catalog"
	"github.com/tomtom215/aura/internal/config"
	"github.com/tomtom215/aura/internal/database"
	"github.com/tomtom215/aura/internal/eventbus"
	"github.com/tomtom215/aura/internal/logging"
	"github.com/tomtom215/aura/internal/nlparser"
	"github.com/tomtom215/aura/internal/profile"
	"github.com/tomtom215/aura/internal/recommend"
	"github.com/tomtom215/aura/internal/supervisor"
	"github.com/tomtom215/aura/internal/supervisor/services"
)

// app owns every long-lived component. Stores are opened in newApp and
// closed in Close; goroutines only run under the supervisor tree.
type app struct {
	cfg *config.Config

	profiles *profile.BadgerStore
	db       *database.DB
	index    *catalog.Index
	bus      *eventbus.Bus
	consumer *eventbus.Consumer
	engine   *recommend.Engine
	enforcer *authz.Enforcer
	server   *http.Server

	closers []namedCloser
}

type namedCloser struct {
	name string
	c    io.Closer
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// newApp opens the stores, loads the catalog and wires the engine and the
// HTTP stack. On error everything opened so far is closed.
func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if err = a.openStores(ctx); err != nil {
		return nil, err
	}
	a.loadCatalog(ctx)

	if a.bus, err = eventbus.New(ctx, &cfg.EventBus, nil); err != nil {
		return nil, fmt.Errorf("create event bus: %w", err)
	}
	a.track("eventbus", a.bus)
	a.consumer = eventbus.NewConsumer(a.bus, eventbus.NewBehaviorHandler(a.db), eventbus.ConsumerConfig{
		CloseTimeout:    cfg.EventBus.CloseTimeout,
		RetryMaxRetries: cfg.EventBus.RetryCount,
		RetryInterval:   cfg.EventBus.RetryInterval,
	})

	if a.engine, err = a.newEngine(); err != nil {
		return nil, err
	}
	if err = a.newServer(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) openStores(ctx context.Context) error {
	var err error
	a.profiles, err = profile.OpenBadger(profile.Options{
		Path:            a.cfg.Store.Path,
		InMemory:        a.cfg.Store.InMemory,
		SyncWrites:      a.cfg.Store.SyncWrites,
		ConflictRetries: a.cfg.Store.ConflictRetries,
		RetryBackoff:    a.cfg.Store.RetryBackoff,
	})
	if err != nil {
		return err
	}
	a.track("profile store", a.profiles)

	if a.db, err = database.New(&a.cfg.Database); err != nil {
		return err
	}
	a.track("duckdb", a.db)

	if a.cfg.Database.SeedDemo {
		n, err := a.db.SeedDemoEvents(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("seed demo events: %w", err)
		}
		logging.Info().Int("events", n).Msg("Demo events seeded")
	}
	return nil
}

// loadCatalog does the first catalog load. A failure is not fatal: the
// readiness probe reports the catalog as not loaded and the refresh service
// retries.
func (a *app) loadCatalog(ctx context.Context) {
	a.index = catalog.NewIndex(a.cfg.Catalog.CellSizeDeg)
	n, err := a.index.Refresh(ctx, a.db)
	if err != nil {
		logging.Warn().Err(err).Msg("Initial catalog load failed; serving degraded until refresh succeeds")
		return
	}
	logging.Info().Int("events", n).Msg("Catalog loaded")
}

func (a *app) newEngine() (*recommend.Engine, error) {
	cacheCapacity := 0
	if a.cfg.Cache.Enabled {
		cacheCapacity = a.cfg.Cache.Capacity
	}

	engine, err := recommend.NewEngine(recommend.ConfigFrom(a.cfg), recommend.Dependencies{
		Store:    a.profiles,
		Profiles: profile.NewCache(a.profiles, cacheCapacity, a.cfg.Cache.TTL),
		Catalog:  a.index,
		Recorder: a.bus,
		Parser:   buildParser(&a.cfg.Parser),
		Fallback: nlparser.NewKeywordParser(),
	}, logging.WithComponent("recommend"))
	if err != nil {
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}
	return engine, nil
}

// buildParser returns the remote parser, or nil when it is disabled so the
// engine goes straight to the keyword fallback.
func buildParser(cfg *config.ParserConfig) nlparser.Parser {
	if !cfg.Enabled {
		logging.Info().Msg("Natural-language parser disabled; using keyword parser")
		return nil
	}
	logging.Info().Str("base_url", cfg.BaseURL).Str("model", cfg.Model).Msg("Natural-language parser enabled")
	return nlparser.NewClient(cfg, &http.Client{Timeout: cfg.Timeout})
}

func (a *app) newServer() error {
	sec := &a.cfg.Security

	var jwtManager *auth.JWTManager
	if sec.AuthMode == string(auth.AuthModeJWT) {
		var err error
		if jwtManager, err = auth.NewJWTManager(sec); err != nil {
			return fmt.Errorf("create JWT manager: %w", err)
		}
	} else {
		logging.Warn().Str("user_id", sec.DevUserID).Msg("Authentication disabled; every request is served as the development user")
	}
	authn, err := auth.NewMiddleware(sec, jwtManager)
	if err != nil {
		return fmt.Errorf("create auth middleware: %w", err)
	}

	if a.enforcer, err = authz.NewEnforcer(authz.EnforcerConfigFrom(sec)); err != nil {
		return fmt.Errorf("create authorization enforcer: %w", err)
	}
	a.track("authz", closerFunc(func() error { a.enforcer.Close(); return nil }))

	handler, err := api.NewHandler(api.HandlerDeps{
		Engine:         a.engine,
		Store:          a.db,
		Index:          a.index,
		RequestTimeout: a.cfg.Server.WriteTimeout,
	})
	if err != nil {
		return err
	}
	router, err := api.NewRouter(handler, authn, authz.NewMiddleware(a.enforcer), api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(sec)))
	if err != nil {
		return err
	}

	a.server = &http.Server{
		Addr:              a.cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
		IdleTimeout:       a.cfg.Server.IdleTimeout,
	}
	return nil
}

// Register adds the app's services to tree.
func (a *app) Register(tree *supervisor.SupervisorTree) {
	tree.AddDataService(services.NewCatalogRefreshService(a.index, a.db, a.cfg.Catalog.RefreshInterval))
	if !a.cfg.Store.InMemory {
		tree.AddDataService(services.NewStoreGCService(a.profiles, a.cfg.Store.GCInterval))
	}
	tree.AddMessagingService(a.consumer)
	tree.AddAPIService(services.NewHTTPServerService(a.server, a.cfg.Server.ShutdownTimeout))
}

func (a *app) track(name string, c io.Closer) {
	a.closers = append(a.closers, namedCloser{name: name, c: c})
}

// Close releases components in reverse order of creation. The event bus goes
// before DuckDB so buffered behavior has somewhere to land.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		nc := a.closers[i]
		if err := nc.c.Close(); err != nil {
			logging.Error().Err(err).Str("component", nc.name).Msg("Error during shutdown")
		}
	}
	a.closers = nil
}

// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/aura/internal/catalog"
	"github.com/tomtom215/aura/internal/logging"
)

// PeriodicService runs a task on a fixed interval until canceled. A failed
// run is logged and retried on the next tick; it never restarts the service.
type PeriodicService struct {
	name       string
	interval   time.Duration
	timeout    time.Duration
	runOnStart bool
	task       func(ctx context.Context) error
	logger     zerolog.Logger

	// tick replaces the ticker in tests.
	tick func(d time.Duration) (<-chan time.Time, func())
}

// NewPeriodicService creates a service that calls task every interval.
// Each run gets its own timeout (defaulting to the interval).
func NewPeriodicService(name string, interval time.Duration, runOnStart bool, task func(ctx context.Context) error) *PeriodicService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PeriodicService{
		name:       name,
		interval:   interval,
		timeout:    interval,
		runOnStart: runOnStart,
		task:       task,
		logger:     logging.WithComponent(name),
		tick: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Serve implements suture.Service.
func (s *PeriodicService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("Periodic service starting")

	if s.runOnStart {
		s.run(ctx)
	}

	ticks, stop := s.tick(s.interval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Periodic service stopping")
			return ctx.Err()
		case <-ticks:
			s.run(ctx)
		}
	}
}

func (s *PeriodicService) run(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.task(runCtx); err != nil {
		s.logger.Warn().Err(err).Dur("took", time.Since(start)).Msg("Periodic run failed")
		return
	}
	s.logger.Debug().Dur("took", time.Since(start)).Msg("Periodic run complete")
}

func (s *PeriodicService) String() string {
	return s.name
}

// CatalogRefresher reloads an in-memory catalog. *catalog.Index implements it.
type CatalogRefresher interface {
	Refresh(ctx context.Context, src catalog.Source) (int, error)
}

// NewCatalogRefreshService reloads the index from src every interval so
// events written by other instances become visible. The initial load happens
// before the tree starts, so there is no run on start.
func NewCatalogRefreshService(index CatalogRefresher, src catalog.Source, interval time.Duration) *PeriodicService {
	return NewPeriodicService("catalog-refresh", interval, false, func(ctx context.Context) error {
		_, err := index.Refresh(ctx, src)
		return err
	})
}

// GarbageCollector reclaims store space. *profile.BadgerStore implements it.
type GarbageCollector interface {
	RunGC() error
}

// NewStoreGCService runs value log GC on the profile store every interval.
func NewStoreGCService(gc GarbageCollector, interval time.Duration) *PeriodicService {
	return NewPeriodicService("profile-store-gc", interval, false, func(context.Context) error {
		return gc.RunGC()
	})
}

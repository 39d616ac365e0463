// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package api

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/aura/internal/catalog"
	"github.com/tomtom215/aura/internal/models"
	"github.com/tomtom215/aura/internal/profile"
	"github.com/tomtom215/aura/internal/recommend"
)

// Version is reported by the health endpoint. Overridden at link time.
var Version = "dev"

// Recommender is the engine surface the handlers use. *recommend.Engine
// implements it.
type Recommender interface {
	RecommendFeed(ctx context.Context, req recommend.FeedRequest) (*recommend.FeedResponse, error)
	RecommendHighlights(ctx context.Context, req recommend.HighlightsRequest) (*recommend.HighlightsResponse, error)
	RecommendNatural(ctx context.Context, req recommend.NaturalRequest) (*recommend.NaturalResponse, error)
	SubmitReward(ctx context.Context, req recommend.RewardRequest) (*recommend.RewardResult, error)
	LogBehavior(ctx context.Context, req recommend.BehaviorLog) (string, error)
	GetProfile(ctx context.Context, userID string) (*profile.Profile, error)
	ResetProfile(ctx context.Context, userID string) (bool, error)
	Onboard(ctx context.Context, req recommend.OnboardingRequest) (*profile.Profile, error)
}

// EventStore is the DuckDB surface: catalog writes, the behavior log and
// health. *database.DB implements it.
type EventStore interface {
	UpsertEvents(ctx context.Context, events []catalog.Event) error
	RecentBehavior(ctx context.Context, userID string, limit int) ([]models.BehaviorEvent, error)
	Ping(ctx context.Context) error
}

// CatalogIndex is the in-memory candidate index. *catalog.Index implements it.
type CatalogIndex interface {
	Upsert(events ...catalog.Event)
	Loaded() bool
	Len() int
	LoadedAt() time.Time
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_recommend.go: feed, natural search, highlights, reward
//   - handlers_user.go: behavior log, onboarding, profile, reset
//   - handlers_admin.go: catalog upsert
//   - handlers_health.go: health, liveness, readiness
type Handler struct {
	engine    Recommender
	store     EventStore
	index     CatalogIndex
	startTime time.Time

	// requestTimeout bounds engine calls; zero leaves the request context alone.
	requestTimeout time.Duration
}

// HandlerDeps are the Handler's collaborators. Engine, Store and Index are
// required.
type HandlerDeps struct {
	Engine         Recommender
	Store          EventStore
	Index          CatalogIndex
	RequestTimeout time.Duration
}

// NewHandler creates a new API handler with all required dependencies.
func NewHandler(deps HandlerDeps) (*Handler, error) {
	switch {
	case deps.Engine == nil:
		return nil, errors.New("api: engine is required")
	case deps.Store == nil:
		return nil, errors.New("api: event store is required")
	case deps.Index == nil:
		return nil, errors.New("api: catalog index is required")
	}
	return &Handler{
		engine:         deps.Engine,
		store:          deps.Store,
		index:          deps.Index,
		startTime:      time.Now(),
		requestTimeout: deps.RequestTimeout,
	}, nil
}

// withTimeout derives the context for one engine call.
func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.requestTimeout)
}

// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/aura/internal/middleware"
)

// Authenticator puts the caller's identity in the request context.
// *auth.Middleware implements it.
type Authenticator interface {
	Authenticate(next http.Handler) http.Handler
}

// Authorizer checks the caller's roles against the request.
// *authz.Middleware implements it.
type Authorizer interface {
	AuthorizeRequest(next http.Handler) http.Handler
}

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	authenticator Authenticator
	authorizer    Authorizer
	chiMiddleware *ChiMiddleware
	slowRequest   time.Duration
}

// NewRouter creates the router. authorizer may be nil, in which case every
// authenticated caller may reach every route, admin included.
func NewRouter(handler *Handler, authenticator Authenticator, authorizer Authorizer, chiMW *ChiMiddleware) (*Router, error) {
	if handler == nil || authenticator == nil {
		return nil, errors.New("api: handler and authenticator are required")
	}
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		authenticator: authenticator,
		authorizer:    authorizer,
		chiMiddleware: chiMW,
		slowRequest:   middleware.DefaultSlowRequestThreshold,
	}, nil
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Applied to all routes, in order.
	r.Use(requestStart)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.RequestLogger(router.slowRequest))
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Everything else acts on behalf of the authenticated user.
	r.Group(func(r chi.Router) {
		r.Use(router.authenticator.Authenticate)
		if router.authorizer != nil {
			r.Use(router.authorizer.AuthorizeRequest)
		}
		r.Use(router.chiMiddleware.RateLimit())

		r.Route("/v1/recommend", func(r chi.Router) {
			r.Post("/feed", router.handler.RecommendFeed)
			r.Post("/natural", router.handler.RecommendNatural)
			r.Post("/highlights", router.handler.RecommendHighlights)
			r.Post("/feedback/reward", router.handler.SubmitReward)
		})

		r.Post("/v1/behavior/log", router.handler.LogBehavior)

		r.Route("/v1/user", func(r chi.Router) {
			r.Post("/onboarding", router.handler.Onboarding)
			r.Get("/profile", router.handler.GetProfile)
			r.Post("/reset", router.handler.ResetProfile)
		})

		r.Put("/v1/admin/events", router.handler.UpsertEvents)
	})

	return r
}

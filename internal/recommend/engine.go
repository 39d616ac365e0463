// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/aura/internal/catalog"
	"github.com/tomtom215/aura/internal/logging"
	"github.com/tomtom215/aura/internal/metrics"
	"github.com/tomtom215/aura/internal/models"
	"github.com/tomtom215/aura/internal/nlparser"
	"github.com/tomtom215/aura/internal/profile"
)

// ProfileCache is the read path for profiles. *profile.Cache implements it.
type ProfileCache interface {
	// Load returns profile.ErrNotFound when the user has no document.
	Load(ctx context.Context, userID string) (*profile.Profile, error)
	Invalidate(userID string)
}

// Candidates is the event catalog. *catalog.Index implements it.
type Candidates interface {
	Get(id string) (catalog.Event, bool)
	Nearby(lat, lng, radiusKm float64, limit int) ([]catalog.Event, error)
	All() ([]catalog.Event, error)
}

// BehaviorRecorder appends behavior events to the log. *eventbus.Bus
// implements it.
type BehaviorRecorder interface {
	Record(ctx context.Context, ev *BehaviorEvent) error
}

// Dependencies are the collaborators of an Engine. Parser and Recorder are
// optional.
type Dependencies struct {
	Store    profile.Store
	Profiles ProfileCache
	Catalog  Candidates
	Recorder BehaviorRecorder

	// Parser is the external natural-language parser. Fallback is used when
	// it is nil, slow or failing.
	Parser   nlparser.Parser
	Fallback nlparser.Parser

	// Rand overrides the seeded exploration source.
	Rand Rand
	// Now overrides the clock.
	Now func() time.Time
}

// Engine serves recommendations and applies feedback to user profiles.
// It is safe for concurrent use.
type Engine struct {
	cfg    *Config
	logger zerolog.Logger

	store    profile.Store
	profiles ProfileCache
	catalog  Candidates
	recorder BehaviorRecorder
	parser   nlparser.Parser
	fallback nlparser.Parser

	updater  Updater
	signals  SignalBuilder
	selector Selector

	rng   Rand
	now   func() time.Time
	newID func() string
}

// NewEngine creates an engine. cfg may be nil for the defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, deps Dependencies, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Store == nil || deps.Catalog == nil {
		return nil, errors.New("profile store and catalog are required")
	}

	e := &Engine{
		cfg:      cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		store:    deps.Store,
		profiles: deps.Profiles,
		catalog:  deps.Catalog,
		recorder: deps.Recorder,
		parser:   deps.Parser,
		fallback: deps.Fallback,
		updater:  Updater{ColdStartThreshold: cfg.ColdStartThreshold},
		signals:  SignalBuilder{DefaultAge: cfg.DefaultAge},
		selector: Selector{ExploitBP: cfg.ExploitBP, Epsilon: cfg.Epsilon},
		rng:      deps.Rand,
		now:      deps.Now,
		newID:    uuid.NewString,
	}
	if e.profiles == nil {
		e.profiles = profile.NewCache(deps.Store, 0, 0)
	}
	if e.fallback == nil {
		e.fallback = nlparser.NewKeywordParser()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		e.rng = newLockedRand(seed)
	}
	return e, nil
}

// RecommendFeed returns the personalized home feed.
//
// Users without a profile, or still in cold start, get the blended
// cold-start ranking; warm users are ranked by affinity. Both go through
// the exploit/explore selector.
func (e *Engine) RecommendFeed(ctx context.Context, req FeedRequest) (*FeedResponse, error) {
	start := time.Now()

	count := req.Count
	if count <= 0 {
		count = e.cfg.DefaultFeedCount
	}
	if count > e.cfg.MaxFeedCount {
		count = e.cfg.MaxFeedCount
	}

	p, err := e.loadProfile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	candidates, err := e.nearby(req.Lat, req.Lng, req.RadiusKm)
	if err != nil {
		return nil, err
	}

	path := PathWarm
	var pool []Scored
	if p.IsCold() {
		path = PathColdStart
		pool = e.coldStartPool(p, candidates, 0)
	} else {
		pool = make([]Scored, len(candidates))
		for i, c := range candidates {
			pool[i] = Scored{Event: c, Affinity: Affinity(c, p)}
		}
	}

	selected := e.selector.Select(pool, count, e.rng)
	recs := make([]Recommendation, len(selected))
	for i, s := range selected {
		reason := ReasonNewMember
		if path == PathWarm {
			reason = Reason(s.Event, p)
			if s.Exploration {
				reason = ReasonExplore
			}
		}
		recs[i] = toRecommendation(s, reason)
	}

	metrics.RecordRecommendation("feed", path, time.Since(start))
	logging.Ctx(ctx).Debug().
		Str("component", "recommend").
		Str("path", path).
		Int("candidates", len(candidates)).
		Int("served", len(recs)).
		Dur("took", time.Since(start)).
		Msg("Feed served")

	return &FeedResponse{Events: recs, TotalCount: len(recs), Path: path}, nil
}

// RecommendHighlights returns the trending row: events at or above the
// trending threshold ranked by trending score, backfilled with the most
// popular nearby events when too few qualify.
func (e *Engine) RecommendHighlights(ctx context.Context, req HighlightsRequest) (*HighlightsResponse, error) {
	start := time.Now()

	candidates, err := e.nearby(req.Lat, req.Lng, req.RadiusKm)
	if err != nil {
		return nil, err
	}

	trending := make([]catalog.Event, 0, len(candidates))
	for _, c := range candidates {
		if c.TrendingScore >= e.cfg.HighlightsThreshold {
			trending = append(trending, c)
		}
	}
	sort.SliceStable(trending, func(i, j int) bool {
		a, b := trending[i], trending[j]
		if a.TrendingScore != b.TrendingScore {
			return a.TrendingScore > b.TrendingScore
		}
		if a.PopularityScore != b.PopularityScore {
			return a.PopularityScore > b.PopularityScore
		}
		return a.ID < b.ID
	})
	if len(trending) > e.cfg.HighlightsMax {
		trending = trending[:e.cfg.HighlightsMax]
	}

	ids := make([]string, 0, e.cfg.HighlightsMax)
	seen := make(map[string]struct{}, len(trending))
	for _, c := range trending {
		ids = append(ids, c.ID)
		seen[c.ID] = struct{}{}
	}

	if len(ids) < e.cfg.HighlightsMin {
		popular := append([]catalog.Event(nil), candidates...)
		sort.SliceStable(popular, func(i, j int) bool {
			if popular[i].PopularityScore != popular[j].PopularityScore {
				return popular[i].PopularityScore > popular[j].PopularityScore
			}
			return popular[i].ID < popular[j].ID
		})
		for _, c := range popular {
			if len(ids) >= e.cfg.HighlightsMin {
				break
			}
			if _, ok := seen[c.ID]; ok {
				continue
			}
			ids = append(ids, c.ID)
		}
	}

	metrics.RecordRecommendation("highlights", PathWarm, time.Since(start))
	return &HighlightsResponse{EventIDs: ids, Message: HighlightsMessage}, nil
}

// RecommendNatural answers a free-text search.
//
// The query is parsed by the external parser under a timeout; any parser
// failure degrades to the keyword parser rather than failing the request.
// Candidates are filtered by the parsed hard constraints and ranked by
// affinity. An intent without constraints, or a degraded intent whose
// constraints match nothing, falls back to matching the query against
// categories and locations, and then to the cold-start ranking.
func (e *Engine) RecommendNatural(ctx context.Context, req NaturalRequest) (*NaturalResponse, error) {
	start := time.Now()

	intent, degraded := e.parse(ctx, req.Query)

	p, err := e.loadProfile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	var candidates []catalog.Event
	if req.Lat != nil && req.Lng != nil {
		candidates, err = e.nearby(*req.Lat, *req.Lng, req.RadiusKm)
	} else {
		candidates, err = e.catalog.All()
		if errors.Is(err, catalog.ErrNotLoaded) {
			err = ErrCandidatesUnavailable
		}
	}
	if err != nil {
		return nil, err
	}

	path := PathNatural
	var matched []catalog.Event
	if intent.HasConstraints() {
		matched = matchIntent(candidates, intent)
	}
	// Keyword guesses are not trusted as hard filters: when they exclude
	// everything the query is matched loosely instead.
	if !intent.HasConstraints() || (degraded && len(matched) == 0) {
		matched = matchKeywords(candidates, req.Query)
	}

	var recs []Recommendation
	if len(matched) > 0 || (intent.HasConstraints() && !degraded) {
		recs = e.rankByAffinity(matched, p)
	} else {
		path = PathColdStart
		pool := e.coldStartPool(p, candidates, e.cfg.MaxNaturalResults)
		recs = make([]Recommendation, len(pool))
		for i, s := range pool {
			recs[i] = toRecommendation(s, ReasonNewMember)
		}
	}

	explanation := nlparser.DefaultExplanation
	if !degraded {
		explanation = e.explain(ctx, req.Query, intent, len(recs))
	} else {
		path = PathDegraded
	}

	metrics.RecordRecommendation("natural", path, time.Since(start))
	logging.Ctx(ctx).Debug().
		Str("component", "recommend").
		Str("path", path).
		Bool("degraded", degraded).
		Int("served", len(recs)).
		Msg("Natural query served")

	return &NaturalResponse{
		ParsedIntent: intent,
		Events:       recs,
		Explanation:  explanation,
		Degraded:     degraded,
	}, nil
}

// SubmitReward applies reward feedback for one event to the user's profile.
// On success the profile is persisted and the cached copy invalidated, so
// the next request sees the update.
func (e *Engine) SubmitReward(ctx context.Context, req RewardRequest) (*RewardResult, error) {
	if req.Reward == nil {
		metrics.RecordRewardFailure("validation")
		return nil, fmt.Errorf("%w: reward is required", ErrOutOfRangeReward)
	}
	reward := *req.Reward
	if err := ValidateReward(reward); err != nil {
		metrics.RecordRewardFailure("validation")
		return nil, err
	}
	action := InferAction(reward)
	if req.Action != "" {
		a, ok := models.ParseAction(string(req.Action))
		if !ok {
			metrics.RecordRewardFailure("validation")
			return nil, fmt.Errorf("%w: %q", ErrInvalidEventKind, req.Action)
		}
		action = a
	}

	ev, ok := e.catalog.Get(req.EventID)
	if !ok {
		metrics.RecordRewardFailure("event_not_found")
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, req.EventID)
	}

	be := e.behaviorFor(req.UserID, action, ev)
	be.Reward = &reward

	updated, err := e.apply(ctx, req.UserID, be, reward)
	if err != nil {
		metrics.RecordRewardFailure("persistence")
		return nil, err
	}
	e.record(ctx, be)
	metrics.RecordReward(string(action))

	logging.Ctx(ctx).Info().
		Str("component", "recommend").
		Str("event_id", ev.ID).
		Str("action", string(action)).
		Float64("reward", reward).
		Int("total_events_attended", updated.TotalEventsAttended).
		Msg("Reward applied")

	return &RewardResult{
		BehaviorID:         be.ID,
		Action:             action,
		Reward:             reward,
		ColdStartCompleted: updated.ColdStartCompleted,
	}, nil
}

// LogBehavior records a raw interaction. When it references a known event
// the profile is updated as for a neutral reward. It returns the behavior
// id.
func (e *Engine) LogBehavior(ctx context.Context, req BehaviorLog) (string, error) {
	action, ok := models.ParseAction(string(req.Action))
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidEventKind, req.Action)
	}

	be := &BehaviorEvent{
		ID:             e.newID(),
		UserID:         req.UserID,
		EventID:        req.EventID,
		Action:         action,
		Timestamp:      req.Timestamp.UTC(),
		Location:       req.Location,
		QueryText:      req.QueryText,
		SessionID:      req.SessionID,
		ChosenEventIDs: req.ChosenEventIDs,
		FiltersApplied: req.FiltersApplied,
	}
	if req.Timestamp.IsZero() {
		be.Timestamp = e.now().UTC()
	}

	if req.EventID != "" {
		if ev, ok := e.catalog.Get(req.EventID); ok {
			enrich(be, ev)
			if _, err := e.apply(ctx, req.UserID, be, 0); err != nil {
				return "", err
			}
		}
	}

	e.record(ctx, be)
	return be.ID, nil
}

// GetProfile returns the user's current profile.
func (e *Engine) GetProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	p, err := e.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// ResetProfile deletes the user's profile and reports whether one existed.
// Resetting an absent profile is not an error.
func (e *Engine) ResetProfile(ctx context.Context, userID string) (bool, error) {
	deleted, err := e.store.Delete(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	e.profiles.Invalidate(userID)

	logging.Ctx(ctx).Info().
		Str("component", "recommend").
		Bool("deleted", deleted).
		Msg("Profile reset")
	return deleted, nil
}

// Onboard stores the onboarding answers and clears learned preferences.
func (e *Engine) Onboard(ctx context.Context, req OnboardingRequest) (*profile.Profile, error) {
	if !req.Intent.Valid() || !req.Gender.Valid() {
		return nil, fmt.Errorf("invalid onboarding answers: intent %q, gender %q", req.Intent, req.Gender)
	}
	now := e.now().UTC()
	updated, err := e.store.Update(ctx, req.UserID, func(cur *profile.Profile) (*profile.Profile, error) {
		next := cur.Clone()
		if next == nil {
			next = profile.New(req.UserID, now)
		}
		next.OnboardingIntent = req.Intent
		next.Gender = req.Gender
		if req.Age != nil {
			age := *req.Age
			next.Age = &age
		} else {
			next.Age = nil
		}
		next.ResetLearned()
		next.UpdatedAt = now
		return next, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	e.profiles.Invalidate(req.UserID)
	return updated, nil
}

// loadProfile returns nil without error when the user has no profile.
func (e *Engine) loadProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	p, err := e.profiles.Load(ctx, userID)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, profile.ErrNotFound):
		return nil, nil
	default:
		e.logger.Error().Err(err).Str("user_id", userID).Msg("profile load failed")
		return nil, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
}

// apply runs the updater inside a store transaction and invalidates the
// cached profile.
func (e *Engine) apply(ctx context.Context, userID string, be *BehaviorEvent, reward float64) (*profile.Profile, error) {
	updated, err := e.store.Update(ctx, userID, func(cur *profile.Profile) (*profile.Profile, error) {
		return e.updater.Apply(cur, be, reward)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidEventKind) || errors.Is(err, ErrOutOfRangeReward) {
			return nil, err
		}
		e.logger.Error().Err(err).Str("user_id", userID).Msg("profile update failed")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	e.profiles.Invalidate(userID)
	return updated, nil
}

// record appends be to the behavior log. The profile update has already
// been committed, so a failed append is logged and not returned.
func (e *Engine) record(ctx context.Context, be *BehaviorEvent) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(ctx, be); err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("component", "recommend").
			Str("behavior_id", be.ID).
			Msg("Failed to record behavior event")
	}
}

func (e *Engine) behaviorFor(userID string, action Action, ev catalog.Event) *BehaviorEvent {
	be := &BehaviorEvent{
		ID:        e.newID(),
		UserID:    userID,
		EventID:   ev.ID,
		Action:    action,
		Timestamp: e.now().UTC(),
	}
	enrich(be, ev)
	return be
}

// enrich copies the catalog attributes the updater scores on.
func enrich(be *BehaviorEvent, ev catalog.Event) {
	price := ev.Price
	be.Category = ev.Category
	be.City = ev.City
	be.Neighborhood = ev.Neighborhood
	be.Price = &price
}

func (e *Engine) nearby(lat, lng, radiusKm float64) ([]catalog.Event, error) {
	if radiusKm <= 0 {
		radiusKm = e.cfg.DefaultRadiusKm
	}
	events, err := e.catalog.Nearby(lat, lng, radiusKm, e.cfg.MaxCandidates)
	if errors.Is(err, catalog.ErrNotLoaded) {
		return nil, ErrCandidatesUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("nearby candidates: %w", err)
	}
	return events, nil
}

// coldStartPool blends the cold-start signals over candidates and returns
// them with the blended score as affinity.
func (e *Engine) coldStartPool(p *profile.Profile, candidates []catalog.Event, limit int) []Scored {
	byID := make(map[string]catalog.Event, len(candidates))
	popularity := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
		popularity[c.ID] = c.PopularityScore
	}

	signals := e.signals.Build(p, candidates, e.now())
	blended := Blend(e.cfg.Weights, signals, popularity, limit)

	pool := make([]Scored, 0, len(blended))
	for _, b := range blended {
		pool = append(pool, Scored{Event: byID[b.EventID], Affinity: b.Score})
	}
	return pool
}

func (e *Engine) rankByAffinity(events []catalog.Event, p *profile.Profile) []Recommendation {
	scored := make([]Scored, len(events))
	for i, c := range events {
		scored[i] = Scored{Event: c, Affinity: Affinity(c, p)}
	}
	sortScored(scored)
	if len(scored) > e.cfg.MaxNaturalResults {
		scored = scored[:e.cfg.MaxNaturalResults]
	}

	recs := make([]Recommendation, len(scored))
	for i, s := range scored {
		recs[i] = toRecommendation(s, Reason(s.Event, p))
	}
	return recs
}

// parse returns the parsed intent and whether the fallback parser was used.
func (e *Engine) parse(ctx context.Context, query string) (nlparser.ParsedIntent, bool) {
	if e.parser != nil {
		pctx, cancel := context.WithTimeout(ctx, e.cfg.ParserTimeout)
		intent, err := e.parser.Parse(pctx, query)
		cancel()
		if err == nil {
			return intent, false
		}
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("component", "recommend").
			Msg("Natural-language parser failed, using keyword fallback")
	}

	intent, err := e.fallback.Parse(ctx, query)
	if err != nil {
		return nlparser.FallbackIntent(), true
	}
	return intent, true
}

func (e *Engine) explain(ctx context.Context, query string, intent nlparser.ParsedIntent, count int) string {
	pctx, cancel := context.WithTimeout(ctx, e.cfg.ParserTimeout)
	defer cancel()
	text, err := e.parser.Explain(pctx, query, intent, count)
	if err != nil || strings.TrimSpace(text) == "" {
		return nlparser.DefaultExplanation
	}
	return text
}

// matchIntent keeps the candidates satisfying every hard constraint.
func matchIntent(candidates []catalog.Event, intent nlparser.ParsedIntent) []catalog.Event {
	out := make([]catalog.Event, 0, len(candidates))
	for _, c := range candidates {
		if len(intent.Categories) > 0 && !c.MatchesAny(intent.Categories...) {
			continue
		}
		if intent.PriceMax != nil && c.Price > *intent.PriceMax {
			continue
		}
		if intent.Location != "" && !c.LocatedIn(intent.Location) {
			continue
		}
		if intent.TimeSlot != "" && !strings.EqualFold(c.TimeSlot(), intent.TimeSlot) {
			continue
		}
		if !c.AllowsAge(intent.AgeRestriction) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// matchKeywords keeps candidates whose category, city or neighborhood
// appears in the raw query.
func matchKeywords(candidates []catalog.Event, query string) []catalog.Event {
	q := strings.ToLower(query)
	contains := func(s string) bool {
		s = strings.ToLower(strings.TrimSpace(s))
		return s != "" && strings.Contains(q, s)
	}
	var out []catalog.Event
	for _, c := range candidates {
		if contains(c.Category) || contains(c.City) || contains(c.Neighborhood) {
			out = append(out, c)
		}
	}
	return out
}

func toRecommendation(s Scored, reason string) Recommendation {
	return Recommendation{
		EventID:     s.Event.ID,
		Title:       s.Event.Title,
		Category:    s.Event.Category,
		Score:       s.Affinity,
		Reason:      reason,
		Exploration: s.Exploration,
	}
}

// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/aura/internal/catalog"
	"github.com/tomtom215/aura/internal/logging"
)

// SeedDemoEvents fills an empty catalog with a fixed set of New York events
// starting over the next week. It returns the number of events written;
// a non-empty catalog is left untouched.
func (db *DB) SeedDemoEvents(ctx context.Context, now time.Time) (int, error) {
	n, err := db.CountEvents(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logging.Debug().Int("events", n).Msg("Catalog not empty, skipping demo seed")
		return 0, nil
	}

	events := demoEvents(now)
	if err := db.UpsertEvents(ctx, events); err != nil {
		return 0, fmt.Errorf("failed to seed demo events: %w", err)
	}
	logging.Info().Int("events", len(events)).Msg("Seeded demo catalog")
	return len(events), nil
}

func demoEvents(now time.Time) []catalog.Event {
	day := now.UTC().Truncate(24 * time.Hour)
	at := func(days, hour int) time.Time {
		return day.Add(time.Duration(days)*24*time.Hour + time.Duration(hour)*time.Hour)
	}

	return []catalog.Event{
		{ID: "evt-jazz-village", Title: "Late Set at the Vanguard", Category: "music", Tags: []string{"jazz", "live_music"},
			Price: 45, Lat: 40.7359, Lng: -74.0014, City: "New York", Neighborhood: "West Village",
			StartsAt: at(0, 23), PopularityScore: 0.82, TrendingScore: 0.74, TrendingAge: 31, AgeRestriction: catalog.Age21Plus},
		{ID: "evt-warehouse-techno", Title: "Warehouse Techno Night", Category: "music", Tags: []string{"techno", "large_scale"},
			Price: 35, Lat: 40.7081, Lng: -73.9571, City: "Brooklyn", Neighborhood: "Williamsburg",
			StartsAt: at(1, 22), PopularityScore: 0.91, TrendingScore: 0.88, TrendingAge: 24, AgeRestriction: catalog.Age21Plus},
		{ID: "evt-rooftop-comedy", Title: "Rooftop Comedy Hour", Category: "comedy", Tags: []string{"standup"},
			Price: 20, Lat: 40.7265, Lng: -73.9815, City: "New York", Neighborhood: "East Village",
			StartsAt: at(0, 20), PopularityScore: 0.67, TrendingScore: 0.71, TrendingAge: 27, AgeRestriction: catalog.Age18Plus},
		{ID: "evt-gallery-opening", Title: "Chelsea Gallery Opening", Category: "art", Tags: []string{"diverse_category", "gallery"},
			Price: 0, Lat: 40.7465, Lng: -74.0014, City: "New York", Neighborhood: "Chelsea",
			StartsAt: at(2, 18), PopularityScore: 0.55, TrendingScore: 0.40, TrendingAge: 34, AgeRestriction: catalog.AllAges},
		{ID: "evt-founders-mixer", Title: "Founders and Freelancers Mixer", Category: "networking", Tags: []string{"industry_networking", "professional_event"},
			Price: 15, Lat: 40.7410, Lng: -73.9897, City: "New York", Neighborhood: "Flatiron",
			StartsAt: at(3, 18), PopularityScore: 0.48, TrendingScore: 0.35, TrendingAge: 29, AgeRestriction: catalog.Age21Plus},
		{ID: "evt-film-production", Title: "Indie Film Production Meetup", Category: "film", Tags: []string{"production_event", "creators"},
			Price: 10, Lat: 40.7033, Lng: -73.9881, City: "Brooklyn", Neighborhood: "DUMBO",
			StartsAt: at(4, 19), PopularityScore: 0.44, TrendingScore: 0.52, TrendingAge: 26, AgeRestriction: catalog.AllAges},
		{ID: "evt-food-market", Title: "Smorgasburg Night Market", Category: "food", Tags: []string{"market", "outdoor"},
			Price: 0, Lat: 40.7215, Lng: -73.9620, City: "Brooklyn", Neighborhood: "Williamsburg",
			StartsAt: at(5, 13), PopularityScore: 0.86, TrendingScore: 0.79, TrendingAge: 28, AgeRestriction: catalog.AllAges},
		{ID: "evt-salsa-social", Title: "Salsa Social", Category: "dance", Tags: []string{"latin", "lessons"},
			Price: 18, Lat: 40.7505, Lng: -73.9934, City: "New York", Neighborhood: "Midtown",
			StartsAt: at(1, 21), PopularityScore: 0.61, TrendingScore: 0.58, TrendingAge: 30, AgeRestriction: catalog.Age18Plus},
		{ID: "evt-stadium-concert", Title: "Stadium Headliner", Category: "music", Tags: []string{"pop", "large_scale"},
			Price: 120, Lat: 40.7505, Lng: -73.9934, City: "New York", Neighborhood: "Midtown",
			StartsAt: at(6, 20), PopularityScore: 0.97, TrendingScore: 0.93, TrendingAge: 22, AgeRestriction: catalog.AllAges},
		{ID: "evt-tech-talk", Title: "Distributed Systems Tech Talk", Category: "tech", Tags: []string{"professional_event", "talks"},
			Price: 0, Lat: 40.7411, Lng: -74.0048, City: "New York", Neighborhood: "Meatpacking District",
			StartsAt: at(2, 17), PopularityScore: 0.39, TrendingScore: 0.22, TrendingAge: 33, AgeRestriction: catalog.AllAges},
		{ID: "evt-hoboken-brewery", Title: "Brewery Trivia Night", Category: "nightlife", Tags: []string{"trivia", "beer"},
			Price: 5, Lat: 40.7440, Lng: -74.0324, City: "Hoboken", Neighborhood: "Downtown",
			StartsAt: at(3, 19), PopularityScore: 0.52, TrendingScore: 0.47, TrendingAge: 27, AgeRestriction: catalog.Age21Plus},
		{ID: "evt-philly-festival", Title: "Philadelphia Street Festival", Category: "festival", Tags: []string{"outdoor", "large_scale"},
			Price: 25, Lat: 39.9526, Lng: -75.1652, City: "Philadelphia", Neighborhood: "Center City",
			StartsAt: at(5, 12), PopularityScore: 0.74, TrendingScore: 0.81, TrendingAge: 35, AgeRestriction: catalog.AllAges},
	}
}

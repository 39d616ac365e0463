// Aura - Real-Time Adaptive Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aura

package recommend

import (
	"math"
	"math/rand"
	"sort"
	"sync"
)

// Rand is the randomness the selector needs. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// lockedRand is a seeded source shared by concurrent requests.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newLockedRand(seed int64) *lockedRand {
	return &lockedRand{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // math/rand is fine for exploration sampling
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

const basisPoints = 10000

// Selector splits a ranked pool into an exploit bucket and an explore
// bucket. It keeps no state between calls.
type Selector struct {
	// ExploitBP is the exploit share in basis points (8500 = 85%).
	ExploitBP int
	// Epsilon is added to every affinity when sampling explore slots so
	// zero-affinity candidates can still be picked. Must be > 0.
	Epsilon float64
}

// DefaultSelector exploits 85% of slots and explores with epsilon 0.05.
func DefaultSelector() Selector {
	return Selector{ExploitBP: 8500, Epsilon: 0.05}
}

// ExploitCount is round_half_up(n * ExploitBP / 10000).
func (s Selector) ExploitCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n*s.ExploitBP + basisPoints/2) / basisPoints
}

// Select picks n items from pool.
//
// The top ExploitCount(n) candidates by affinity are taken as-is. The rest
// are drawn from the remainder by weighted sampling without replacement,
// weight = affinity + Epsilon, and flagged as exploration. A pool no larger
// than n is returned whole, ranked. pool is not modified.
func (s Selector) Select(pool []Scored, n int, rng Rand) []Scored {
	if n <= 0 || len(pool) == 0 {
		return []Scored{}
	}

	ranked := make([]Scored, len(pool))
	copy(ranked, pool)
	for i := range ranked {
		ranked[i].Exploration = false
	}
	sortScored(ranked)

	if len(ranked) <= n {
		return ranked
	}

	exploit := s.ExploitCount(n)
	out := make([]Scored, 0, n)
	out = append(out, ranked[:exploit]...)

	rest := append([]Scored(nil), ranked[exploit:]...)
	eps := s.Epsilon
	if eps <= 0 {
		eps = DefaultSelector().Epsilon
	}
	for picks := n - exploit; picks > 0 && len(rest) > 0; picks-- {
		i := weightedPick(rest, eps, rng)
		item := rest[i]
		item.Exploration = true
		out = append(out, item)
		rest = append(rest[:i], rest[i+1:]...)
	}
	return out
}

func weightedPick(items []Scored, eps float64, rng Rand) int {
	total := 0.0
	for _, it := range items {
		total += weight(it, eps)
	}
	target := rng.Float64() * total
	for i, it := range items {
		target -= weight(it, eps)
		if target < 0 {
			return i
		}
	}
	// Float rounding can leave target at exactly zero past the end.
	return len(items) - 1
}

func weight(it Scored, eps float64) float64 {
	a := it.Affinity
	if math.IsNaN(a) || a < 0 {
		a = 0
	}
	return a + eps
}

// sortScored orders by affinity desc, then popularity desc, then id asc.
func sortScored(items []Scored) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Affinity != b.Affinity {
			return a.Affinity > b.Affinity
		}
		if a.Event.PopularityScore != b.Event.PopularityScore {
			return a.Event.PopularityScore > b.Event.PopularityScore
		}
		return a.Event.ID < b.Event.ID
	})
}

// Package rate computes regularized per-player rate statistics from
// match records.
//
// A rate is the sum of per-match points for a player divided by the number
// of matches they appear in, with the denominator clipped to a configurable
// floor so that players with few appearances are not overweighted by
// small-sample noise.
package rate

import (
	"fmt"

	"github.com/okian/bookings/internal/domain/model"
)

// Default calculator configuration constants.
const (
	defaultMinMinutes = 1
	defaultMaxMinutes = 90
	defaultMinMatches = 10
)

// PointsFunc maps a match record to a scalar point value. Implementations
// must be pure.
type PointsFunc func(r model.MatchRecord) float64

// calculator holds the resolved configuration for one Compute call.
type calculator struct {
	minMinutes int
	maxMinutes int
	minMatches int
	points     PointsFunc
	window     *window
}

// window bounds the records considered to those strictly before a given
// season and gameweek.
type window struct {
	season   string
	gameweek int
}

// excludes reports whether the record falls at or after the window edge.
// Season strings like "2324" order lexically.
func (w *window) excludes(r model.MatchRecord) bool {
	if r.Season > w.season {
		return true
	}
	return r.Season == w.season && r.Gameweek >= w.gameweek
}

// Compute filters records to those with minutes inside the configured
// inclusive bounds, groups them by player, and returns one PlayerRateEntry
// per player present in the filtered set. Players with no eligible records
// are absent from the result; they are not zero-filled.
//
// The result map carries no ordering; ranking is a caller concern (see the
// ranking package). Compute is deterministic and side-effect free.
func Compute(records []model.MatchRecord, opts ...Option) (map[int64]model.PlayerRateEntry, error) {
	c := &calculator{
		minMinutes: defaultMinMinutes,
		maxMinutes: defaultMaxMinutes,
		minMatches: defaultMinMatches,
		points:     CardPoints,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.minMatches <= 0 {
		return nil, fmt.Errorf("min matches %d: %w", c.minMatches, ErrInvalidConfig)
	}

	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	for _, r := range records {
		if r.Minutes < c.minMinutes || r.Minutes > c.maxMinutes {
			continue
		}
		if c.window != nil && c.window.excludes(r) {
			continue
		}
		sums[r.PlayerID] += c.points(r)
		counts[r.PlayerID]++
	}

	out := make(map[int64]model.PlayerRateEntry, len(counts))
	for id, n := range counts {
		den := n
		if den < c.minMatches {
			den = c.minMatches
		}
		out[id] = model.PlayerRateEntry{
			PlayerID:   id,
			Rate:       sums[id] / float64(den),
			SampleSize: n,
		}
	}
	return out, nil
}

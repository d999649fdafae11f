// Package model contains domain models passed between layers.
package model

// MatchRecord is one player's line from one eligible match.
// Fields mirror the player_score rows served by the data-access store.
type MatchRecord struct {
	PlayerID    int64  // subject player identifier
	Minutes     int    // minutes played, 0-90+
	YellowCards int    // typically 0 or 1
	RedCards    int    // typically 0 or 1
	Bonus       int    // bonus points awarded for the match
	Saves       int    // goalkeeper saves made
	Season      string // e.g. "2324"
	Gameweek    int    // 1-based gameweek within the season
}

// PlayerRateEntry is a derived per-player rate. SampleSize is the number
// of matches that contributed, before the minimum-sample floor is applied
// to the denominator.
type PlayerRateEntry struct {
	PlayerID   int64
	Rate       float64
	SampleSize int
}

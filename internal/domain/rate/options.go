package rate

// Option applies a configuration option to a Compute call.
type Option func(*calculator)

// WithMinutesRange sets the inclusive minutes-played eligibility bounds.
// A lower bound above the upper bound yields an empty eligible set, not an
// error.
func WithMinutesRange(minMinutes, maxMinutes int) Option {
	return func(c *calculator) {
		c.minMinutes = minMinutes
		c.maxMinutes = maxMinutes
	}
}

// WithMinMatches sets the floor applied to the denominator when averaging.
// Compute rejects values below one with ErrInvalidConfig.
func WithMinMatches(n int) Option {
	return func(c *calculator) {
		c.minMatches = n
	}
}

// WithPoints sets the per-match points policy. A nil fn is ignored and the
// default CardPoints policy is kept.
func WithPoints(fn PointsFunc) Option {
	return func(c *calculator) {
		if fn != nil {
			c.points = fn
		}
	}
}

// WithWindow restricts the records considered to those strictly before the
// given season and gameweek. Records from the named gameweek onward, and
// from any later season, are excluded.
func WithWindow(season string, gameweek int) Option {
	return func(c *calculator) {
		if season != "" {
			c.window = &window{season: season, gameweek: gameweek}
		}
	}
}

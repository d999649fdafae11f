// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New(); Load layers file and env on top.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// PostgresDSN locates the match-record store. Empty selects the
	// in-memory store, useful for local runs and tests.
	PostgresDSN string `koanf:"postgres_dsn"`

	// RedisAddr locates the published-table cache. Empty disables
	// publication.
	RedisAddr string `koanf:"redis_addr"`

	// CacheTTLMinutes bounds the lifetime of published tables.
	CacheTTLMinutes int `koanf:"cache_ttl_minutes"`

	// MetricsAddr configures the ops-only HTTP listener serving /metrics
	// and /healthz in daemon mode, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// MinMinutes and MaxMinutes are the inclusive minutes-played bounds a
	// record must satisfy to count toward a rate.
	MinMinutes int `koanf:"min_minutes"`
	MaxMinutes int `koanf:"max_minutes"`

	// MinMatches is the sample-size floor applied to the averaging
	// denominator. Must be positive.
	MinMatches int `koanf:"min_matches"`

	// TopN caps the length of rendered and published tables.
	TopN int `koanf:"top_n"`

	// Season and Gameweek optionally bound the statistics to records
	// strictly before the given point, e.g. season "2324" gameweek 10.
	// Empty season means no bound.
	Season   string `koanf:"season"`
	Gameweek int    `koanf:"gameweek"`

	// RefreshSchedule is the cron expression driving periodic refreshes in
	// daemon mode.
	RefreshSchedule string `koanf:"refresh_schedule"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		PostgresDSN:     "",
		RedisAddr:       "",
		CacheTTLMinutes: 120,
		MetricsAddr:     ":9090",
		MinMinutes:      1,
		MaxMinutes:      90,
		MinMatches:      10,
		TopN:            20,
		RefreshSchedule: "0 * * * *",
	}
}

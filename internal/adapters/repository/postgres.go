package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/okian/bookings/internal/domain/model"
	"github.com/okian/bookings/pkg/metrics"
)

// Default connection configuration constants.
const (
	defaultQueryTimeout = 30 * time.Second
	defaultMaxOpenConns = 8
)

// PostgresOption applies a configuration option to the PostgresStore.
type PostgresOption func(*PostgresStore)

// WithQueryTimeout bounds individual store queries.
func WithQueryTimeout(d time.Duration) PostgresOption {
	return func(s *PostgresStore) {
		if d > 0 {
			s.queryTimeout = d
		}
	}
}

// WithMaxOpenConns caps the connection pool size.
func WithMaxOpenConns(n int) PostgresOption {
	return func(s *PostgresStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// PostgresStore implements Store over a relational schema of player_score,
// fixture and player tables. It is strictly read-only.
type PostgresStore struct {
	db           *sql.DB
	queryTimeout time.Duration
	maxOpenConns int
}

// NewPostgresStore opens a connection pool and verifies it with a ping.
func NewPostgresStore(ctx context.Context, dsn string, opts ...PostgresOption) (*PostgresStore, error) {
	s := &PostgresStore{
		queryTimeout: defaultQueryTimeout,
		maxOpenConns: defaultMaxOpenConns,
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s.db = db
	return s, nil
}

// matchRecordsQuery reads one row per player per match. Card and save
// columns are nullable in older rows, hence the COALESCE.
const matchRecordsQuery = `
	SELECT ps.player_id,
	       ps.minutes,
	       COALESCE(ps.yellow_cards, 0),
	       COALESCE(ps.red_cards, 0),
	       ps.bonus,
	       COALESCE(ps.saves, 0),
	       f.season,
	       f.gameweek
	FROM player_score ps
	JOIN fixture f ON f.fixture_id = ps.fixture_id
	JOIN player p ON p.player_id = ps.player_id
	WHERE ($1 = '' OR p.position = $1)
	  AND ($2 = '' OR f.season < $2 OR (f.season = $2 AND f.gameweek < $3))
	ORDER BY ps.player_id, f.season, f.gameweek;
`

// MatchRecords returns the records matching the filter.
func (s *PostgresStore) MatchRecords(ctx context.Context, f Filter) ([]model.MatchRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	season, gameweek := "", 0
	if f.windowed() {
		season, gameweek = f.Season, f.Gameweek
	}

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, matchRecordsQuery, f.Position, season, gameweek)
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("query match records: %w", err)
	}
	defer rows.Close()

	var out []model.MatchRecord
	for rows.Next() {
		var r model.MatchRecord
		if err := rows.Scan(&r.PlayerID, &r.Minutes, &r.YellowCards, &r.RedCards, &r.Bonus, &r.Saves, &r.Season, &r.Gameweek); err != nil {
			metrics.RecordStoreError()
			return nil, fmt.Errorf("scan match record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("iterate match records: %w", err)
	}
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	return out, nil
}

// PlayerNames resolves display names for the given ids.
func (s *PostgresStore) PlayerNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	const q = `SELECT player_id, name FROM player WHERE player_id = ANY($1);`
	rows, err := s.db.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("query player names: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]string, len(ids))
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			metrics.RecordStoreError()
			return nil, fmt.Errorf("scan player name: %w", err)
		}
		out[id] = name
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("iterate player names: %w", err)
	}
	return out, nil
}

// Ping reports whether the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close postgres: %w", err)
	}
	return nil
}

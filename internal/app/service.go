// Package service provides the core business service that wires the
// match-record store, the rate calculator and the optional table cache.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/okian/bookings/internal/adapters/repository"
	"github.com/okian/bookings/internal/domain/ranking"
	"github.com/okian/bookings/internal/domain/rate"
	"github.com/okian/bookings/pkg/logger"
	"github.com/okian/bookings/pkg/metrics"
)

// Published statistic names. They appear in cache keys and metrics labels.
const (
	StatCards     = "cards"
	StatBonus6090 = "bonus_60_90"
	StatBonus3059 = "bonus_30_59"
	StatSaves     = "saves"
)

// Minutes windows fixed by the scoring conventions: bonus tables pair a
// near-full match with a substantial substitute appearance, and save
// points only count full matches in goal.
const (
	bonusFullMin = 60
	bonusFullMax = 90
	bonusSubMin  = 30
	bonusSubMax  = 59
	savesMinutes = 90

	goalkeeperPosition = "GK"
)

// Default service configuration.
const (
	defaultMinMinutes = 1
	defaultMaxMinutes = 90
	defaultMinMatches = 10
	defaultTopN       = 20
)

// TableCache is the publication surface the service needs from the cache
// adapter.
type TableCache interface {
	Publish(ctx context.Context, stat, season string, gameweek int, rows []ranking.Row) error
	Ping(ctx context.Context) error
	Close() error
}

// Service computes, ranks and publishes per-player rate tables.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	store repository.Store
	cache TableCache // nil disables publication
	cron  *cron.Cron

	// Calculator configuration
	minMinutes int
	maxMinutes int
	minMatches int
	topN       int
	season     string
	gameweek   int
	schedule   string

	// State
	started     bool
	lastRefresh time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the match-record store. Required.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithCache sets the table cache. Without it computed tables are not
// published.
func WithCache(cache TableCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMinutesRange sets the inclusive minutes-played bounds for the card
// statistic.
func WithMinutesRange(minMinutes, maxMinutes int) Option {
	return func(s *Service) {
		s.minMinutes = minMinutes
		s.maxMinutes = maxMinutes
	}
}

// WithMinMatches sets the sample-size floor on the averaging denominator.
func WithMinMatches(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minMatches = n
		}
	}
}

// WithTopN caps the length of ranked tables.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithWindow bounds all statistics to records strictly before the given
// season and gameweek. An empty season means no bound.
func WithWindow(season string, gameweek int) Option {
	return func(s *Service) {
		s.season = season
		s.gameweek = gameweek
	}
}

// WithRefreshSchedule enables the cron-driven periodic refresh. Only the
// daemon passes this.
func WithRefreshSchedule(spec string) Option {
	return func(s *Service) {
		s.schedule = spec
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		minMinutes: defaultMinMinutes,
		maxMinutes: defaultMaxMinutes,
		minMatches: defaultMinMatches,
		topN:       defaultTopN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start verifies collaborators and, when a schedule is configured, starts
// the periodic refresh.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return ErrNoStore
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.schedule != "" {
		s.cron = cron.New()
		if _, err := s.cron.AddFunc(s.schedule, func() {
			if err := s.RefreshAll(context.Background()); err != nil {
				s.logger.Error(context.Background(), "scheduled refresh failed", logger.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("schedule refresh: %w", err)
		}
		s.cron.Start()
		s.logger.Info(ctx, "refresh scheduler started", logger.String("schedule", s.schedule))
	}

	s.started = true
	s.logger.Info(ctx, "rate service started",
		logger.Int("minMatches", s.minMatches),
		logger.Int("topN", s.topN),
		logger.String("season", s.season),
		logger.Int("gameweek", s.gameweek),
	)
	return nil
}

// Stop halts the scheduler, waits for any in-flight refresh, and closes
// the collaborators.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	sched := s.cron
	s.cron = nil
	cache := s.cache
	store := s.store
	s.mu.Unlock()

	// Wait without holding s.mu: a running RefreshAll takes the lock to
	// record its completion time.
	if sched != nil {
		<-sched.Stop().Done()
	}
	if cache != nil {
		_ = cache.Close()
	}
	if store != nil {
		_ = store.Close()
	}
	s.logger.Info(context.Background(), "rate service stopped")
}

// windowFilter builds the store filter carrying the configured season
// window.
func (s *Service) windowFilter(position string) repository.Filter {
	return repository.Filter{
		Season:   s.season,
		Gameweek: s.gameweek,
		Position: position,
	}
}

// table computes one ranked table: fetch records, compute rates, join
// display names, rank ascending.
func (s *Service) table(ctx context.Context, stat string, f repository.Filter, opts ...rate.Option) ([]ranking.Row, error) {
	records, err := s.store.MatchRecords(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s records: %w", stat, err)
	}

	entries, err := rate.Compute(records, append(opts, rate.WithMinMatches(s.minMatches))...)
	if err != nil {
		return nil, fmt.Errorf("%s rates: %w", stat, err)
	}
	metrics.UpdatePlayersRated(stat, len(entries))

	ids := make([]int64, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	names, err := s.store.PlayerNames(ctx, ids)
	if err != nil {
		// Names are presentation only; log and rank without them.
		s.logger.Warn(ctx, "player name lookup failed", logger.String("stat", stat), logger.Error(err))
		names = nil
	}

	return ranking.Ascending(entries, ranking.WithTopN(s.topN), ranking.WithNames(names)), nil
}

// CardRates returns the ranked card-points table: the worst disciplinary
// records first.
func (s *Service) CardRates(ctx context.Context) ([]ranking.Row, error) {
	return s.table(ctx, StatCards, s.windowFilter(""),
		rate.WithMinutesRange(s.minMinutes, s.maxMinutes),
		rate.WithPoints(rate.CardPoints),
	)
}

// BonusRates returns the ranked bonus-points tables for near-full matches
// (60-90 minutes) and substantial substitute appearances (30-59 minutes).
func (s *Service) BonusRates(ctx context.Context) (full, sub []ranking.Row, err error) {
	full, err = s.table(ctx, StatBonus6090, s.windowFilter(""),
		rate.WithMinutesRange(bonusFullMin, bonusFullMax),
		rate.WithPoints(rate.BonusPoints),
	)
	if err != nil {
		return nil, nil, err
	}
	sub, err = s.table(ctx, StatBonus3059, s.windowFilter(""),
		rate.WithMinutesRange(bonusSubMin, bonusSubMax),
		rate.WithPoints(rate.BonusPoints),
	)
	if err != nil {
		return nil, nil, err
	}
	return full, sub, nil
}

// SaveRates returns the ranked save-points table for goalkeepers who
// played the full match.
func (s *Service) SaveRates(ctx context.Context) ([]ranking.Row, error) {
	return s.table(ctx, StatSaves, s.windowFilter(goalkeeperPosition),
		rate.WithMinutesRange(savesMinutes, savesMinutes),
		rate.WithPoints(rate.SavePoints),
	)
}

// PlayerCardRate returns one player's card-points row, ranked against the
// full eligible population. Players with no eligible matches report
// ErrPlayerNotRated.
func (s *Service) PlayerCardRate(ctx context.Context, playerID int64) (ranking.Row, error) {
	records, err := s.store.MatchRecords(ctx, s.windowFilter(""))
	if err != nil {
		return ranking.Row{}, fmt.Errorf("card records: %w", err)
	}
	entries, err := rate.Compute(records,
		rate.WithMinutesRange(s.minMinutes, s.maxMinutes),
		rate.WithMinMatches(s.minMatches),
	)
	if err != nil {
		return ranking.Row{}, fmt.Errorf("card rates: %w", err)
	}
	if _, ok := entries[playerID]; !ok {
		return ranking.Row{}, fmt.Errorf("player %d: %w", playerID, ErrPlayerNotRated)
	}

	names, err := s.store.PlayerNames(ctx, []int64{playerID})
	if err != nil {
		names = nil
	}
	rows := ranking.Ascending(entries, ranking.WithTopN(len(entries)), ranking.WithNames(names))
	for _, row := range rows {
		if row.PlayerID == playerID {
			return row, nil
		}
	}
	// Unreachable: the entry was present above.
	return ranking.Row{}, fmt.Errorf("player %d: %w", playerID, ErrPlayerNotRated)
}

// RefreshAll recomputes every statistic and publishes the tables to the
// cache. Each run is tagged with a run id for log correlation.
func (s *Service) RefreshAll(ctx context.Context) error {
	runID := uuid.New().String()
	start := time.Now()
	metrics.RecordRefresh()
	s.logger.Info(ctx, "refresh started", logger.String("runID", runID))

	tables := make(map[string][]ranking.Row, 4)

	cards, err := s.CardRates(ctx)
	if err != nil {
		return s.failRefresh(ctx, runID, err)
	}
	tables[StatCards] = cards

	full, sub, err := s.BonusRates(ctx)
	if err != nil {
		return s.failRefresh(ctx, runID, err)
	}
	tables[StatBonus6090] = full
	tables[StatBonus3059] = sub

	saves, err := s.SaveRates(ctx)
	if err != nil {
		return s.failRefresh(ctx, runID, err)
	}
	tables[StatSaves] = saves

	if s.cache != nil {
		for stat, rows := range tables {
			if err := s.cache.Publish(ctx, stat, s.season, s.gameweek, rows); err != nil {
				return s.failRefresh(ctx, runID, err)
			}
		}
	}

	s.mu.Lock()
	s.lastRefresh = time.Now()
	s.mu.Unlock()

	elapsed := time.Since(start)
	metrics.RecordRefreshDuration(float64(elapsed.Milliseconds()))
	metrics.UpdateLastRefresh(float64(time.Now().Unix()))
	s.logger.Info(ctx, "refresh finished",
		logger.String("runID", runID),
		logger.Duration("elapsed", elapsed),
		logger.Int("cards", len(cards)),
		logger.Int("saves", len(saves)),
	)
	return nil
}

func (s *Service) failRefresh(ctx context.Context, runID string, err error) error {
	metrics.RecordRefreshError()
	s.logger.Error(ctx, "refresh failed", logger.String("runID", runID), logger.Error(err))
	return fmt.Errorf("refresh %s: %w", runID, err)
}

// Ping reports whether the collaborators are reachable; the daemon's
// health endpoint uses it.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":    s.started,
		"minMatches": s.minMatches,
		"topN":       s.topN,
		"season":     s.season,
		"gameweek":   s.gameweek,
		"cache":      s.cache != nil,
	}
	if !s.lastRefresh.IsZero() {
		stats["lastRefresh"] = s.lastRefresh.UTC().Format(time.RFC3339)
	}
	return stats
}

package repository

import (
	"context"
	"sync"

	"github.com/okian/bookings/internal/domain/model"
)

// MemoryOption applies a configuration option to the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithRecords seeds the store with match records.
func WithRecords(records []model.MatchRecord) MemoryOption {
	return func(s *MemoryStore) {
		s.records = append(s.records, records...)
	}
}

// WithNames seeds the store with a player display-name lookup.
func WithNames(names map[int64]string) MemoryOption {
	return func(s *MemoryStore) {
		for id, name := range names {
			s.names[id] = name
		}
	}
}

// WithPositions seeds the store with per-player positions, used by the
// Filter.Position restriction.
func WithPositions(positions map[int64]string) MemoryOption {
	return func(s *MemoryStore) {
		for id, pos := range positions {
			s.positions[id] = pos
		}
	}
}

// MemoryStore implements Store over in-memory slices. It backs tests and
// local runs where no database is available.
type MemoryStore struct {
	mu        sync.RWMutex
	records   []model.MatchRecord
	names     map[int64]string
	positions map[int64]string
	closed    bool
}

// NewMemoryStore creates an in-memory store with the given seed options.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		names:     make(map[int64]string),
		positions: make(map[int64]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends records after construction.
func (s *MemoryStore) Add(records ...model.MatchRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
}

// MatchRecords returns a copy of the records matching the filter.
func (s *MemoryStore) MatchRecords(ctx context.Context, f Filter) ([]model.MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	out := make([]model.MatchRecord, 0, len(s.records))
	for _, r := range s.records {
		if f.Position != "" && s.positions[r.PlayerID] != f.Position {
			continue
		}
		if f.windowed() {
			if r.Season > f.Season {
				continue
			}
			if r.Season == f.Season && r.Gameweek >= f.Gameweek {
				continue
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// PlayerNames resolves display names for the given ids.
func (s *MemoryStore) PlayerNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	out := make(map[int64]string, len(ids))
	for _, id := range ids {
		if name, ok := s.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

// Ping always succeeds while the store is open.
func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close marks the store unusable.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

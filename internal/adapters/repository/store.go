// Package repository defines the match-record store interface and errors.
package repository

import (
	"context"

	"github.com/okian/bookings/internal/domain/model"
)

// Filter narrows the records a store query returns. The zero value places
// no restriction.
type Filter struct {
	// Season and Gameweek bound the query to records strictly before the
	// given point. A set Season with Gameweek zero excludes that whole
	// season and later; an empty Season means no bound.
	Season   string
	Gameweek int

	// Position restricts records to players of one position, e.g. "GK".
	Position string
}

// windowed reports whether the filter carries a season window.
func (f Filter) windowed() bool {
	return f.Season != ""
}

// Store provides read access to match records and player display names.
// Implementations never mutate the underlying data.
type Store interface {
	// MatchRecords returns all records matching the filter.
	MatchRecords(ctx context.Context, f Filter) ([]model.MatchRecord, error)

	// PlayerNames resolves display names for the given player ids. Unknown
	// ids are simply absent from the result.
	PlayerNames(ctx context.Context, ids []int64) (map[int64]string, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases any held connections.
	Close() error
}

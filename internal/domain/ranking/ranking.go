// Package ranking orders computed rate entries for presentation.
package ranking

import (
	"sort"

	"github.com/okian/bookings/internal/domain/model"
)

// defaultTopN caps the table length when no option overrides it.
const defaultTopN = 20

// Row is one line of a ranked rate table. Name is filled only when a
// display-name lookup is provided; it plays no part in the ordering.
type Row struct {
	Rank       int     `json:"rank"`
	PlayerID   int64   `json:"player_id"`
	Name       string  `json:"name,omitempty"`
	Rate       float64 `json:"rate"`
	SampleSize int     `json:"sample_size"`
}

// Option applies a configuration option to a ranking call.
type Option func(*table)

type table struct {
	topN  int
	names map[int64]string
}

// WithTopN truncates the table to the first n rows. Values below one keep
// the default.
func WithTopN(n int) Option {
	return func(t *table) {
		if n > 0 {
			t.topN = n
		}
	}
}

// WithNames joins display names onto the rows by player id. Missing ids
// simply leave Name empty.
func WithNames(names map[int64]string) Option {
	return func(t *table) {
		t.names = names
	}
}

// Ascending returns entries sorted by rate ascending, so the worst
// disciplinary record comes first. Ties break by player id ascending for
// reproducibility. The result is truncated to the configured top-N.
func Ascending(entries map[int64]model.PlayerRateEntry, opts ...Option) []Row {
	t := &table{topN: defaultTopN}
	for _, opt := range opts {
		opt(t)
	}

	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Row{
			PlayerID:   e.PlayerID,
			Name:       t.names[e.PlayerID],
			Rate:       e.Rate,
			SampleSize: e.SampleSize,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Rate != rows[j].Rate {
			return rows[i].Rate < rows[j].Rate
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
	if len(rows) > t.topN {
		rows = rows[:t.topN]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// Package render writes ranked rate tables as plain text.
package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/okian/bookings/internal/domain/ranking"
)

// tabwriter layout constants.
const (
	minWidth = 0
	tabWidth = 4
	padding  = 2
)

// Table writes rows as an aligned text table under a title line. Rates are
// printed with four decimal places, enough to tell apart floored rates over
// a season's worth of matches.
func Table(w io.Writer, title string, rows []ranking.Row) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	if len(rows) == 0 {
		if _, err := fmt.Fprintln(w, "(no eligible players)"); err != nil {
			return fmt.Errorf("write empty table: %w", err)
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, minWidth, tabWidth, padding, ' ', 0)
	if _, err := fmt.Fprintln(tw, "RANK\tPLAYER\tNAME\tRATE\tMATCHES"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%d\t%d\t%s\t%.4f\t%d\n",
			row.Rank, row.PlayerID, row.Name, row.Rate, row.SampleSize); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	return nil
}

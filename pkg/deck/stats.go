package deck

import (
	"context"
	"fmt"
	"strings"

	"github.com/smith3v/lexilogio/pkg/db"
	"github.com/smith3v/lexilogio/pkg/drill"
)

// Stats summarises a deck for the stats views.
type Stats struct {
	Total        int64
	Categories   []CategoryCount
	Bins         [db.BinSize]int
	ReversedBins [db.BinSize]int
}

func (r *Repository) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	var err error
	if stats.Total, err = r.CountTerms(ctx); err != nil {
		return stats, err
	}
	if stats.Categories, err = r.CountTermsByCategory(ctx); err != nil {
		return stats, err
	}
	if stats.Bins, err = r.BinCounts(ctx, drill.All(), false); err != nil {
		return stats, err
	}
	if stats.ReversedBins, err = r.BinCounts(ctx, drill.All(), true); err != nil {
		return stats, err
	}
	return stats, nil
}

func (s Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total terms: %d\n", s.Total)
	if len(s.Categories) > 0 {
		b.WriteString("Terms per category:\n")
		for _, c := range s.Categories {
			name := c.Name
			if c.CategoryID == nil {
				name = "(none)"
			}
			fmt.Fprintf(&b, "  %s: %d\n", name, c.Count)
		}
	}
	b.WriteString("Bins (0 = new ... 5 = known):\n")
	fmt.Fprintf(&b, "  forward:  %s\n", formatBins(s.Bins))
	fmt.Fprintf(&b, "  reversed: %s\n", formatBins(s.ReversedBins))
	return b.String()
}

func formatBins(bins [db.BinSize]int) string {
	parts := make([]string, len(bins))
	for i, n := range bins {
		parts[i] = fmt.Sprintf("%d:%d", i, n)
	}
	return strings.Join(parts, " ")
}

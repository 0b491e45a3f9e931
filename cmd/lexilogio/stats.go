package main

import (
	"context"
	"fmt"
	"io"

	"github.com/smith3v/lexilogio/pkg/db"
	"github.com/smith3v/lexilogio/pkg/deck"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var reversed bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count terms per category and per bin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeck(cmd.Context(), func(ctx context.Context, repo *deck.Repository) error {
				stats, err := repo.Stats(ctx)
				if err != nil {
					return err
				}
				if reversed {
					printBins(cmd.OutOrStdout(), stats.Total, stats.ReversedBins)
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), stats.String())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&reversed, "reversed", false, "only show the bins of the reversed direction")
	return cmd
}

func printBins(w io.Writer, total int64, bins [db.BinSize]int) {
	fmt.Fprintf(w, "Total terms: %d\n", total)
	for bin, n := range bins {
		fmt.Fprintf(w, "  bin %d: %d\n", bin, n)
	}
}

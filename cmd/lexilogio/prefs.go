package main

import (
	"context"
	"fmt"
	"io"

	"github.com/smith3v/lexilogio/pkg/db"
	"github.com/smith3v/lexilogio/pkg/deck"
	"github.com/smith3v/lexilogio/pkg/drill"
	"github.com/smith3v/lexilogio/pkg/runner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change the drill preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeck(cmd.Context(), func(ctx context.Context, repo *deck.Repository) error {
				prefs, err := repo.Preferences(ctx)
				if err != nil {
					return err
				}
				changed, err := applyPrefsFlags(&prefs, cmd.Flags())
				if err != nil {
					return err
				}
				if changed {
					if err := repo.SavePreferences(ctx, &prefs); err != nil {
						return err
					}
				}
				printPrefs(cmd.OutOrStdout(), prefs)
				return nil
			})
		},
	}
	cmd.Flags().Int("count", 0, "questions per drill")
	cmd.Flags().Bool("spaced", true, "spaced repetition")
	cmd.Flags().Bool("reversed", false, "ask the answer side")
	cmd.Flags().String("weights", "", "six bin weights, e.g. 0.35,0.25,0.15,0.1,0.08,0.07")
	cmd.Flags().String("rounding", "", "leftover questions go to bin0 or are spread proportional")
	return cmd
}

// applyPrefsFlags copies the changed flags onto prefs.
func applyPrefsFlags(prefs *db.Preferences, flags *pflag.FlagSet) (bool, error) {
	changed := false
	if flags.Changed("count") {
		count, _ := flags.GetInt("count")
		if count <= 0 {
			return false, fmt.Errorf("--count must be positive, got %d", count)
		}
		prefs.QuestionCount = count
		changed = true
	}
	if flags.Changed("spaced") {
		prefs.SpacedRepetition, _ = flags.GetBool("spaced")
		changed = true
	}
	if flags.Changed("reversed") {
		prefs.ReversedDrill, _ = flags.GetBool("reversed")
		changed = true
	}
	if flags.Changed("weights") {
		value, _ := flags.GetString("weights")
		weights, err := runner.ParseWeights(value)
		if err != nil {
			return false, fmt.Errorf("--weights: %w", err)
		}
		prefs.BinWeights = weights[:]
		changed = true
	}
	if flags.Changed("rounding") {
		value, _ := flags.GetString("rounding")
		if _, err := drill.ParseRoundingMode(value); err != nil || value == "" {
			return false, fmt.Errorf("--rounding must be %s or %s", db.RoundingBinZero, db.RoundingProportional)
		}
		prefs.RoundingMode = value
		changed = true
	}
	return changed, nil
}

func printPrefs(w io.Writer, prefs db.Preferences) {
	fmt.Fprintf(w, "Questions per drill: %d\n", prefs.GetQuestionCount())
	fmt.Fprintf(w, "Spaced repetition:   %t\n", prefs.GetSpacedRepetition())
	fmt.Fprintf(w, "Reversed drill:      %t\n", prefs.GetReversedDrill())
	fmt.Fprintf(w, "Bin weights:         %s\n", runner.FormatWeights(prefs.GetBinDistribution()))
	fmt.Fprintf(w, "Rounding:            %s\n", prefs.RoundingMode)
}

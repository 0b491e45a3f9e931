package main

import (
	"context"

	"github.com/smith3v/lexilogio/pkg/config"
	"github.com/smith3v/lexilogio/pkg/deck"
	"github.com/smith3v/lexilogio/pkg/drill"
	"github.com/smith3v/lexilogio/pkg/runner"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open the interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd)
		},
	}
}

func runInteractive(cmd *cobra.Command) error {
	return withDeck(cmd.Context(), func(ctx context.Context, repo *deck.Repository) error {
		return newRunner(cmd, repo).Run(ctx)
	})
}

func newRunner(cmd *cobra.Command, repo *deck.Repository) *runner.Runner {
	return runner.New(cmd.InOrStdin(), cmd.OutOrStdout(), repo, config.AppConfig.Deck)
}

func newDrillCmd() *cobra.Command {
	var (
		category string
		tag      string
		count    int
		reversed bool
	)
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Start a drill right away",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeck(cmd.Context(), func(ctx context.Context, repo *deck.Repository) error {
				filter, err := resolveFilter(ctx, repo, category, tag)
				if err != nil {
					return err
				}
				prefs, err := repo.Preferences(ctx)
				if err != nil {
					return err
				}
				cfg, err := drill.ConfigFromPreferences(prefs)
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("count") {
					cfg.QuestionCount = count
				}
				if cmd.Flags().Changed("reversed") {
					cfg.Reversed = reversed
				}
				return newRunner(cmd, repo).RunDrill(ctx, filter, cfg)
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "drill only this category")
	cmd.Flags().StringVar(&tag, "tag", "", "drill only terms with this tag")
	cmd.Flags().IntVar(&count, "count", 0, "number of questions, overrides the preferences")
	cmd.Flags().BoolVar(&reversed, "reversed", false, "ask the answer side, overrides the preferences")
	cmd.MarkFlagsMutuallyExclusive("category", "tag")
	return cmd
}

// resolveFilter turns --category/--tag names into a drill filter.
func resolveFilter(ctx context.Context, repo *deck.Repository, category, tag string) (drill.Filter, error) {
	var categoryID, tagID *uint
	if category != "" {
		c, err := repo.CategoryByName(ctx, category)
		if err != nil {
			return drill.Filter{}, err
		}
		categoryID = &c.ID
	}
	if tag != "" {
		t, err := repo.TagByName(ctx, tag)
		if err != nil {
			return drill.Filter{}, err
		}
		tagID = &t.ID
	}
	return drill.FilterFor(categoryID, tagID)
}

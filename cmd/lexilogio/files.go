package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/smith3v/lexilogio/pkg/deck"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var path, url string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import cards from a file or a git repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			source := path
			if url != "" {
				source = url
			}
			if source == "" {
				return errors.New("one of --file or --git is required")
			}
			return withDeck(cmd.Context(), func(ctx context.Context, repo *deck.Repository) error {
				summary, err := newRunner(cmd, repo).Import(ctx, source)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), summary.String())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "a .txt, .csv, .xlsx or .md file")
	cmd.Flags().StringVar(&url, "git", "", "URL of a git repository of deck files")
	cmd.MarkFlagsMutuallyExclusive("file", "git")
	return cmd
}

func newExportCmd() *cobra.Command {
	var path, category string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the deck, the format follows the file extension",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeck(cmd.Context(), func(ctx context.Context, repo *deck.Repository) error {
				filter, err := resolveFilter(ctx, repo, category, "")
				if err != nil {
					return err
				}
				n, err := newRunner(cmd, repo).Export(ctx, path, filter)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d terms to %s.\n", n, path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "destination: .txt, .csv or .xlsx")
	cmd.Flags().StringVar(&category, "category", "", "export only this category")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

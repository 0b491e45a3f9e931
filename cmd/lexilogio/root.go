package main

import (
	"context"
	"fmt"

	"github.com/smith3v/lexilogio/pkg/config"
	"github.com/smith3v/lexilogio/pkg/db"
	"github.com/smith3v/lexilogio/pkg/deck"
	"github.com/smith3v/lexilogio/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lexilogio",
		Short:         "Flashcard drills with spaced repetition",
		Long:          "lexilogio drills question/answer cards from a deck, moving each card between six bins by how well it was recalled.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadSettings(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "path to a YAML config file")
	flags.String("env-file", ".env", "path to a .env file")
	flags.String("data-dir", "", "directory holding the deck databases")
	flags.String("deck", "", "deck name, one database per deck")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-file", "", "also write logs to this file")
	flags.String("db-driver", "", "database driver: sqlite or postgres")
	flags.String("db-path", "", "sqlite file, overrides the per-deck file")
	flags.String("gorm-level", "", "SQL log level: silent, error, warn or info")

	root.AddCommand(
		newRunCmd(),
		newDrillCmd(),
		newImportCmd(),
		newExportCmd(),
		newPrefsCmd(),
		newStatsCmd(),
		newBotCmd(),
	)
	return root
}

func loadSettings(cmd *cobra.Command) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	configFile, _ := cmd.Flags().GetString("config")
	if err := config.LoadConfig(configFile, cmd.Flags()); err != nil {
		return err
	}
	return logger.Configure(logger.Options{
		Level: config.AppConfig.Logging.Level,
		File:  config.AppConfig.Logging.File,
	})
}

// withDeck opens the configured deck for the duration of fn.
func withDeck(ctx context.Context, fn func(ctx context.Context, repo *deck.Repository) error) error {
	gdb, err := db.Open(config.AppConfig)
	if err != nil {
		return fmt.Errorf("failed to open deck %q: %w", config.AppConfig.Deck, err)
	}
	defer closeDB(gdb)
	logger.Debug("deck opened", "deck", config.AppConfig.Deck, "driver", config.AppConfig.Database.Driver)
	return fn(ctx, deck.NewRepository(gdb))
}

func closeDB(gdb *gorm.DB) {
	if err := db.Close(gdb); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}

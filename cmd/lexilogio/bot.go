package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/smith3v/lexilogio/pkg/bot/handlers"
	"github.com/smith3v/lexilogio/pkg/bot/reminders"
	"github.com/smith3v/lexilogio/pkg/bot/session"
	"github.com/smith3v/lexilogio/pkg/config"
	"github.com/smith3v/lexilogio/pkg/deck"
	"github.com/smith3v/lexilogio/pkg/logger"
	"github.com/spf13/cobra"
)

func newBotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Serve the deck through a Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			telegram := config.AppConfig.Telegram
			if err := telegram.CheckBot(); err != nil {
				return fmt.Errorf("cannot start the bot: %w", err)
			}
			return withDeck(cmd.Context(), func(ctx context.Context, repo *deck.Repository) error {
				return serveBot(ctx, repo, telegram)
			})
		},
	}
	cmd.Flags().String("bot-token", "", "Telegram bot token")
	return cmd
}

func serveBot(ctx context.Context, repo *deck.Repository, telegram config.TelegramConfig) error {
	var h *handlers.Handlers
	sessions := session.NewManager(session.WithExpireFunc(func(ctx context.Context, result session.Result) {
		h.FlushExpired(ctx, result)
	}))
	h = handlers.New(repo, sessions, telegram)

	b, err := bot.New(telegram.Token,
		bot.WithDefaultHandler(h.DefaultHandler),
		bot.WithMiddlewares(h.Authorize),
	)
	if err != nil {
		return err
	}
	h.Register(b)

	go sessions.StartSweeper(ctx, session.SweeperInterval)

	schedule := reminders.New(b, repo, telegram, time.Local)
	if err := schedule.Start(ctx); err != nil {
		return err
	}

	logger.Info("Starting bot...", "deck", config.AppConfig.Deck)
	b.Start(ctx)
	return nil
}

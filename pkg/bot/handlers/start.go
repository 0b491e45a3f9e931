package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/lexilogio/pkg/logger"
)

const helpText = "Commands:\n" +
	"/drill: drill the whole deck\n" +
	"/drill NAME: drill one category\n" +
	"/drill #TAG: drill one tag\n" +
	"/stop: end the current drill\n" +
	"/prefs: question count, spaced repetition, reversed drill\n" +
	"/stats: terms per category and bin\n" +
	"/export: download the deck\n\n" +
	"Send a .txt, .csv, .xlsx or .md file to import cards. " +
	"Text files hold one \"question: answer\" per line, and a line \"# category=NAME\" sets the category of the lines below it."

func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleStart")
		return
	}
	count, err := h.deckSize(ctx)
	if err != nil {
		logger.Error("failed to count terms", "user_id", update.Message.From.ID, "error", err)
		sendText(ctx, b, update.Message.Chat.ID, "Failed to open the deck. Please try again later.")
		return
	}
	greeting := "Welcome to lexilogio! "
	if count == 0 {
		greeting += "The deck is empty, send a file to import some cards.\n\n"
	} else {
		greeting += "Send /drill to start practicing.\n\n"
	}
	sendText(ctx, b, update.Message.Chat.ID, greeting+helpText)
}

func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleHelp")
		return
	}
	sendText(ctx, b, update.Message.Chat.ID, helpText)
}

// DefaultHandler imports documents and answers everything else with help.
func (h *Handlers) DefaultHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil {
		return
	}
	if update.Message.Chat.ID == 0 {
		logger.Error("chat ID is zero in DefaultHandler")
		return
	}
	if update.Message.Document != nil {
		h.HandleDocument(ctx, b, update)
		return
	}
	sendText(ctx, b, update.Message.Chat.ID, helpText)
}

func (h *Handlers) deckSize(ctx context.Context) (int, error) {
	stats, err := h.store.Stats(ctx)
	if err != nil {
		return 0, err
	}
	return int(stats.Total), nil
}

package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/lexilogio/pkg/importexport"
	"github.com/smith3v/lexilogio/pkg/logger"
)

func (h *Handlers) HandleExport(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleExport")
		return
	}
	if update.Message.Chat.Type != models.ChatTypePrivate {
		sendText(ctx, b, update.Message.Chat.ID, "The /export command works only in private chat.")
		return
	}

	terms, err := h.store.AllTerms(ctx)
	if err != nil {
		logger.Error("failed to fetch terms for export", "user_id", update.Message.From.ID, "error", err)
		sendText(ctx, b, update.Message.Chat.ID, "Failed to export the deck. Please try again later.")
		return
	}
	if len(terms) == 0 {
		sendText(ctx, b, update.Message.Chat.ID, "The deck is empty, there is nothing to export.")
		return
	}

	ext := "txt"
	data, err := importexport.BuildExportText(terms)
	if errors.Is(err, importexport.ErrNotRepresentable) {
		logger.Info("deck does not fit the text format, exporting csv", "reason", err)
		ext = "csv"
		data, err = importexport.BuildExportCSV(terms)
	}
	if err != nil {
		logger.Error("failed to build export", "user_id", update.Message.From.ID, "error", err)
		sendText(ctx, b, update.Message.Chat.ID, "Failed to export the deck. Please try again later.")
		return
	}

	_, err = b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: update.Message.Chat.ID,
		Document: &models.InputFileUpload{
			Filename: importexport.ExportFilename(time.Now(), ext),
			Data:     bytes.NewReader(data),
		},
		Caption: fmt.Sprintf("Deck export (%d cards).", len(terms)),
	})
	if err != nil {
		logger.Error("failed to send export document", "user_id", update.Message.From.ID, "error", err)
		sendText(ctx, b, update.Message.Chat.ID, "Failed to export the deck. Please try again later.")
	}
}

func (h *Handlers) HandleStats(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleStats")
		return
	}
	stats, err := h.store.Stats(ctx)
	if err != nil {
		logger.Error("failed to load stats", "user_id", update.Message.From.ID, "error", err)
		sendText(ctx, b, update.Message.Chat.ID, "Failed to load the statistics. Please try again later.")
		return
	}
	sendText(ctx, b, update.Message.Chat.ID, stats.String())
}

package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/lexilogio/pkg/importexport"
	"github.com/smith3v/lexilogio/pkg/logger"
)

// maxImportSize caps uploaded deck files.
const maxImportSize = 5 << 20

// HandleDocument imports an uploaded deck file.
func (h *Handlers) HandleDocument(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) || update.Message.Document == nil {
		logger.Error("invalid update in HandleDocument")
		return
	}
	chatID := update.Message.Chat.ID
	doc := update.Message.Document
	logger.Info("uploading file", "file_name", doc.FileName, "user_id", update.Message.From.ID)

	format, err := importexport.FormatFromName(doc.FileName)
	if err != nil {
		sendText(ctx, b, chatID, "Unsupported file type. Please upload a .txt, .csv, .xlsx or .md file.")
		return
	}
	if doc.FileSize > maxImportSize {
		sendText(ctx, b, chatID, "The file is too large.")
		return
	}

	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: doc.FileID})
	if err != nil {
		logger.Error("failed to get file", "file_id", doc.FileID, "error", err)
		sendText(ctx, b, chatID, "Failed to download the file. Please try again.")
		return
	}
	data, err := h.fetch(ctx, b.FileDownloadLink(file))
	if errors.Is(err, ErrFileTooLarge) || len(data) > maxImportSize {
		logger.Warn("uploaded file over the size limit", "file_id", doc.FileID, "declared_size", doc.FileSize)
		sendText(ctx, b, chatID, "The file is too large.")
		return
	}
	if err != nil {
		logger.Error("failed to download file", "file_id", doc.FileID, "error", err)
		sendText(ctx, b, chatID, "Failed to download the file. Please try again.")
		return
	}

	cards, skipped, err := importexport.Parse(format, data)
	if err != nil {
		logger.Error("failed to parse uploaded file", "file_name", doc.FileName, "error", err)
		text := "Failed to read the file. Please ensure it is in the correct format."
		if errors.Is(err, importexport.ErrMalformedCategory) {
			text = "The file has a malformed \"# category=NAME\" line."
		}
		sendText(ctx, b, chatID, text)
		return
	}
	if len(cards) == 0 {
		sendText(ctx, b, chatID, "No valid cards found to import.")
		return
	}

	summary, err := importexport.Import(ctx, h.store, cards)
	if err != nil {
		logger.Error("failed to import cards", "user_id", update.Message.From.ID, "error", err)
		sendText(ctx, b, chatID, "Failed to import the cards. Please try again later.")
		return
	}
	summary.Skipped = skipped
	sendText(ctx, b, chatID, summary.String())
}

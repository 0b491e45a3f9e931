package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/lexilogio/pkg/db"
	"github.com/smith3v/lexilogio/pkg/logger"
	"github.com/smith3v/lexilogio/pkg/ui"
)

const (
	MinQuestionCount = 1
	MaxQuestionCount = 200
)

var (
	ErrBelowMin      = errors.New("value below minimum")
	ErrAboveMax      = errors.New("value above maximum")
	ErrInvalidAction = errors.New("invalid preferences action")
)

func (h *Handlers) HandlePrefs(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandlePrefs")
		return
	}

	prefs, err := h.store.Preferences(ctx)
	if err != nil {
		logger.Error("failed to load preferences", "user_id", update.Message.From.ID, "error", err)
		sendText(ctx, b, update.Message.Chat.ID, "Failed to load the preferences. Please try again later.")
		return
	}

	text, keyboard, err := ui.RenderPreferences(prefs)
	if err != nil {
		logger.Error("failed to render preferences", "user_id", update.Message.From.ID, "error", err)
		sendText(ctx, b, update.Message.Chat.ID, "Failed to render the preferences. Please try again later.")
		return
	}

	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        text,
		ReplyMarkup: keyboard,
	}); err != nil {
		logger.Error("failed to send preferences message", "user_id", update.Message.From.ID, "error", err)
	}
}

func (h *Handlers) HandlePrefsCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.CallbackQuery == nil {
		logger.Error("invalid update in HandlePrefsCallback")
		return
	}

	callbackID := update.CallbackQuery.ID
	answered := false
	answerCallback := func(text string) {
		if answered || callbackID == "" {
			return
		}
		if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: callbackID,
			Text:            text,
		}); err != nil {
			logger.Error("failed to answer callback query", "error", err)
		}
		answered = true
	}

	action, err := ui.ParseCallbackData(update.CallbackQuery.Data)
	if err != nil {
		logger.Error("failed to parse preferences callback", "data", update.CallbackQuery.Data, "error", err)
		answerCallback("Unknown command")
		return
	}

	message := update.CallbackQuery.Message
	if message.Type != models.MaybeInaccessibleMessageTypeMessage || message.Message == nil || message.Message.Chat.ID == 0 {
		logger.Error("callback query message is inaccessible", "user_id", update.CallbackQuery.From.ID)
		answerCallback("Message is not available")
		return
	}
	msg := message.Message

	prefs, err := h.store.Preferences(ctx)
	if err != nil {
		logger.Error("failed to load preferences", "user_id", update.CallbackQuery.From.ID, "error", err)
		answerCallback("Failed to load preferences")
		return
	}

	newPrefs, nextScreen, changed, err := ApplyAction(prefs, action)
	if err != nil {
		switch {
		case errors.Is(err, ErrBelowMin):
			answerCallback(fmt.Sprintf("Minimum is %d", MinQuestionCount))
		case errors.Is(err, ErrAboveMax):
			answerCallback(fmt.Sprintf("Maximum is %d", MaxQuestionCount))
		default:
			logger.Error("failed to apply preferences action", "user_id", update.CallbackQuery.From.ID, "error", err)
			answerCallback("Unknown command")
		}
		return
	}

	if changed {
		if err := h.store.SavePreferences(ctx, &newPrefs); err != nil {
			logger.Error("failed to save preferences", "user_id", update.CallbackQuery.From.ID, "error", err)
			answerCallback("Failed to save preferences")
			return
		}
	}
	answerCallback("")

	if !changed && action.Op == ui.OpSet {
		return
	}

	var text string
	var keyboard *models.InlineKeyboardMarkup
	switch nextScreen {
	case ui.ScreenHome:
		text, keyboard, err = ui.RenderPreferences(newPrefs)
	case ui.ScreenCount:
		text, keyboard, err = ui.RenderCount(newPrefs.GetQuestionCount())
	case ui.ScreenClose:
		text = "Preferences saved ✅"
		keyboard = &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{},
		}
	default:
		logger.Error("unknown preferences screen", "screen", nextScreen)
		return
	}
	if err != nil {
		logger.Error("failed to render preferences screen", "user_id", update.CallbackQuery.From.ID, "error", err)
		return
	}

	if _, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        text,
		ReplyMarkup: keyboard,
	}); err != nil {
		logger.Error("failed to edit preferences message", "user_id", update.CallbackQuery.From.ID, "error", err)
	}
}

// ApplyAction returns the preferences after action and the screen to show
// next. Toggles go back to the overview.
func ApplyAction(prefs db.Preferences, action ui.Action) (db.Preferences, ui.Screen, bool, error) {
	switch action.Screen {
	case ui.ScreenHome, ui.ScreenClose:
		if action.Op != ui.OpNone {
			return prefs, action.Screen, false, ErrInvalidAction
		}
		return prefs, action.Screen, false, nil
	case ui.ScreenCount:
		next, changed, err := applyValue(prefs.GetQuestionCount(), action, MinQuestionCount, MaxQuestionCount)
		if err != nil {
			return prefs, ui.ScreenCount, false, err
		}
		newPrefs := prefs
		newPrefs.QuestionCount = next
		return newPrefs, ui.ScreenCount, changed, nil
	case ui.ScreenSpaced, ui.ScreenReversed, ui.ScreenRounding:
		if action.Op != ui.OpToggle {
			return prefs, ui.ScreenHome, false, ErrInvalidAction
		}
		newPrefs := prefs
		newPrefs.BinWeights = append([]float64(nil), prefs.BinWeights...)
		switch action.Screen {
		case ui.ScreenSpaced:
			newPrefs.SpacedRepetition = !prefs.SpacedRepetition
		case ui.ScreenReversed:
			newPrefs.ReversedDrill = !prefs.ReversedDrill
		default:
			if prefs.RoundingMode == db.RoundingProportional {
				newPrefs.RoundingMode = db.RoundingBinZero
			} else {
				newPrefs.RoundingMode = db.RoundingProportional
			}
		}
		return newPrefs, ui.ScreenHome, true, nil
	default:
		return prefs, ui.ScreenHome, false, ErrInvalidAction
	}
}

func applyValue(current int, action ui.Action, min, max int) (int, bool, error) {
	switch action.Op {
	case ui.OpNone:
		return current, false, nil
	case ui.OpInc, ui.OpDec:
		return clampValue(current, current+action.Value, min, max)
	case ui.OpSet:
		return clampValue(current, action.Value, min, max)
	default:
		return current, false, ErrInvalidAction
	}
}

func clampValue(current, next, min, max int) (int, bool, error) {
	if next < min {
		return current, false, ErrBelowMin
	}
	if next > max {
		return current, false, ErrAboveMax
	}
	if next == current {
		return current, false, nil
	}
	return next, true, nil
}

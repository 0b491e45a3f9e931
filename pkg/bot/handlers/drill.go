package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/lexilogio/pkg/bot/session"
	"github.com/smith3v/lexilogio/pkg/db"
	"github.com/smith3v/lexilogio/pkg/deck"
	"github.com/smith3v/lexilogio/pkg/drill"
	"github.com/smith3v/lexilogio/pkg/logger"
	"github.com/smith3v/lexilogio/pkg/ui"
)

// HandleDrill starts a drill over the deck, a category ("/drill verbs") or a
// tag ("/drill #hard").
func (h *Handlers) HandleDrill(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleDrill")
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	filter, err := h.filterFromArgs(ctx, strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/drill")))
	if err != nil {
		if errors.Is(err, deck.ErrNotFound) {
			sendText(ctx, b, chatID, "No such category or tag.")
			return
		}
		logger.Error("failed to resolve drill filter", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to start the drill. Please try again later.")
		return
	}

	prefs, err := h.store.Preferences(ctx)
	if err != nil {
		logger.Error("failed to load preferences", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to start the drill. Please try again later.")
		return
	}
	d, reversed, err := h.makeDrill(ctx, filter, prefs)
	switch {
	case errors.Is(err, drill.ErrInvalidConfiguration):
		sendText(ctx, b, chatID, "The drill preferences are invalid, please fix them with /prefs.")
	case err != nil:
		logger.Error("failed to make drill", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to start the drill. Please try again later.")
	case d == nil:
		sendText(ctx, b, chatID, "No terms to drill.")
	default:
		h.startDrill(ctx, b, chatID, userID, d, reversed)
	}
}

func (h *Handlers) makeDrill(ctx context.Context, filter drill.Filter, prefs db.Preferences) (*drill.Drill, bool, error) {
	cfg, err := drill.ConfigFromPreferences(prefs)
	if err != nil {
		return nil, false, err
	}
	d, err := drill.Make(ctx, h.store, filter, cfg, h.drillOpts...)
	return d, cfg.Reversed, err
}

func (h *Handlers) filterFromArgs(ctx context.Context, args string) (drill.Filter, error) {
	switch {
	case args == "":
		return drill.All(), nil
	case strings.HasPrefix(args, "#"):
		tag, err := h.store.TagByName(ctx, strings.TrimPrefix(args, "#"))
		if err != nil {
			return drill.Filter{}, err
		}
		return drill.ByTag(tag.ID), nil
	default:
		category, err := h.store.CategoryByName(ctx, args)
		if err != nil {
			return drill.Filter{}, err
		}
		return drill.ByCategory(category.ID), nil
	}
}

func (h *Handlers) startDrill(ctx context.Context, b *bot.Bot, chatID, userID int64, d *drill.Drill, reversed bool) {
	snap, replaced, err := h.sessions.Start(chatID, userID, d, reversed)
	if err != nil {
		logger.Error("failed to start drill session", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to start the drill. Please try again later.")
		return
	}
	if replaced != nil {
		if err := h.persist(ctx, *replaced); err != nil {
			logger.Error("failed to store replaced drill", "user_id", userID, "error", err)
		}
	}

	text, keyboard, err := ui.RenderPrompt(snap.Token, snap.Position, snap.Total, snap.Prompt)
	if err != nil {
		logger.Error("failed to render drill prompt", "user_id", userID, "error", err)
		return
	}
	msg, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: keyboard,
	})
	if err != nil {
		logger.Error("failed to send drill prompt", "user_id", userID, "error", err)
		return
	}
	if msg != nil {
		h.sessions.SetMessageID(chatID, userID, snap.Token, msg.ID)
	}
}

func (h *Handlers) HandleStop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleStop")
		return
	}
	result, ok := h.sessions.Stop(update.Message.Chat.ID, update.Message.From.ID)
	if !ok {
		sendText(ctx, b, update.Message.Chat.ID, "There is no drill to stop.")
		return
	}
	sendText(ctx, b, update.Message.Chat.ID, h.finish(ctx, result))
}

func (h *Handlers) HandleDrillCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.CallbackQuery == nil {
		logger.Error("invalid update in HandleDrillCallback")
		return
	}
	query := update.CallbackQuery
	answered := false
	answerCallback := func(text string) {
		if answered || query.ID == "" {
			return
		}
		if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: query.ID,
			Text:            text,
		}); err != nil {
			logger.Error("failed to answer callback query", "error", err)
		}
		answered = true
	}
	defer answerCallback("")

	action, err := ui.ParseDrillCallback(query.Data)
	if err != nil {
		logger.Error("failed to parse drill callback", "data", query.Data, "error", err)
		answerCallback("Unknown command")
		return
	}
	message := query.Message
	if message.Type != models.MaybeInaccessibleMessageTypeMessage || message.Message == nil || message.Message.Chat.ID == 0 {
		answerCallback("Message is not available")
		return
	}
	chatID := message.Message.Chat.ID
	messageID := message.Message.ID
	userID := query.From.ID

	var (
		text     string
		keyboard *models.InlineKeyboardMarkup
	)
	switch action.Op {
	case ui.DrillShow:
		snap, err := h.sessions.Reveal(chatID, userID, action.Token)
		if err != nil {
			answerCallback(sessionErrorText(err))
			return
		}
		text, keyboard, err = ui.RenderAnswer(snap.Token, snap.Position, snap.Total, snap.Prompt, snap.Response)
		if err != nil {
			logger.Error("failed to render drill answer", "user_id", userID, "error", err)
			return
		}
	case ui.DrillGrade:
		snap, result, err := h.sessions.Grade(chatID, userID, action.Token, action.Grade)
		if err != nil {
			answerCallback(sessionErrorText(err))
			return
		}
		answerCallback("Graded " + ui.GradeLabel(action.Grade))
		if result != nil {
			text = h.finish(ctx, *result)
			keyboard = &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{}}
			break
		}
		text, keyboard, err = ui.RenderPrompt(snap.Token, snap.Position, snap.Total, snap.Prompt)
		if err != nil {
			logger.Error("failed to render drill prompt", "user_id", userID, "error", err)
			return
		}
		h.sessions.SetMessageID(chatID, userID, snap.Token, messageID)
	case ui.DrillStop:
		snap, ok := h.sessions.Snapshot(chatID, userID)
		if !ok {
			answerCallback(sessionErrorText(session.ErrNoSession))
			return
		}
		if snap.Token != action.Token {
			answerCallback(sessionErrorText(session.ErrStaleToken))
			return
		}
		result, _ := h.sessions.Stop(chatID, userID)
		text = h.finish(ctx, result)
		keyboard = &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{}}
	}

	if _, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: keyboard,
	}); err != nil {
		logger.Error("failed to edit drill message", "user_id", userID, "error", err)
	}
}

// finish stores a drill's grades and describes the outcome.
func (h *Handlers) finish(ctx context.Context, result session.Result) string {
	if err := h.persist(ctx, result); err != nil {
		logger.Error("failed to store drill", "chat_id", result.ChatID, "user_id", result.UserID, "error", err)
		return "Failed to save the drill results. Please try again later."
	}
	text := fmt.Sprintf("Drill finished: %d of %d terms reviewed.", result.Reviewed(), result.Total)
	if missed := missedAmongGraded(result); len(missed) > 0 {
		text += "\nTo revisit:"
		for _, line := range missed {
			text += "\n" + line
		}
	}
	return text
}

func missedAmongGraded(result session.Result) []string {
	graded := make(map[uint]bool, len(result.Updated))
	for _, term := range result.Updated {
		graded[term.ID] = true
	}
	var lines []string
	for _, term := range result.Missed {
		if graded[term.ID] {
			lines = append(lines, term.Question+": "+term.Answer)
		}
	}
	return lines
}

func sessionErrorText(err error) string {
	switch {
	case errors.Is(err, session.ErrNoSession):
		return "This drill is over. Send /drill to start a new one."
	case errors.Is(err, session.ErrStaleToken):
		return "This card was already answered."
	default:
		logger.Error("drill session error", "error", err)
		return "Something went wrong"
	}
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/lexilogio/pkg/bot/session"
	"github.com/smith3v/lexilogio/pkg/config"
	"github.com/smith3v/lexilogio/pkg/db"
	"github.com/smith3v/lexilogio/pkg/deck"
	"github.com/smith3v/lexilogio/pkg/drill"
	"github.com/smith3v/lexilogio/pkg/importexport"
	"github.com/smith3v/lexilogio/pkg/logger"
)

// Store is the part of the deck repository the bot uses.
type Store interface {
	drill.Source
	importexport.Store

	Preferences(ctx context.Context) (db.Preferences, error)
	SavePreferences(ctx context.Context, prefs *db.Preferences) error
	PersistGradedTerms(ctx context.Context, terms []*db.Term, reversed bool) error
	CategoryByName(ctx context.Context, name string) (*db.Category, error)
	TagByName(ctx context.Context, name string) (*db.Tag, error)
	Stats(ctx context.Context) (deck.Stats, error)
}

// ErrFileTooLarge is returned for uploads over the import size limit.
var ErrFileTooLarge = errors.New("file exceeds the import size limit")

// FetchFunc downloads an uploaded file.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// Handlers serves the Telegram front-end of one deck.
type Handlers struct {
	store     Store
	sessions  *session.Manager
	telegram  config.TelegramConfig
	fetch     FetchFunc
	drillOpts []drill.Option
}

type Option func(*Handlers)

func WithFetcher(fetch FetchFunc) Option {
	return func(h *Handlers) { h.fetch = fetch }
}

func WithDrillOptions(opts ...drill.Option) Option {
	return func(h *Handlers) { h.drillOpts = append(h.drillOpts, opts...) }
}

func New(store Store, sessions *session.Manager, telegram config.TelegramConfig, opts ...Option) *Handlers {
	h := &Handlers{
		store:    store,
		sessions: sessions,
		telegram: telegram,
		fetch:    httpFetch,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register installs the command and callback handlers on b.
func (h *Handlers) Register(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.HandleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.HandleHelp)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/drill", bot.MatchTypePrefix, h.HandleDrill)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/stop", bot.MatchTypeExact, h.HandleStop)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/prefs", bot.MatchTypeExact, h.HandlePrefs)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/export", bot.MatchTypeExact, h.HandleExport)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/stats", bot.MatchTypeExact, h.HandleStats)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "p:", bot.MatchTypePrefix, h.HandlePrefsCallback)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "d:", bot.MatchTypePrefix, h.HandleDrillCallback)
}

// Authorize drops updates from users outside telegram.allowed_user_ids.
func (h *Handlers) Authorize(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		userID, ok := senderID(update)
		if !ok || !h.telegram.IsAllowed(userID) {
			logger.Warn("ignoring update from unauthorized user", "user_id", userID)
			return
		}
		next(ctx, b, update)
	}
}

// FlushExpired stores the grades of a drill dropped for inactivity.
func (h *Handlers) FlushExpired(ctx context.Context, result session.Result) {
	if err := h.persist(ctx, result); err != nil {
		logger.Error("failed to store expired drill", "chat_id", result.ChatID, "user_id", result.UserID, "error", err)
	}
}

func (h *Handlers) persist(ctx context.Context, result session.Result) error {
	if len(result.Updated) == 0 {
		return nil
	}
	if err := h.store.PersistGradedTerms(ctx, result.Updated, result.Reversed); err != nil {
		return fmt.Errorf("failed to store drill results: %w", err)
	}
	logger.Info("drill results saved", "chat_id", result.ChatID, "terms", len(result.Updated))
	return nil
}

func senderID(update *models.Update) (int64, bool) {
	switch {
	case update == nil:
		return 0, false
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, true
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID, true
	default:
		return 0, false
	}
}

func validMessage(update *models.Update) bool {
	return update != nil && update.Message != nil && update.Message.From != nil && update.Message.Chat.ID != 0
}

func sendText(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

func httpFetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImportSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImportSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/go-telegram/bot"
	"github.com/smith3v/lexilogio/pkg/config"
	"github.com/smith3v/lexilogio/pkg/deck"
	"github.com/smith3v/lexilogio/pkg/logger"
)

// Store is the read-only view of the deck the reminder needs.
type Store interface {
	Stats(ctx context.Context) (deck.Stats, error)
}

// Scheduler sends a daily drill reminder to the allowed users.
type Scheduler struct {
	scheduler *gocron.Scheduler
	bot       *bot.Bot
	store     Store
	telegram  config.TelegramConfig
}

func New(b *bot.Bot, store Store, telegram config.TelegramConfig, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		bot:       b,
		store:     store,
		telegram:  telegram,
	}
}

// Start schedules the reminder at telegram.reminder_time and stops the
// scheduler when ctx is done. An empty reminder time disables it.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.telegram.ReminderTime == "" {
		logger.Info("daily reminder disabled")
		return nil
	}
	if len(s.telegram.AllowedUserIDs) == 0 {
		logger.Warn("daily reminder has no recipients, set telegram.allowed_user_ids")
		return nil
	}
	if _, err := s.scheduler.Every(1).Day().At(s.telegram.ReminderTime).Do(func() {
		s.SendReminders(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule reminder at %q: %w", s.telegram.ReminderTime, err)
	}
	s.scheduler.StartAsync()
	logger.Info("daily reminder scheduled", "at", s.telegram.ReminderTime)

	go func() {
		<-ctx.Done()
		s.scheduler.Stop()
	}()
	return nil
}

// SendReminders messages every allowed user and returns how many messages
// went out. Nothing is sent for an empty deck.
func (s *Scheduler) SendReminders(ctx context.Context) int {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		logger.Error("failed to load deck stats for reminder", "error", err)
		return 0
	}
	text, ok := Message(stats)
	if !ok {
		return 0
	}

	sent := 0
	for _, userID := range s.telegram.AllowedUserIDs {
		if _, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: userID, Text: text}); err != nil {
			logger.Error("failed to send reminder", "user_id", userID, "error", err)
			continue
		}
		sent++
	}
	logger.Debug("reminders sent", "count", sent)
	return sent
}

// Message describes what is waiting in the deck.
func Message(stats deck.Stats) (string, bool) {
	if stats.Total == 0 {
		return "", false
	}
	weak := 0
	for bin := 1; bin <= 2; bin++ {
		weak += stats.Bins[bin]
	}
	return fmt.Sprintf(
		"Time for a drill! The deck has %d new terms and %d weak terms out of %d. Send /drill to start.",
		stats.Bins[0], weak, stats.Total,
	), true
}

package deck

import (
	"context"
	"errors"
	"fmt"

	"github.com/smith3v/lexilogio/pkg/db"
	"github.com/smith3v/lexilogio/pkg/logger"
	"gorm.io/gorm"
)

// Preferences returns the deck preferences, storing the defaults on first use.
func (r *Repository) Preferences(ctx context.Context) (db.Preferences, error) {
	var prefs db.Preferences
	err := r.db.WithContext(ctx).Order("id").First(&prefs).Error
	if err == nil {
		return prefs, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Preferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}

	prefs = db.DefaultPreferences()
	if err := r.db.WithContext(ctx).Create(&prefs).Error; err != nil {
		return db.Preferences{}, fmt.Errorf("failed to seed preferences: %w", err)
	}
	logger.Info("seeded default preferences", "question_count", prefs.QuestionCount)
	return prefs, nil
}

// SavePreferences validates and stores prefs as the deck's single
// preferences row.
func (r *Repository) SavePreferences(ctx context.Context, prefs *db.Preferences) error {
	if err := r.validate.Struct(prefs); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}
	total := 0.0
	for _, w := range prefs.BinWeights {
		total += w
	}
	if total <= 0 {
		return fmt.Errorf("invalid preferences: bin weights sum to %v", total)
	}
	if prefs.ID == 0 {
		current, err := r.Preferences(ctx)
		if err != nil {
			return err
		}
		prefs.ID = current.ID
	}
	if err := r.db.WithContext(ctx).Save(prefs).Error; err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

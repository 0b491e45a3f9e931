package deck

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smith3v/lexilogio/pkg/db"
	"github.com/smith3v/lexilogio/pkg/logger"
	"gorm.io/gorm"
)

func (r *Repository) Term(ctx context.Context, id uint) (*db.Term, error) {
	var term db.Term
	if err := r.termQuery(ctx).First(&term, "terms.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("term %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load term %d: %w", id, err)
	}
	return &term, nil
}

func (r *Repository) CountTerms(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&db.Term{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count terms: %w", err)
	}
	return count, nil
}

// AddTerms inserts new terms. Categories and tags referenced by name only are
// created on the fly.
func (r *Repository) AddTerms(ctx context.Context, terms []*db.Term) error {
	if len(terms) == 0 {
		return nil
	}
	for _, term := range terms {
		if err := r.validateTerm(term); err != nil {
			return err
		}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, term := range terms {
			if err := resolveRefs(tx, term); err != nil {
				return err
			}
			if err := tx.Omit("Category").Create(term).Error; err != nil {
				return fmt.Errorf("failed to add term %q: %w", term.Question, err)
			}
		}
		return nil
	})
}

// UpsertTerms matches terms by question within their category. Unmatched terms
// are inserted; matched ones get the new answer and any extra tags while their
// bins are kept. The same question may live in several categories.
func (r *Repository) UpsertTerms(ctx context.Context, terms []*db.Term) (inserted, updated int, err error) {
	for _, term := range terms {
		if err := r.validateTerm(term); err != nil {
			return 0, 0, err
		}
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, term := range terms {
			if err := resolveRefs(tx, term); err != nil {
				return err
			}
			var existing db.Term
			findErr := sameCard(tx, term).First(&existing).Error
			switch {
			case errors.Is(findErr, gorm.ErrRecordNotFound):
				if err := tx.Omit("Category").Create(term).Error; err != nil {
					return fmt.Errorf("failed to add term %q: %w", term.Question, err)
				}
				inserted++
			case findErr != nil:
				return fmt.Errorf("failed to look up term %q: %w", term.Question, findErr)
			default:
				if err := tx.Model(&existing).Update("answer", term.Answer).Error; err != nil {
					return fmt.Errorf("failed to update term %q: %w", term.Question, err)
				}
				if len(term.Tags) > 0 {
					if err := tx.Model(&existing).Association("Tags").Append(term.Tags); err != nil {
						return fmt.Errorf("failed to tag term %q: %w", term.Question, err)
					}
				}
				term.ID = existing.ID
				term.Bin = existing.Bin
				term.ReversedBin = existing.ReversedBin
				term.LastDrillTime = existing.LastDrillTime
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	logger.Debug("upserted terms", "inserted", inserted, "updated", updated)
	return inserted, updated, nil
}

func sameCard(tx *gorm.DB, term *db.Term) *gorm.DB {
	query := tx.Where("question = ?", term.Question)
	if term.CategoryID == nil {
		return query.Where("category_id IS NULL")
	}
	return query.Where("category_id = ?", *term.CategoryID)
}

// UpdateTerm rewrites the text and category of an existing term.
func (r *Repository) UpdateTerm(ctx context.Context, term *db.Term) error {
	if err := r.validateTerm(term); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&db.Term{ID: term.ID}).Select("question", "answer", "category_id").Updates(&db.Term{
		Question:   term.Question,
		Answer:     term.Answer,
		CategoryID: term.CategoryID,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update term %d: %w", term.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("term %d: %w", term.ID, ErrNotFound)
	}
	return nil
}

func (r *Repository) DeleteTerm(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM term_tags WHERE term_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to detach tags from term %d: %w", id, err)
		}
		result := tx.Delete(&db.Term{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete term %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("term %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// PersistGradedTerms writes the bin of the drilled direction and the review
// time of every term, then clears their Updated flags.
func (r *Repository) PersistGradedTerms(ctx context.Context, terms []*db.Term, reversed bool) error {
	if len(terms) == 0 {
		return nil
	}
	column := "bin"
	if reversed {
		column = "reversed_bin"
	}
	now := time.Now().UTC()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, term := range terms {
			if term.ID == 0 {
				return fmt.Errorf("cannot persist unsaved term %q", term.Question)
			}
			bin := term.Bin
			if reversed {
				bin = term.ReversedBin
			}
			if err := checkBin(bin); err != nil {
				return fmt.Errorf("term %d: %w", term.ID, err)
			}
			if term.LastDrillTime == nil {
				stamp := now
				term.LastDrillTime = &stamp
			}
			result := tx.Model(&db.Term{}).Where("id = ?", term.ID).Updates(map[string]interface{}{
				column:            bin,
				"last_drill_time": *term.LastDrillTime,
			})
			if result.Error != nil {
				return fmt.Errorf("failed to persist term %d: %w", term.ID, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("term %d: %w", term.ID, ErrNotFound)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, term := range terms {
		term.Updated = false
	}
	logger.Debug("persisted graded terms", "count", len(terms), "reversed", reversed)
	return nil
}

func (r *Repository) validateTerm(term *db.Term) error {
	if term == nil {
		return errors.New("nil term")
	}
	term.Question = strings.TrimSpace(term.Question)
	term.Answer = strings.TrimSpace(term.Answer)
	if err := r.validate.Struct(term); err != nil {
		return fmt.Errorf("invalid term %q: %w", term.Question, err)
	}
	return nil
}

// resolveRefs makes sure the term's category and tags exist and carry ids.
func resolveRefs(tx *gorm.DB, term *db.Term) error {
	if term.Category != nil {
		if term.Category.ID == 0 {
			category, err := ensureCategory(tx, term.Category.Name)
			if err != nil {
				return err
			}
			term.Category = category
		}
		id := term.Category.ID
		term.CategoryID = &id
	}
	tags := term.Tags[:0]
	for _, tag := range term.Tags {
		if tag == nil {
			continue
		}
		if tag.ID == 0 {
			resolved, err := ensureTag(tx, tag.Name)
			if err != nil {
				return err
			}
			tag = resolved
		}
		tags = append(tags, tag)
	}
	term.Tags = tags
	return nil
}

package deck

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/smith3v/lexilogio/pkg/db"
	"gorm.io/gorm"
)

func normalizeTagName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty tag name", ErrInvalidName)
	}
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return "", fmt.Errorf("%w: tag %q contains whitespace", ErrInvalidName, name)
	}
	return name, nil
}

func tagKey(name string) string {
	return strings.ToLower(name)
}

func (r *Repository) Tags(ctx context.Context) ([]db.Tag, error) {
	var tags []db.Tag
	if err := r.db.WithContext(ctx).Order("name_key").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	return tags, nil
}

// CreateTag adds a tag. Names are unique regardless of case.
func (r *Repository) CreateTag(ctx context.Context, name string) (*db.Tag, error) {
	name, err := normalizeTagName(name)
	if err != nil {
		return nil, err
	}
	var tag *db.Tag
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing db.Tag
		lookupErr := tx.Where("name_key = ?", tagKey(name)).First(&existing).Error
		if lookupErr == nil {
			return fmt.Errorf("%q: %w", name, ErrTagExists)
		}
		if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up tag %q: %w", name, lookupErr)
		}
		tag = &db.Tag{Name: name, Key: tagKey(name)}
		if err := tx.Create(tag).Error; err != nil {
			return fmt.Errorf("failed to create tag %q: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// TagByName finds a tag case-insensitively.
func (r *Repository) TagByName(ctx context.Context, name string) (*db.Tag, error) {
	var tag db.Tag
	err := r.db.WithContext(ctx).Where("name_key = ?", tagKey(strings.TrimSpace(name))).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tag %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load tag %q: %w", name, err)
	}
	return &tag, nil
}

// EnsureTag returns the named tag, creating it when missing.
func (r *Repository) EnsureTag(ctx context.Context, name string) (*db.Tag, error) {
	var tag *db.Tag
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		tag, err = ensureTag(tx, name)
		return err
	})
	return tag, err
}

func ensureTag(tx *gorm.DB, name string) (*db.Tag, error) {
	name, err := normalizeTagName(name)
	if err != nil {
		return nil, err
	}
	tag := db.Tag{Name: name, Key: tagKey(name)}
	if err := tx.Where("name_key = ?", tag.Key).FirstOrCreate(&tag).Error; err != nil {
		return nil, fmt.Errorf("failed to ensure tag %q: %w", name, err)
	}
	return &tag, nil
}

func (r *Repository) ApplyTag(ctx context.Context, termID, tagID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		term, tag, err := loadTermAndTag(tx, termID, tagID)
		if err != nil {
			return err
		}
		if err := tx.Model(term).Association("Tags").Append(tag); err != nil {
			return fmt.Errorf("failed to tag term %d: %w", termID, err)
		}
		return nil
	})
}

func (r *Repository) RemoveTag(ctx context.Context, termID, tagID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		term, tag, err := loadTermAndTag(tx, termID, tagID)
		if err != nil {
			return err
		}
		if err := tx.Model(term).Association("Tags").Delete(tag); err != nil {
			return fmt.Errorf("failed to untag term %d: %w", termID, err)
		}
		return nil
	})
}

// DeleteTag detaches the tag from every term, then removes it.
func (r *Repository) DeleteTag(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM term_tags WHERE tag_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to detach tag %d: %w", id, err)
		}
		result := tx.Delete(&db.Tag{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete tag %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("tag %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

func loadTermAndTag(tx *gorm.DB, termID, tagID uint) (*db.Term, *db.Tag, error) {
	var term db.Term
	if err := tx.First(&term, termID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("term %d: %w", termID, ErrNotFound)
		}
		return nil, nil, fmt.Errorf("failed to load term %d: %w", termID, err)
	}
	var tag db.Tag
	if err := tx.First(&tag, tagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("tag %d: %w", tagID, ErrNotFound)
		}
		return nil, nil, fmt.Errorf("failed to load tag %d: %w", tagID, err)
	}
	return &term, &tag, nil
}

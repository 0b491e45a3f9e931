package deck

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/smith3v/lexilogio/pkg/db"
	"gorm.io/gorm"
)

// CategoryCount is the number of terms in a category. A nil CategoryID stands
// for uncategorized terms.
type CategoryCount struct {
	CategoryID *uint
	Name       string
	Count      int64
}

func (r *Repository) Categories(ctx context.Context) ([]db.Category, error) {
	var categories []db.Category
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return categories, nil
}

func (r *Repository) CreateCategory(ctx context.Context, name string) (*db.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty category name", ErrInvalidName)
	}
	var category *db.Category
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing db.Category
		err := tx.Where("name = ?", name).First(&existing).Error
		if err == nil {
			return fmt.Errorf("%q: %w", name, ErrCategoryExists)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up category %q: %w", name, err)
		}
		category = &db.Category{Name: name}
		if err := tx.Create(category).Error; err != nil {
			return fmt.Errorf("failed to create category %q: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (r *Repository) CategoryByName(ctx context.Context, name string) (*db.Category, error) {
	var category db.Category
	err := r.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load category %q: %w", name, err)
	}
	return &category, nil
}

// EnsureCategory returns the named category, creating it when missing.
func (r *Repository) EnsureCategory(ctx context.Context, name string) (*db.Category, error) {
	var category *db.Category
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		category, err = ensureCategory(tx, name)
		return err
	})
	return category, err
}

func ensureCategory(tx *gorm.DB, name string) (*db.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty category name", ErrInvalidName)
	}
	category := db.Category{Name: name}
	if err := tx.Where("name = ?", name).FirstOrCreate(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to ensure category %q: %w", name, err)
	}
	return &category, nil
}

// DeleteCategory detaches the category from its terms and removes it.
func (r *Repository) DeleteCategory(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.Term{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach category %d: %w", id, err)
		}
		result := tx.Delete(&db.Category{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete category %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// CountTermsByCategory returns per-category term counts sorted by name, with
// uncategorized terms first when there are any.
func (r *Repository) CountTermsByCategory(ctx context.Context) ([]CategoryCount, error) {
	var rows []struct {
		CategoryID *uint
		Total      int64
	}
	err := r.db.WithContext(ctx).
		Model(&db.Term{}).
		Select("category_id, COUNT(*) AS total").
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count terms by category: %w", err)
	}

	categories, err := r.Categories(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(categories))
	for _, category := range categories {
		names[category.ID] = category.Name
	}

	counts := make([]CategoryCount, 0, len(rows))
	for _, row := range rows {
		count := CategoryCount{CategoryID: row.CategoryID, Count: row.Total}
		if row.CategoryID != nil {
			count.Name = names[*row.CategoryID]
		}
		counts = append(counts, count)
	}
	sort.SliceStable(counts, func(i, j int) bool {
		if (counts[i].CategoryID == nil) != (counts[j].CategoryID == nil) {
			return counts[i].CategoryID == nil
		}
		return counts[i].Name < counts[j].Name
	})
	return counts, nil
}

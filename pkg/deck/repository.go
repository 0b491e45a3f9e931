package deck

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/smith3v/lexilogio/pkg/db"
	"github.com/smith3v/lexilogio/pkg/drill"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("deck: not found")
	ErrTagExists      = errors.New("deck: tag already exists")
	ErrCategoryExists = errors.New("deck: category already exists")
	ErrInvalidName    = errors.New("deck: invalid name")
)

// Repository is the GORM-backed store of one deck.
type Repository struct {
	db       *gorm.DB
	validate *validator.Validate
}

var _ drill.Source = (*Repository)(nil)

func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{
		db:       gdb,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// DB exposes the underlying connection for callers that manage its lifetime.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

func (r *Repository) termQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&db.Term{}).
		Preload("Category").
		Preload("Tags", func(tx *gorm.DB) *gorm.DB { return tx.Order("tags.name_key") }).
		Order("terms.id")
}

func binColumn(reversed bool) string {
	if reversed {
		return "terms.reversed_bin"
	}
	return "terms.bin"
}

func checkBin(bin int) error {
	if bin < db.MinBin || bin > db.MaxBin {
		return fmt.Errorf("bin %d outside [%d, %d]", bin, db.MinBin, db.MaxBin)
	}
	return nil
}

// TermsInCategoryOfBin returns terms in one bin, optionally limited to a
// category. A nil categoryID means every category.
func (r *Repository) TermsInCategoryOfBin(ctx context.Context, categoryID *uint, bin int, reversed bool) ([]*db.Term, error) {
	if err := checkBin(bin); err != nil {
		return nil, err
	}
	query := r.termQuery(ctx).Where(binColumn(reversed)+" = ?", bin)
	if categoryID != nil {
		query = query.Where("terms.category_id = ?", *categoryID)
	}
	var terms []*db.Term
	if err := query.Find(&terms).Error; err != nil {
		return nil, fmt.Errorf("failed to load terms of bin %d: %w", bin, err)
	}
	return terms, nil
}

// TermsWithTagOfBin returns terms in one bin, optionally limited to a tag. A
// nil tagID means every term.
func (r *Repository) TermsWithTagOfBin(ctx context.Context, tagID *uint, bin int, reversed bool) ([]*db.Term, error) {
	if err := checkBin(bin); err != nil {
		return nil, err
	}
	query := r.termQuery(ctx).Where(binColumn(reversed)+" = ?", bin)
	if tagID != nil {
		query = query.
			Joins("JOIN term_tags ON term_tags.term_id = terms.id").
			Where("term_tags.tag_id = ?", *tagID)
	}
	var terms []*db.Term
	if err := query.Find(&terms).Error; err != nil {
		return nil, fmt.Errorf("failed to load tagged terms of bin %d: %w", bin, err)
	}
	return terms, nil
}

func (r *Repository) AllTerms(ctx context.Context) ([]*db.Term, error) {
	var terms []*db.Term
	if err := r.termQuery(ctx).Find(&terms).Error; err != nil {
		return nil, fmt.Errorf("failed to load terms: %w", err)
	}
	return terms, nil
}

func (r *Repository) TermsInCategory(ctx context.Context, categoryID uint) ([]*db.Term, error) {
	var terms []*db.Term
	if err := r.termQuery(ctx).Where("terms.category_id = ?", categoryID).Find(&terms).Error; err != nil {
		return nil, fmt.Errorf("failed to load terms of category %d: %w", categoryID, err)
	}
	return terms, nil
}

// UncategorizedTerms returns terms without a category.
func (r *Repository) UncategorizedTerms(ctx context.Context) ([]*db.Term, error) {
	var terms []*db.Term
	if err := r.termQuery(ctx).Where("terms.category_id IS NULL").Find(&terms).Error; err != nil {
		return nil, fmt.Errorf("failed to load uncategorized terms: %w", err)
	}
	return terms, nil
}

func (r *Repository) TermsWithTag(ctx context.Context, tagID uint) ([]*db.Term, error) {
	var terms []*db.Term
	err := r.termQuery(ctx).
		Joins("JOIN term_tags ON term_tags.term_id = terms.id").
		Where("term_tags.tag_id = ?", tagID).
		Find(&terms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load terms with tag %d: %w", tagID, err)
	}
	return terms, nil
}

// BinCounts counts the terms matching filter per bin.
func (r *Repository) BinCounts(ctx context.Context, filter drill.Filter, reversed bool) ([db.BinSize]int, error) {
	var counts [db.BinSize]int
	column := binColumn(reversed)
	query := r.db.WithContext(ctx).Model(&db.Term{})
	switch filter.Kind() {
	case drill.FilterCategory:
		query = query.Where("terms.category_id = ?", filter.ID())
	case drill.FilterTag:
		query = query.
			Joins("JOIN term_tags ON term_tags.term_id = terms.id").
			Where("term_tags.tag_id = ?", filter.ID())
	}

	var rows []struct {
		Bin   int
		Total int
	}
	if err := query.Select(column + " AS bin, COUNT(*) AS total").Group(column).Scan(&rows).Error; err != nil {
		return counts, fmt.Errorf("failed to count bins: %w", err)
	}
	for _, row := range rows {
		if row.Bin >= db.MinBin && row.Bin <= db.MaxBin {
			counts[row.Bin] = row.Total
		}
	}
	return counts, nil
}

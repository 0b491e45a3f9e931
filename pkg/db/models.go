// pkg/db/models.go
package db

import (
	"time"
)

const (
	MinBin  = 0
	MaxBin  = 5
	BinSize = MaxBin + 1

	DefaultQuestionCount = 25
)

// Rounding modes stored in Preferences.RoundingMode.
const (
	RoundingBinZero      = "bin0"
	RoundingProportional = "proportional"
)

// DefaultBinWeights favours the weakest bins.
var DefaultBinWeights = []float64{0.35, 0.25, 0.15, 0.10, 0.08, 0.07}

type Term struct {
	ID            uint      `gorm:"primaryKey"`
	Question      string    `gorm:"not null;index" validate:"required"`
	Answer        string    `gorm:"not null" validate:"required"`
	CategoryID    *uint     `gorm:"index"`
	Category      *Category `gorm:"constraint:OnDelete:SET NULL"`
	Tags          []*Tag    `gorm:"many2many:term_tags"`
	Bin           int       `gorm:"not null;default:0;index" validate:"gte=0,lte=5"`
	ReversedBin   int       `gorm:"not null;default:0;index" validate:"gte=0,lte=5"`
	LastDrillTime *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Updated marks grade changes not yet written back.
	Updated bool `gorm:"-"`
}

// HasTag reports whether the term carries a tag with the given id.
func (t *Term) HasTag(tagID uint) bool {
	for _, tag := range t.Tags {
		if tag != nil && tag.ID == tagID {
			return true
		}
	}
	return false
}

type Category struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"not null;uniqueIndex" validate:"required"`
}

type Tag struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"not null" validate:"required"`
	// Key is the lower-cased name and makes tags unique case-insensitively.
	Key string `gorm:"column:name_key;not null;uniqueIndex"`
}

type Preferences struct {
	ID               uint      `gorm:"primaryKey"`
	QuestionCount    int       `gorm:"not null" validate:"gt=0"`
	SpacedRepetition bool      `gorm:"not null"`
	ReversedDrill    bool      `gorm:"not null"`
	BinWeights       []float64 `gorm:"serializer:json" validate:"len=6,dive,gte=0"`
	RoundingMode     string    `gorm:"not null" validate:"oneof=bin0 proportional"`
	UpdatedAt        time.Time
}

func DefaultPreferences() Preferences {
	weights := make([]float64, len(DefaultBinWeights))
	copy(weights, DefaultBinWeights)
	return Preferences{
		QuestionCount:    DefaultQuestionCount,
		SpacedRepetition: true,
		ReversedDrill:    false,
		BinWeights:       weights,
		RoundingMode:     RoundingBinZero,
	}
}

func (p Preferences) GetQuestionCount() int {
	if p.QuestionCount <= 0 {
		return DefaultQuestionCount
	}
	return p.QuestionCount
}

func (p Preferences) GetSpacedRepetition() bool {
	return p.SpacedRepetition
}

func (p Preferences) GetReversedDrill() bool {
	return p.ReversedDrill
}

// GetBinDistribution returns the six bin weights, falling back to the
// defaults when the stored slice is malformed.
func (p Preferences) GetBinDistribution() [BinSize]float64 {
	var out [BinSize]float64
	src := p.BinWeights
	if len(src) != BinSize {
		src = DefaultBinWeights
	}
	copy(out[:], src)
	return out
}

package drill

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/smith3v/lexilogio/pkg/db"
	"github.com/smith3v/lexilogio/pkg/logger"
)

// Source is the slice of the term repository the factory reads from.
type Source interface {
	AllTerms(ctx context.Context) ([]*db.Term, error)
	TermsInCategory(ctx context.Context, categoryID uint) ([]*db.Term, error)
	TermsWithTag(ctx context.Context, tagID uint) ([]*db.Term, error)
}

// FilterKind tells which pool a Filter selects.
type FilterKind int

const (
	FilterAll FilterKind = iota
	FilterCategory
	FilterTag
)

// Filter selects the candidate pool of a drill: every term, one category or
// one tag.
type Filter struct {
	kind FilterKind
	id   uint
}

func All() Filter                 { return Filter{kind: FilterAll} }
func ByCategory(id uint) Filter   { return Filter{kind: FilterCategory, id: id} }
func ByTag(id uint) Filter        { return Filter{kind: FilterTag, id: id} }
func (f Filter) Kind() FilterKind { return f.kind }
func (f Filter) ID() uint         { return f.id }

func (f Filter) String() string {
	switch f.kind {
	case FilterCategory:
		return fmt.Sprintf("category:%d", f.id)
	case FilterTag:
		return fmt.Sprintf("tag:%d", f.id)
	default:
		return "all"
	}
}

// FilterFor builds a filter from two optional references. Supplying both is an
// error.
func FilterFor(categoryID, tagID *uint) (Filter, error) {
	switch {
	case categoryID != nil && tagID != nil:
		return Filter{}, fmt.Errorf("%w: category and tag filters are mutually exclusive", ErrInvalidArgument)
	case categoryID != nil:
		return ByCategory(*categoryID), nil
	case tagID != nil:
		return ByTag(*tagID), nil
	default:
		return All(), nil
	}
}

func (f Filter) load(ctx context.Context, src Source) ([]*db.Term, error) {
	switch f.kind {
	case FilterCategory:
		return src.TermsInCategory(ctx, f.id)
	case FilterTag:
		return src.TermsWithTag(ctx, f.id)
	default:
		return src.AllTerms(ctx)
	}
}

// Config holds the drill parameters Make works from.
type Config struct {
	QuestionCount    int
	SpacedRepetition bool
	Reversed         bool
	BinWeights       [BinCount]float64
	Rounding         RoundingMode
}

// ConfigFromPreferences builds a Config from stored preferences and rejects an
// unknown rounding mode with ErrInvalidConfiguration.
func ConfigFromPreferences(prefs db.Preferences) (Config, error) {
	mode, err := ParseRoundingMode(prefs.RoundingMode)
	if err != nil {
		return Config{}, err
	}
	return Config{
		QuestionCount:    prefs.GetQuestionCount(),
		SpacedRepetition: prefs.GetSpacedRepetition(),
		Reversed:         prefs.GetReversedDrill(),
		BinWeights:       prefs.GetBinDistribution(),
		Rounding:         mode,
	}, nil
}

type options struct {
	rng *rand.Rand
	now func() time.Time
}

type Option func(*options)

// WithRand injects the random source used for sampling and shuffling.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithClock sets the clock used to stamp graded terms.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = newRand()
	}
	return o
}

// Make builds a drill from the terms matching filter. It returns a nil drill
// and no error when the pool is empty.
func Make(ctx context.Context, src Source, filter Filter, cfg Config, opts ...Option) (*Drill, error) {
	if cfg.QuestionCount <= 0 {
		return nil, fmt.Errorf("%w: question count must be positive, got %d", ErrInvalidConfiguration, cfg.QuestionCount)
	}
	o := buildOptions(opts)

	pool, err := filter.load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to load terms for %s: %w", filter, err)
	}
	if len(pool) == 0 {
		logger.Debug("no terms match drill filter", "filter", filter.String())
		return nil, nil
	}

	count := min(cfg.QuestionCount, len(pool))
	var selected []*db.Term
	if !cfg.SpacedRepetition {
		selected, err = Sample(o.rng, pool, count)
		if err != nil {
			return nil, err
		}
	} else {
		selected, err = sampleByBin(o.rng, pool, count, cfg)
		if err != nil {
			return nil, err
		}
	}
	Shuffle(o.rng, selected)

	return newDrill(selected, o.now), nil
}

func sampleByBin(rng *rand.Rand, pool []*db.Term, count int, cfg Config) ([]*db.Term, error) {
	bins := Partition(pool, cfg.Reversed)
	var available [BinCount]int
	for i := range bins {
		available[i] = len(bins[i])
	}

	quotas, err := PlanWithRounding(count, available, cfg.BinWeights, cfg.Rounding)
	if err != nil {
		return nil, err
	}
	logger.Debug("planned drill", "available", available, "quotas", quotas, "count", count, "reversed", cfg.Reversed)

	selected := make([]*db.Term, 0, count)
	for i := range bins {
		picked, err := Sample(rng, bins[i], min(quotas[i], available[i]))
		if err != nil {
			return nil, fmt.Errorf("bin %d: %w", i, err)
		}
		selected = append(selected, picked...)
	}
	return selected, nil
}

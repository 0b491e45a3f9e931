package drill

import (
	"fmt"
	"time"

	"github.com/smith3v/lexilogio/pkg/db"
)

// Drill is one review session. It borrows the terms it was built from: grading
// mutates them in memory and the caller persists UpdatedTerms when done.
type Drill struct {
	terms  []*db.Term
	cursor int
	now    func() time.Time
}

// New wraps an already selected term sequence in a drill.
func New(terms []*db.Term, opts ...Option) *Drill {
	o := buildOptions(opts)
	return newDrill(terms, o.now)
}

func newDrill(terms []*db.Term, now func() time.Time) *Drill {
	if now == nil {
		now = time.Now
	}
	return &Drill{terms: terms, now: now}
}

func (d *Drill) Len() int {
	return len(d.terms)
}

// Position is the zero-based cursor.
func (d *Drill) Position() int {
	return d.cursor
}

func (d *Drill) Terms() []*db.Term {
	out := make([]*db.Term, len(d.terms))
	copy(out, d.terms)
	return out
}

func (d *Drill) IsCompleted() bool {
	return d.cursor >= len(d.terms)
}

func (d *Drill) CurrentTerm() (*db.Term, error) {
	if d.cursor < 0 || d.cursor >= len(d.terms) {
		return nil, fmt.Errorf("%w: cursor %d outside drill of %d terms", ErrInvalidState, d.cursor, len(d.terms))
	}
	return d.terms[d.cursor], nil
}

func (d *Drill) Advance() {
	if !d.IsCompleted() {
		d.cursor++
	}
}

// Grade records value as the current term's bin for the given direction. The
// range is not checked here; see ValidGrade.
func (d *Drill) Grade(value int, reversed bool) error {
	term, err := d.CurrentTerm()
	if err != nil {
		return err
	}
	setBin(term, reversed, value)
	stamp := d.now().UTC()
	term.LastDrillTime = &stamp
	term.Updated = true
	return nil
}

// UpdatedTerms returns graded terms in session order.
func (d *Drill) UpdatedTerms() []*db.Term {
	var out []*db.Term
	for _, term := range d.terms {
		if term.Updated {
			out = append(out, term)
		}
	}
	return out
}

// MissedTerms returns the terms whose bin is at or below MissedBinThreshold.
func (d *Drill) MissedTerms(reversed bool) []*db.Term {
	var out []*db.Term
	for _, term := range d.terms {
		if BinOf(term, reversed) <= MissedBinThreshold {
			out = append(out, term)
		}
	}
	return out
}

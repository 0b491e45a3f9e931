package drill

import "github.com/smith3v/lexilogio/pkg/db"

const (
	// BinCount is the number of proficiency bins, 0 (unseen) to 5 (known).
	BinCount = db.BinSize

	// MissedBinThreshold is the highest bin still counted as missed.
	MissedBinThreshold = 2

	MinGrade = 1
	MaxGrade = 5
)

// BinOf returns the bin used for a term in the given drill direction.
func BinOf(term *db.Term, reversed bool) int {
	if reversed {
		return term.ReversedBin
	}
	return term.Bin
}

func setBin(term *db.Term, reversed bool, value int) {
	if reversed {
		term.ReversedBin = value
		return
	}
	term.Bin = value
}

// Sides returns the prompt and the expected response for a term.
func Sides(term *db.Term, reversed bool) (prompt, response string) {
	if reversed {
		return term.Answer, term.Question
	}
	return term.Question, term.Answer
}

// ValidGrade reports whether value is an accepted grade.
func ValidGrade(value int) bool {
	return value >= MinGrade && value <= MaxGrade
}

// Partition splits terms by bin for one drill direction. Out-of-range bins are
// clamped into [0, 5].
func Partition(terms []*db.Term, reversed bool) [BinCount][]*db.Term {
	var bins [BinCount][]*db.Term
	for _, term := range terms {
		bin := BinOf(term, reversed)
		if bin < 0 {
			bin = 0
		} else if bin >= BinCount {
			bin = BinCount - 1
		}
		bins[bin] = append(bins[bin], term)
	}
	return bins
}

package drill

import (
	"fmt"
	"math"
	"sort"

	"github.com/smith3v/lexilogio/pkg/db"
)

// RoundingMode selects how the planner reconciles ceiling quotas with the
// requested question count.
type RoundingMode int

const (
	// RoundToBinZero puts the whole rounding correction on bin 0.
	RoundToBinZero RoundingMode = iota
	// RoundProportional uses floors plus largest remainders.
	RoundProportional
)

// quotaEpsilon absorbs floating point noise in the weight sum so that an
// exact quota such as 2.0000000000000004 is not ceiled to 3.
const quotaEpsilon = 1e-9

func (m RoundingMode) String() string {
	if m == RoundProportional {
		return db.RoundingProportional
	}
	return db.RoundingBinZero
}

// ParseRoundingMode maps a stored preference value onto a RoundingMode. The
// empty string selects the default.
func ParseRoundingMode(value string) (RoundingMode, error) {
	switch value {
	case "", db.RoundingBinZero:
		return RoundToBinZero, nil
	case db.RoundingProportional:
		return RoundProportional, nil
	default:
		return RoundToBinZero, fmt.Errorf("%w: unknown rounding mode %q", ErrInvalidConfiguration, value)
	}
}

// Plan computes per-bin quotas with the default bin 0 rounding correction.
func Plan(questionCount int, available [BinCount]int, weights [BinCount]float64) ([BinCount]int, error) {
	return PlanWithRounding(questionCount, available, weights, RoundToBinZero)
}

// PlanWithRounding computes per-bin quotas that sum to questionCount and fit
// the available counts, provided questionCount <= sum(available).
func PlanWithRounding(questionCount int, available [BinCount]int, weights [BinCount]float64, mode RoundingMode) ([BinCount]int, error) {
	var quotas [BinCount]int
	if questionCount < 0 {
		return quotas, fmt.Errorf("%w: negative question count %d", ErrInvalidConfiguration, questionCount)
	}
	total := 0.0
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return quotas, fmt.Errorf("%w: bin %d weight %v", ErrInvalidConfiguration, i, w)
		}
		total += w
	}
	if total <= 0 {
		return quotas, fmt.Errorf("%w: bin weights sum to %v", ErrInvalidConfiguration, total)
	}

	var exact [BinCount]float64
	for i, w := range weights {
		exact[i] = float64(questionCount) * w / total
	}

	if mode == RoundProportional {
		quotas = roundProportional(questionCount, exact)
	} else {
		quotas = roundToBinZero(questionCount, exact)
	}

	// Forward pass: shortfalls move toward weaker bins.
	for i := BinCount - 1; i >= 1; i-- {
		if excess := quotas[i] - available[i]; excess > 0 {
			quotas[i-1] += excess
			quotas[i] = available[i]
		}
	}
	// Backward pass: what bin 0 and friends cannot cover moves up again.
	for i := 0; i < BinCount-1; i++ {
		if excess := quotas[i] - available[i]; excess > 0 {
			quotas[i+1] += excess
			quotas[i] = available[i]
		}
	}
	return quotas, nil
}

func roundToBinZero(questionCount int, exact [BinCount]float64) [BinCount]int {
	var quotas [BinCount]int
	sum := 0
	for i, v := range exact {
		quotas[i] = ceilQuota(v)
		sum += quotas[i]
	}
	for sum != questionCount {
		if sum < questionCount {
			quotas[0]++
			sum++
			continue
		}
		// Never drive a quota negative: when bin 0 is empty the decrement
		// falls to the weakest bin that still has something to give.
		for i := range quotas {
			if quotas[i] > 0 {
				quotas[i]--
				sum--
				break
			}
		}
	}
	return quotas
}

func roundProportional(questionCount int, exact [BinCount]float64) [BinCount]int {
	var quotas [BinCount]int
	order := make([]int, 0, BinCount)
	sum := 0
	for i, v := range exact {
		quotas[i] = floorQuota(v)
		sum += quotas[i]
		order = append(order, i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return exact[order[a]]-float64(quotas[order[a]]) > exact[order[b]]-float64(quotas[order[b]])
	})
	for k := 0; sum < questionCount; k++ {
		quotas[order[k%BinCount]]++
		sum++
	}
	for i := BinCount - 1; sum > questionCount; {
		if quotas[i] > 0 {
			quotas[i]--
			sum--
			continue
		}
		i--
	}
	return quotas
}

func ceilQuota(v float64) int {
	if r := math.Round(v); math.Abs(v-r) < quotaEpsilon {
		return int(r)
	}
	return int(math.Ceil(v))
}

func floorQuota(v float64) int {
	if r := math.Round(v); math.Abs(v-r) < quotaEpsilon {
		return int(r)
	}
	return int(math.Floor(v))
}

package drill

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

var defaultWeights = [BinCount]float64{0.35, 0.25, 0.15, 0.1, 0.08, 0.07}

func sumQuotas(q [BinCount]int) int {
	total := 0
	for _, v := range q {
		total += v
	}
	return total
}

func TestPlanRoundingCollapsesOntoBinZero(t *testing.T) {
	available := [BinCount]int{10, 10, 10, 10, 10, 10}
	got, err := Plan(25, available, defaultWeights)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	want := [BinCount]int{7, 7, 4, 3, 2, 2}
	if got != want {
		t.Fatalf("Plan = %v, want %v", got, want)
	}
}

func TestPlanStarvedBinsRedistribute(t *testing.T) {
	available := [BinCount]int{0, 2, 10, 10, 10, 10}
	got, err := Plan(10, available, defaultWeights)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	want := [BinCount]int{0, 2, 5, 1, 1, 1}
	if got != want {
		t.Fatalf("Plan = %v, want %v", got, want)
	}
}

func TestPlanStarvedBinsAnyWeights(t *testing.T) {
	available := [BinCount]int{0, 2, 10, 10, 10, 10}
	weightSets := [][BinCount]float64{
		{1, 1, 1, 1, 1, 1},
		{5, 0, 0, 0, 0, 0},
		{0.9, 0.05, 0.01, 0.01, 0.01, 0.02},
		{0, 0, 0, 0, 0, 3},
	}
	for _, weights := range weightSets {
		got, err := Plan(10, available, weights)
		if err != nil {
			t.Fatalf("Plan(%v) returned error: %v", weights, err)
		}
		if sumQuotas(got) != 10 {
			t.Fatalf("Plan(%v) = %v, sum %d", weights, got, sumQuotas(got))
		}
		for i := range got {
			if got[i] > available[i] || got[i] < 0 {
				t.Fatalf("Plan(%v) = %v exceeds availability %v at bin %d", weights, got, available, i)
			}
		}
	}
}

func TestPlanDecrementNeverGoesNegative(t *testing.T) {
	available := [BinCount]int{5, 5, 5, 5, 5, 5}
	got, err := Plan(3, available, [BinCount]float64{0, 1, 1, 0, 0, 0})
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	want := [BinCount]int{0, 1, 2, 0, 0, 0}
	if got != want {
		t.Fatalf("Plan = %v, want %v", got, want)
	}
}

func TestPlanProportionalRounding(t *testing.T) {
	available := [BinCount]int{10, 10, 10, 10, 10, 10}
	got, err := PlanWithRounding(25, available, defaultWeights, RoundProportional)
	if err != nil {
		t.Fatalf("PlanWithRounding returned error: %v", err)
	}
	want := [BinCount]int{9, 6, 4, 2, 2, 2}
	if got != want {
		t.Fatalf("PlanWithRounding = %v, want %v", got, want)
	}
}

func TestPlanZeroCount(t *testing.T) {
	got, err := Plan(0, [BinCount]int{}, defaultWeights)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if got != ([BinCount]int{}) {
		t.Fatalf("expected empty plan, got %v", got)
	}
}

func TestPlanRejectsInvalidConfiguration(t *testing.T) {
	available := [BinCount]int{10, 10, 10, 10, 10, 10}
	tests := []struct {
		name    string
		count   int
		weights [BinCount]float64
	}{
		{"zero weights", 5, [BinCount]float64{}},
		{"negative weight", 5, [BinCount]float64{1, -1, 1, 1, 1, 1}},
		{"negative sum", 5, [BinCount]float64{-1, 0, 0, 0, 0, 0}},
		{"nan weight", 5, [BinCount]float64{math.NaN(), 1, 1, 1, 1, 1}},
		{"infinite weight", 5, [BinCount]float64{math.Inf(1), 1, 1, 1, 1, 1}},
		{"negative count", -1, defaultWeights},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.count, available, tt.weights)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestPlanPropertiesHoldForRandomInputs(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for iter := 0; iter < 2000; iter++ {
		var available [BinCount]int
		var weights [BinCount]float64
		total := 0
		for i := range available {
			available[i] = rng.IntN(15)
			total += available[i]
			if rng.IntN(4) > 0 {
				weights[i] = rng.Float64()
			}
		}
		weights[rng.IntN(BinCount)] += 0.01
		count := 0
		if total > 0 {
			count = rng.IntN(total + 1)
		}

		for _, mode := range []RoundingMode{RoundToBinZero, RoundProportional} {
			got, err := PlanWithRounding(count, available, weights, mode)
			if err != nil {
				t.Fatalf("PlanWithRounding(%d, %v, %v, %v) returned error: %v", count, available, weights, mode, err)
			}
			if sumQuotas(got) != count {
				t.Fatalf("PlanWithRounding(%d, %v, %v, %v) = %v, sum %d", count, available, weights, mode, got, sumQuotas(got))
			}
			for i := range got {
				if got[i] < 0 || got[i] > available[i] {
					t.Fatalf("PlanWithRounding(%d, %v, %v, %v) = %v violates bin %d", count, available, weights, mode, got, i)
				}
			}
		}
	}
}

func TestParseRoundingMode(t *testing.T) {
	tests := []struct {
		input   string
		want    RoundingMode
		wantErr bool
	}{
		{"", RoundToBinZero, false},
		{"bin0", RoundToBinZero, false},
		{"proportional", RoundProportional, false},
		{"random", RoundToBinZero, true},
	}
	for _, tt := range tests {
		got, err := ParseRoundingMode(tt.input)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseRoundingMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseRoundingMode(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !tt.wantErr && tt.input != "" && got.String() != tt.input {
			t.Fatalf("round trip of %q produced %q", tt.input, got.String())
		}
	}
}

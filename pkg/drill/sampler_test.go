package drill

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestSampleReturnsDistinctMembers(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	pool := []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
	members := make(map[int]bool, len(pool))
	for _, v := range pool {
		members[v] = true
	}

	for count := 0; count <= len(pool); count++ {
		got, err := Sample(rng, pool, count)
		if err != nil {
			t.Fatalf("Sample(%d) returned error: %v", count, err)
		}
		if len(got) != count {
			t.Fatalf("Sample(%d) returned %d elements", count, len(got))
		}
		seen := make(map[int]bool, count)
		for _, v := range got {
			if !members[v] {
				t.Fatalf("Sample(%d) returned non-member %d", count, v)
			}
			if seen[v] {
				t.Fatalf("Sample(%d) returned duplicate %d", count, v)
			}
			seen[v] = true
		}
	}
}

func TestSampleFullPoolReturnsEverything(t *testing.T) {
	pool := []string{"a", "b", "c"}
	got, err := Sample(rand.New(rand.NewPCG(3, 4)), pool, len(pool))
	if err != nil {
		t.Fatalf("Sample returned error: %v", err)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("expected whole pool, got %v", got)
	}
	got[0] = "changed"
	if pool[0] != "a" {
		t.Fatal("Sample must return a copy of the pool")
	}
}

func TestSampleLeavesPoolOrderIntact(t *testing.T) {
	pool := []int{1, 2, 3, 4, 5, 6}
	if _, err := Sample(rand.New(rand.NewPCG(5, 6)), pool, 3); err != nil {
		t.Fatalf("Sample returned error: %v", err)
	}
	for i, v := range pool {
		if v != i+1 {
			t.Fatalf("pool was reordered: %v", pool)
		}
	}
}

func TestSampleRejectsOverDraw(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	if _, err := Sample(rng, []int{1, 2}, 3); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := Sample(rng, []int{1, 2}, -1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for negative count, got %v", err)
	}
}

func TestSampleCoversEveryIndex(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	pool := []int{0, 1, 2, 3, 4}
	hits := make([]int, len(pool))
	for i := 0; i < 500; i++ {
		got, err := Sample(rng, pool, 1)
		if err != nil {
			t.Fatalf("Sample returned error: %v", err)
		}
		hits[got[0]]++
	}
	for i, n := range hits {
		if n == 0 {
			t.Fatalf("index %d never drawn: %v", i, hits)
		}
	}
}

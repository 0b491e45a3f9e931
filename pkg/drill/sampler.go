package drill

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"
)

var seedCounter atomic.Uint64

// newRand returns a generator reseeded per call so consecutive sessions do not
// repeat each other.
func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), seedCounter.Add(1)))
}

// Sample draws count distinct elements of pool uniformly without replacement.
// The pool itself is left untouched.
func Sample[T any](rng *rand.Rand, pool []T, count int) ([]T, error) {
	if count < 0 || count > len(pool) {
		return nil, fmt.Errorf("%w: cannot sample %d of %d", ErrInvalidArgument, count, len(pool))
	}
	out := make([]T, 0, count)
	if count == len(pool) {
		return append(out, pool...), nil
	}

	// Partial Fisher-Yates over an index permutation.
	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < count; i++ {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out = append(out, pool[idx[i]])
	}
	return out, nil
}

// Shuffle permutes items in place.
func Shuffle[T any](rng *rand.Rand, items []T) {
	rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

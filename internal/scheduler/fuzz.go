package scheduler

import (
	"hash/fnv"
	"math"
	"math/rand"
	"strconv"
)

// fuzzFraction is the maximum relative jitter applied to an interval.
const fuzzFraction = 0.05

// fuzzSeed derives a deterministic jitter seed from the pair identity and
// repetition count. Determinism keeps Preview and Apply byte-identical on
// the same snapshot while still spreading different items apart.
func fuzzSeed(userID, itemID string, repetitions int) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(userID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(itemID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(strconv.Itoa(repetitions)))
	return int64(h.Sum64())
}

// applyFuzz jitters an interval by up to ±5% so cohorts of items reviewed
// together do not converge on the same due date. Intervals below minDays
// pass through unchanged.
func applyFuzz(days, minDays float64, seed int64) float64 {
	if days < minDays {
		return days
	}
	rng := rand.New(rand.NewSource(seed))
	jitter := (rng.Float64()*2 - 1) * fuzzFraction * days
	fuzzed := days + jitter
	return math.Max(fuzzed, minDays)
}

package scheduler

import (
	"math"
	"testing"
)

func TestApplyFuzzBelowMinimumUnchanged(t *testing.T) {
	for _, days := range []float64{0.01, 1, 2.9} {
		got := applyFuzz(days, 3, 42)
		assertFloat(t, "below-min fuzz", got, days)
	}
}

func TestApplyFuzzWithinFivePercent(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		days := 30.0
		got := applyFuzz(days, 3, seed)
		if math.Abs(got-days) > days*fuzzFraction+epsilon {
			t.Fatalf("seed %d: fuzz %v deviates more than 5%% from %v", seed, got, days)
		}
	}
}

func TestApplyFuzzDeterministic(t *testing.T) {
	a := applyFuzz(45, 3, 7)
	b := applyFuzz(45, 3, 7)
	assertFloat(t, "same seed", a, b)
}

func TestFuzzSeedDistinguishesPairs(t *testing.T) {
	if fuzzSeed("u1", "item", 0) == fuzzSeed("u2", "item", 0) {
		t.Error("different users should produce different seeds")
	}
	if fuzzSeed("u", "item", 0) == fuzzSeed("u", "item", 1) {
		t.Error("different repetition counts should produce different seeds")
	}
}

package scheduler

import (
	"math"

	"github.com/dotcommander/recall/internal/models"
)

// fsrs implements the FSRS v6 memory model. Decay and factor are
// precomputed from the 21-weight vector at construction.
type fsrs struct {
	w      []float64
	decay  float64 // -w[20]
	factor float64 // 0.9^(1/decay) - 1
}

func newFSRS(weights []float64) (*fsrs, error) {
	if len(weights) == 0 {
		weights = DefaultFSRSWeights
	}
	if err := ValidateFSRSWeights(weights); err != nil {
		return nil, err
	}
	w := make([]float64, FSRSWeightCount)
	copy(w, weights)
	decay := -w[20]
	return &fsrs{
		w:      w,
		decay:  decay,
		factor: math.Pow(0.9, 1.0/decay) - 1.0,
	}, nil
}

func (f *fsrs) Name() string { return StrategyFSRS }

// Retrievability computes R(t, S) = (1 + FACTOR * t / S) ^ DECAY.
func (f *fsrs) Retrievability(elapsedDays, stability float64) float64 {
	if stability <= 0 {
		return 0
	}
	return math.Pow(1+f.factor*elapsedDays/stability, f.decay)
}

// IntervalDays computes I(r, S) = (S / FACTOR) * (r^(1/DECAY) - 1).
func (f *fsrs) IntervalDays(stability, desiredRetention float64) float64 {
	return stability / f.factor * (math.Pow(desiredRetention, 1.0/f.decay) - 1)
}

// InitMemory applies the first-impression heuristic:
// S₀(G) = w[G-1], D₀(G) = w[4] - e^(w[5]*(G-1)) + 1, both clamped.
func (f *fsrs) InitMemory(r models.Rating) (float64, float64) {
	return clampStability(f.w[r-1]), clampDifficulty(f.initDifficulty(r))
}

func (f *fsrs) initDifficulty(r models.Rating) float64 {
	return f.w[4] - math.Exp(f.w[5]*float64(r-1)) + 1
}

// NextMemory updates stability and difficulty after a review. Same-day
// reviews (elapsed < 1) use the short-term stability rule; cross-day
// reviews branch on recall vs forget.
func (f *fsrs) NextMemory(stability, difficulty, elapsedDays, retrievability float64, r models.Rating) (float64, float64) {
	var s float64
	if elapsedDays < 1 {
		s = f.shortTermStability(stability, r)
	} else if r == models.Again {
		s = clampStability(f.forgetStability(difficulty, stability, retrievability))
	} else {
		s = clampStability(f.recallStability(difficulty, stability, retrievability, r))
	}
	return s, f.nextDifficulty(difficulty, r)
}

// shortTermStability computes the same-day review stability:
// SInc = e^(w[17] * (G - 3 + w[18])) * S^(-w[19]), floored at 1.0 for
// successful ratings.
func (f *fsrs) shortTermStability(stability float64, r models.Rating) float64 {
	sInc := math.Exp(f.w[17]*(float64(r)-3+f.w[18])) * math.Pow(stability, -f.w[19])
	if r == models.Good || r == models.Easy {
		sInc = math.Max(sInc, 1.0)
	}
	return clampStability(stability * sInc)
}

// recallStability computes stability after a successful recall:
// S' = S * (1 + e^w[8] * (11-D) * S^(-w[9]) * (e^((1-R)*w[10]) - 1) * hardPenalty * easyBonus)
func (f *fsrs) recallStability(d, s, r float64, rating models.Rating) float64 {
	hardPenalty := 1.0
	if rating == models.Hard {
		hardPenalty = f.w[15]
	}
	easyBonus := 1.0
	if rating == models.Easy {
		easyBonus = f.w[16]
	}
	return s * (1 + math.Exp(f.w[8])*
		(11-d)*
		math.Pow(s, -f.w[9])*
		(math.Exp((1-r)*f.w[10])-1)*
		hardPenalty*easyBonus)
}

// forgetStability computes stability after forgetting:
// min(w[11] * D^(-w[12]) * ((S+1)^w[13] - 1) * e^((1-R)*w[14]), S / e^(w[17]*w[18]))
func (f *fsrs) forgetStability(d, s, r float64) float64 {
	long := f.w[11] *
		math.Pow(d, -f.w[12]) *
		(math.Pow(s+1, f.w[13]) - 1) *
		math.Exp((1-r)*f.w[14])
	short := s / math.Exp(f.w[17]*f.w[18])
	return math.Min(long, short)
}

// nextDifficulty applies linear damping then mean reversion toward D₀(Easy):
// ΔD = -w[6]*(G-3); D' = D + (10-D)*ΔD/9; D'' = w[7]*D₀(Easy) + (1-w[7])*D'
func (f *fsrs) nextDifficulty(difficulty float64, r models.Rating) float64 {
	deltaD := -f.w[6] * (float64(r) - 3)
	dPrime := difficulty + (10-difficulty)*deltaD/9
	d0Easy := f.initDifficulty(models.Easy) // reversion target, unclamped
	return clampDifficulty(f.w[7]*d0Easy + (1-f.w[7])*dPrime)
}

// clampStability floors stability at 0.001 days.
func clampStability(s float64) float64 {
	return math.Max(s, 0.001)
}

// clampDifficulty constrains difficulty to [1, 10].
func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}

package optimizer

import (
	"math"

	"github.com/dotcommander/recall/internal/models"
	"github.com/dotcommander/recall/internal/scheduler"
)

const bceClamp = 1e-7

// bceLoss computes the binary cross-entropy -[y*ln(p) + (1-y)*ln(1-p)].
// The prediction is clamped to avoid log(0).
func bceLoss(rPred, y float64) float64 {
	p := math.Max(bceClamp, math.Min(rPred, 1-bceClamp))
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}

// computeBatchLoss replays each item's review history under the candidate
// weights and averages the BCE between predicted retrievability and the
// observed pass/fail label over cross-day reviews. Returns 0 when the
// weights cannot build an engine or there is nothing to score.
func computeBatchLoss(weights []float64, data map[string][]review) float64 {
	eng, err := scheduler.New(scheduler.Config{DisableFuzz: true}, weights)
	if err != nil {
		return 0
	}

	var totalLoss float64
	var count int

	for itemID, reviews := range data {
		st := models.NewMemoryState("fit", itemID, reviews[0].reviewedAt)
		for _, rev := range reviews {
			// Predicted recall probability before this review.
			rPred := eng.Retrievability(st, rev.reviewedAt)

			if !st.IsNew() && rev.elapsedDays >= 1.0 {
				totalLoss += bceLoss(rPred, rev.label)
				count++
			}

			next, _, applyErr := eng.Apply(st, rev.rating, rev.reviewedAt)
			if applyErr != nil {
				return 0
			}
			st = next
		}
	}

	if count == 0 {
		return 0
	}
	return totalLoss / float64(count)
}

const gradEps = 1e-5

// numericalGradient computes dL/dw via central differences. Probes are
// clamped into the weight bounds, so at a boundary the one-sided collapse
// yields a zero component rather than an invalid engine.
func numericalGradient(weights []float64, data map[string][]review) []float64 {
	grad := make([]float64, len(weights))
	for i := range weights {
		pPlus := scheduler.ClampFSRSWeights(perturb(weights, i, gradEps))
		pMinus := scheduler.ClampFSRSWeights(perturb(weights, i, -gradEps))

		lPlus := computeBatchLoss(pPlus, data)
		lMinus := computeBatchLoss(pMinus, data)

		grad[i] = (lPlus - lMinus) / (2 * gradEps)
	}
	return grad
}

func perturb(weights []float64, i int, delta float64) []float64 {
	out := make([]float64, len(weights))
	copy(out, weights)
	out[i] += delta
	return out
}

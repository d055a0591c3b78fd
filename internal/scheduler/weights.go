package scheduler

import (
	"fmt"

	"github.com/dotcommander/recall/internal/models"
)

// FSRSWeightCount is the length of an FSRS v6 weight vector.
const FSRSWeightCount = 21

// DefaultFSRSWeights are the FSRS v6 default parameter values
// from py-fsrs / fsrs4anki Wiki FSRS-6. They are the global fallback when a
// user has no fitted ParameterSet.
var DefaultFSRSWeights = []float64{
	0.212, 1.2931, 2.3065, 8.2956, // w[0..3]  initial stability S₀(G)
	6.4133, 0.8334, 3.0194, 0.001, // w[4..7]  difficulty params
	1.8722, 0.1666, 0.796, 1.4835, // w[8..11] recall stability params
	0.0614, 0.2629, 1.6483, 0.6014, // w[12..15] forget stability params
	1.8729, 0.5425, 0.0912, 0.0658, // w[16..19] easy/short-term params
	0.1542, // w[20] decay exponent
}

// FSRSLowerBounds defines the minimum allowed value for each weight.
var FSRSLowerBounds = []float64{
	0.001, 0.001, 0.001, 0.001,
	1.0, 0.001, 0.001, 0.001,
	0.0, 0.0, 0.001, 0.001,
	0.001, 0.001, 0.0, 0.0,
	1.0, 0.0, 0.0, 0.0,
	0.1,
}

// FSRSUpperBounds defines the maximum allowed value for each weight.
var FSRSUpperBounds = []float64{
	100.0, 100.0, 100.0, 100.0,
	10.0, 4.0, 4.0, 0.75,
	4.5, 0.8, 3.5, 5.0,
	0.25, 0.9, 4.0, 1.0,
	6.0, 2.0, 2.0, 0.8,
	0.8,
}

// ValidateFSRSWeights checks length and that every weight lies within
// [FSRSLowerBounds, FSRSUpperBounds].
func ValidateFSRSWeights(w []float64) error {
	if len(w) != FSRSWeightCount {
		return &models.ValidationError{
			Field:  "weights",
			Reason: fmt.Sprintf("expected %d weights, got %d", FSRSWeightCount, len(w)),
		}
	}
	for i := range w {
		if w[i] < FSRSLowerBounds[i] || w[i] > FSRSUpperBounds[i] {
			return &models.ValidationError{
				Field: "weights",
				Reason: fmt.Sprintf("w[%d] = %f outside bounds [%f, %f]",
					i, w[i], FSRSLowerBounds[i], FSRSUpperBounds[i]),
			}
		}
	}
	return nil
}

// ClampFSRSWeights constrains each weight to its bounds, returning a copy.
func ClampFSRSWeights(w []float64) []float64 {
	out := make([]float64, len(w))
	copy(out, w)
	for i := range out {
		if i >= FSRSWeightCount {
			break
		}
		if out[i] < FSRSLowerBounds[i] {
			out[i] = FSRSLowerBounds[i]
		}
		if out[i] > FSRSUpperBounds[i] {
			out[i] = FSRSUpperBounds[i]
		}
	}
	return out
}

package scheduler

import (
	"fmt"

	"github.com/dotcommander/recall/internal/models"
)

// Strategy names accepted in configuration.
const (
	StrategyFSRS = "fsrs"
	StrategySM2  = "sm2"
)

// Strategy is the pluggable memory-model update rule. The engine owns the
// state machine, interval clamps, and fuzz; a Strategy only answers the four
// numeric questions below. All methods are pure.
type Strategy interface {
	// Name returns the configuration name of the strategy.
	Name() string

	// InitMemory derives the first-impression (stability, difficulty) pair
	// for an item that has never been reviewed.
	InitMemory(r models.Rating) (stability, difficulty float64)

	// NextMemory computes the post-review (stability, difficulty) given the
	// prior pair, the elapsed days since the last review, the retrievability
	// at review time, and the rating.
	NextMemory(stability, difficulty, elapsedDays, retrievability float64, r models.Rating) (float64, float64)

	// Retrievability is the recall probability after elapsedDays at the
	// given stability. Must be monotonically non-increasing in elapsedDays.
	Retrievability(elapsedDays, stability float64) float64

	// IntervalDays inverts Retrievability: the number of days until recall
	// probability falls to desiredRetention.
	IntervalDays(stability, desiredRetention float64) float64
}

// NewStrategy constructs the named strategy. A nil or empty weight vector
// selects the strategy's defaults. Unknown names are a ValidationError.
func NewStrategy(name string, weights []float64) (Strategy, error) {
	switch name {
	case "", StrategyFSRS:
		return newFSRS(weights)
	case StrategySM2:
		return newSM2(), nil
	default:
		return nil, &models.ValidationError{
			Field:  "strategy",
			Reason: fmt.Sprintf("unknown strategy %q", name),
		}
	}
}

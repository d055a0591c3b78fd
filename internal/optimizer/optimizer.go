// Package optimizer fits per-user FSRS weight vectors from accumulated
// review history. Training is mini-batch gradient descent with Adam and a
// cosine annealing learning rate; gradients come from numerical central
// differences on binary cross-entropy loss.
//
// Fitting is a background concern: it never blocks a submission, and a fit
// that fails or lacks data leaves the previous ParameterSet untouched.
package optimizer

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/dotcommander/recall/internal/models"
	"github.com/dotcommander/recall/internal/scheduler"
)

// Config tunes the training process. Zero values receive defaults.
type Config struct {
	// MinReviews is the minimum total review count before a fit is
	// attempted; below it Fit reports no result. Zero → 100.
	MinReviews int
	// Epochs over the dataset. Zero → 5.
	Epochs int
	// MiniBatchSize in cross-day reviews per gradient step. Zero → 64.
	MiniBatchSize int
	// LearningRate for Adam. Zero → 0.04.
	LearningRate float64
	// MaxSeqLen truncates each item's review sequence. Zero → 64.
	MaxSeqLen int
}

func (c Config) withDefaults() Config {
	if c.MinReviews == 0 {
		c.MinReviews = 100
	}
	if c.Epochs == 0 {
		c.Epochs = 5
	}
	if c.MiniBatchSize == 0 {
		c.MiniBatchSize = 64
	}
	if c.LearningRate == 0 {
		c.LearningRate = 0.04
	}
	if c.MaxSeqLen == 0 {
		c.MaxSeqLen = 64
	}
	return c
}

// Optimizer trains FSRS weights from review events.
type Optimizer struct {
	cfg Config
}

// New creates an Optimizer with the given config.
func New(cfg Config) *Optimizer {
	return &Optimizer{cfg: cfg.withDefaults()}
}

// Fit trains a weight vector from one user's review events. It returns
// (nil, nil) when there is not enough data yet — that is a normal outcome,
// not an error. On success the returned vector is complete and within
// bounds; the caller replaces the user's ParameterSet wholesale.
// The context cancels long-running training between batches.
func (o *Optimizer) Fit(ctx context.Context, events []models.ReviewEvent) ([]float64, error) {
	if len(events) < o.cfg.MinReviews {
		return nil, nil
	}

	data := formatEvents(events)
	for itemID, reviews := range data {
		if len(reviews) > o.cfg.MaxSeqLen {
			data[itemID] = reviews[:o.cfg.MaxSeqLen]
		}
	}

	numCrossDay := countCrossDayReviews(data)
	if numCrossDay == 0 {
		return nil, nil
	}

	weights := append([]float64(nil), scheduler.DefaultFSRSWeights...)
	tMax := int(math.Ceil(float64(numCrossDay)/float64(o.cfg.MiniBatchSize))) * o.cfg.Epochs
	opt := newAdam(o.cfg.LearningRate, len(weights))
	ca := newCosineAnnealing(o.cfg.LearningRate, tMax)
	rng := rand.New(rand.NewSource(42))

	// Sorted item IDs for a deterministic shuffle.
	itemIDs := make([]string, 0, len(data))
	for id := range data {
		itemIDs = append(itemIDs, id)
	}
	sort.Strings(itemIDs)

	bestWeights := weights
	bestLoss := math.Inf(1)

	for epoch := 0; epoch < o.cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rng.Shuffle(len(itemIDs), func(i, j int) {
			itemIDs[i], itemIDs[j] = itemIDs[j], itemIDs[i]
		})

		batch := make(map[string][]review)
		crossDay := 0

		step := func() {
			grad := numericalGradient(weights, batch)
			opt.setLR(ca.lr())
			weights = scheduler.ClampFSRSWeights(opt.update(weights, grad))
			ca.advance()
		}

		for _, itemID := range itemIDs {
			reviews := data[itemID]
			batch[itemID] = reviews
			for _, r := range reviews {
				if r.elapsedDays >= 1.0 {
					crossDay++
				}
			}

			if crossDay >= o.cfg.MiniBatchSize {
				step()
				batch = make(map[string][]review)
				crossDay = 0
			}
		}
		if crossDay > 0 {
			step()
		}

		epochLoss := computeBatchLoss(weights, data)
		if epochLoss < bestLoss {
			bestLoss = epochLoss
			bestWeights = weights
		}
	}

	if err := scheduler.ValidateFSRSWeights(bestWeights); err != nil {
		return nil, &models.ComputationError{Op: "optimizer.Fit", Detail: err.Error()}
	}
	return bestWeights, nil
}

// Loss scores a weight vector against review events with the training
// loss. Useful for comparing a fitted vector to the defaults.
func (o *Optimizer) Loss(weights []float64, events []models.ReviewEvent) float64 {
	return computeBatchLoss(weights, formatEvents(events))
}

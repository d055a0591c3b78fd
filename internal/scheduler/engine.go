package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/dotcommander/recall/internal/models"
)

// Config is the immutable scheduling configuration. It is resolved once by
// the caller (from settings and the effective ParameterSet) and passed in;
// the engine never reads global state. Zero values produce the defaults
// noted on each field.
type Config struct {
	Strategy         string        // zero → "fsrs"
	DesiredRetention float64       // zero → 0.9; must be in (0, 1)
	IntervalFloor    time.Duration // zero → 20m
	IntervalCeiling  time.Duration // zero → 365 days
	// GraduationThreshold is the computed interval at which a learning-phase
	// item graduates to Review. Zero → 24h.
	GraduationThreshold time.Duration
	DisableFuzz         bool    // zero → fuzz enabled
	FuzzMinDays         float64 // zero → 3; fuzz applies only above this
}

func (c Config) withDefaults() Config {
	if c.Strategy == "" {
		c.Strategy = StrategyFSRS
	}
	if c.DesiredRetention == 0 {
		c.DesiredRetention = 0.9
	}
	if c.IntervalFloor == 0 {
		c.IntervalFloor = 20 * time.Minute
	}
	if c.IntervalCeiling == 0 {
		c.IntervalCeiling = 365 * 24 * time.Hour
	}
	if c.GraduationThreshold == 0 {
		c.GraduationThreshold = 24 * time.Hour
	}
	if c.FuzzMinDays == 0 {
		c.FuzzMinDays = 3
	}
	return c
}

// Engine applies graded outcomes to MemoryState. All methods are pure and
// safe for concurrent use; persistence belongs to the caller.
type Engine struct {
	strat Strategy
	cfg   Config
}

// New creates an Engine for the configured strategy. A nil weight vector
// selects the strategy defaults (the global fallback ParameterSet).
func New(cfg Config, weights []float64) (*Engine, error) {
	cfg = cfg.withDefaults()
	if cfg.DesiredRetention <= 0 || cfg.DesiredRetention >= 1 {
		return nil, &models.ValidationError{
			Field:  "desired_retention",
			Reason: fmt.Sprintf("%f out of range (0, 1)", cfg.DesiredRetention),
		}
	}
	if cfg.IntervalFloor > cfg.IntervalCeiling {
		return nil, &models.ValidationError{
			Field:  "interval_floor",
			Reason: "floor exceeds ceiling",
		}
	}
	strat, err := NewStrategy(cfg.Strategy, weights)
	if err != nil {
		return nil, err
	}
	return &Engine{strat: strat, cfg: cfg}, nil
}

// Config returns the resolved configuration.
func (e *Engine) Config() Config { return e.cfg }

// Result is the log payload accompanying an Apply.
type Result struct {
	PrevState models.State `json:"prev_state"`
	// ElapsedDays since the previous review; 0 for a first review.
	ElapsedDays float64 `json:"elapsed_days"`
	// Retrievability at the moment of review, before the update.
	Retrievability float64 `json:"retrievability"`
	// IntervalDays is the scheduled interval after clamping and fuzz.
	IntervalDays float64       `json:"interval_days"`
	Interval     time.Duration `json:"-"`
}

// Apply computes the next MemoryState for a graded outcome at the given
// time. The input state is not mutated. Invariants on the output: stability
// > 0, difficulty in [1, 10], interval in [floor, ceiling], repetitions
// incremented by one.
func (e *Engine) Apply(st models.MemoryState, r models.Rating, now time.Time) (models.MemoryState, Result, error) {
	if !r.IsValid() {
		return models.MemoryState{}, Result{}, &models.ValidationError{
			Field:  "rating",
			Reason: fmt.Sprintf("rating %d outside [1, 4]", int(r)),
		}
	}

	res := Result{PrevState: st.State}

	var elapsed float64
	if st.LastReviewedAt != nil {
		elapsed = now.Sub(*st.LastReviewedAt).Hours() / 24.0
		if elapsed < 0 {
			elapsed = 0
		}
	}
	res.ElapsedDays = elapsed
	res.Retrievability = e.Retrievability(st, now)

	var stability, difficulty float64
	if st.IsNew() {
		stability, difficulty = e.strat.InitMemory(r)
	} else {
		stability, difficulty = e.strat.NextMemory(st.Stability, st.Difficulty, elapsed, res.Retrievability, r)
	}
	if !isFinitePositive(stability) || !isFinite(difficulty) {
		return models.MemoryState{}, Result{}, &models.ComputationError{
			Op:     e.strat.Name() + ".NextMemory",
			Detail: fmt.Sprintf("non-finite result: stability=%v difficulty=%v", stability, difficulty),
		}
	}
	stability = clampStability(stability)
	difficulty = clampDifficulty(difficulty)

	days := e.strat.IntervalDays(stability, e.cfg.DesiredRetention)
	if math.IsNaN(days) || math.IsInf(days, 0) {
		return models.MemoryState{}, Result{}, &models.ComputationError{
			Op:     e.strat.Name() + ".IntervalDays",
			Detail: fmt.Sprintf("non-finite interval for stability=%v", stability),
		}
	}
	if !e.cfg.DisableFuzz {
		days = applyFuzz(days, e.cfg.FuzzMinDays, fuzzSeed(st.UserID, st.ItemID, st.Repetitions))
	}

	interval := time.Duration(days * 24 * float64(time.Hour))
	if interval < e.cfg.IntervalFloor {
		interval = e.cfg.IntervalFloor
	}
	if interval > e.cfg.IntervalCeiling {
		interval = e.cfg.IntervalCeiling
	}
	res.IntervalDays = interval.Hours() / 24.0
	res.Interval = interval

	out := st
	out.Stability = stability
	out.Difficulty = difficulty
	out.State = e.nextState(st.State, r, interval)
	if st.State == models.StateReview && r == models.Again {
		out.Lapses++
	}
	out.Repetitions++
	due := now.Add(interval)
	last := now
	out.DueAt = &due
	out.LastReviewedAt = &last
	out.UpdatedAt = now

	return out, res, nil
}

// nextState applies the state machine. Learning-phase items (and new ones)
// graduate when the computed interval reaches the graduation threshold; a
// lapse from Review always lands in Relearning.
func (e *Engine) nextState(prev models.State, r models.Rating, interval time.Duration) models.State {
	if prev == models.StateReview {
		if r == models.Again {
			return models.StateRelearning
		}
		return models.StateReview
	}
	if interval >= e.cfg.GraduationThreshold {
		return models.StateReview
	}
	if prev == models.StateRelearning {
		return models.StateRelearning
	}
	return models.StateLearning
}

// Projection is the outcome of a hypothetical review with one rating.
type Projection struct {
	Rating         models.Rating `json:"rating"`
	State          models.State  `json:"state"`
	Stability      float64       `json:"stability"`
	Difficulty     float64       `json:"difficulty"`
	IntervalDays   float64       `json:"interval_days"`
	DueAt          time.Time     `json:"due_at"`
	Retrievability float64       `json:"retrievability"`
}

// Preview computes the Apply transformation for every rating without
// persisting anything. Because Apply is deterministic for a given snapshot,
// a Preview followed by a submission of the same rating yields an identical
// MemoryState.
func (e *Engine) Preview(st models.MemoryState, now time.Time) (map[models.Rating]Projection, error) {
	out := make(map[models.Rating]Projection, 4)
	for _, r := range models.Ratings() {
		next, res, err := e.Apply(st, r, now)
		if err != nil {
			return nil, err
		}
		out[r] = Projection{
			Rating:         r,
			State:          next.State,
			Stability:      next.Stability,
			Difficulty:     next.Difficulty,
			IntervalDays:   res.IntervalDays,
			DueAt:          *next.DueAt,
			Retrievability: res.Retrievability,
		}
	}
	return out, nil
}

// Retrievability returns the recall probability for the state at the given
// time. Never-reviewed items are 0: an item with no review history carries
// no recall evidence. Display paths that want the optimistic read-through
// convention use DisplayRetrievability.
func (e *Engine) Retrievability(st models.MemoryState, now time.Time) float64 {
	if st.IsNew() || st.Stability <= 0 {
		return 0
	}
	elapsed := now.Sub(*st.LastReviewedAt).Hours() / 24.0
	if elapsed <= 0 {
		return 1.0
	}
	return e.strat.Retrievability(elapsed, st.Stability)
}

// DisplayRetrievability is the optimistic variant for read-through display
// contexts: a never-reviewed item shows 1.0 (nothing has been forgotten
// yet). Aggregate statistics must use Retrievability instead.
func (e *Engine) DisplayRetrievability(st models.MemoryState, now time.Time) float64 {
	if st.IsNew() {
		return 1.0
	}
	return e.Retrievability(st, now)
}

// Replay rebuilds a MemoryState from scratch by applying an ordered slice
// of review events. Events must belong to a single (user, item) pair.
func (e *Engine) Replay(userID, itemID string, events []models.ReviewEvent, createdAt time.Time) (models.MemoryState, error) {
	st := models.NewMemoryState(userID, itemID, createdAt)
	for _, ev := range events {
		if ev.UserID != userID || ev.ItemID != itemID {
			return models.MemoryState{}, &models.ValidationError{
				Field:  "events",
				Reason: fmt.Sprintf("event %d belongs to (%s, %s), not (%s, %s)", ev.ID, ev.UserID, ev.ItemID, userID, itemID),
			}
		}
		next, _, err := e.Apply(st, ev.Rating, ev.ReviewedAt)
		if err != nil {
			return models.MemoryState{}, err
		}
		st = next
	}
	return st, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isFinitePositive(v float64) bool {
	return isFinite(v) && v > 0
}

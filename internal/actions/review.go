// Package actions is the transactional entry point of the engine. Each
// function resolves configuration and the user's fitted parameters, runs
// the pure computations, and commits state plus the append-only log in a
// single transaction.
package actions

import (
	"database/sql"
	"time"

	"github.com/dotcommander/recall/internal/app"
	"github.com/dotcommander/recall/internal/balance"
	"github.com/dotcommander/recall/internal/models"
	"github.com/dotcommander/recall/internal/normalize"
	"github.com/dotcommander/recall/internal/optimizer"
	"github.com/dotcommander/recall/internal/scheduler"
	"github.com/dotcommander/recall/internal/store"
)

// Deps bundles the resolved configuration for one orchestrator call.
// Resolving once per call keeps the computations pure: nothing below this
// layer reads settings mid-flight.
type Deps struct {
	Scheduler scheduler.Config
	Normalize normalize.Config
	Balance   balance.Config
	Optimizer optimizer.Config
}

// DefaultDeps resolves Deps from the loaded settings.
func DefaultDeps() Deps {
	return Deps{
		Scheduler: app.EffectiveSchedulerConfig(),
		Normalize: app.EffectiveNormalizeConfig(),
		Balance:   app.EffectiveBalanceConfig(),
		Optimizer: app.EffectiveOptimizerConfig(),
	}
}

// SubmitRequest identifies one activity result to apply.
type SubmitRequest struct {
	UserID       string
	ItemID       string
	CollectionID string // optional; selects a per-collection parameter override
	Mode         models.Mode
	Outcome      models.Outcome
	Now          time.Time
}

func (r SubmitRequest) validate() error {
	if r.UserID == "" {
		return &models.ValidationError{Field: "user", Reason: "user id is required"}
	}
	if r.ItemID == "" {
		return &models.ValidationError{Field: "item", Reason: "item id is required"}
	}
	if !r.Mode.IsValid() {
		return &models.ValidationError{Field: "mode", Reason: "unknown mode " + string(r.Mode)}
	}
	return nil
}

// newEngine builds a scheduling engine with the user's effective weights.
// A fitted ParameterSet only applies when it was trained for the strategy
// in use; otherwise the strategy's defaults hold.
func newEngine(db *sql.DB, deps Deps, userID, collectionID string) (*scheduler.Engine, error) {
	ps, err := store.GetEffectiveParameterSet(db, userID, collectionID)
	if err != nil {
		return nil, &models.PersistenceError{Op: "actions.newEngine", Err: err}
	}

	strategy := deps.Scheduler.Strategy
	if strategy == "" {
		strategy = scheduler.StrategyFSRS
	}
	var weights []float64
	if ps != nil && ps.Strategy == strategy {
		weights = ps.Weights
	}
	return scheduler.New(deps.Scheduler, weights)
}

// txDueCounter satisfies balance.DueCounter inside an open transaction.
type txDueCounter struct {
	tx *sql.Tx
}

func (c txDueCounter) CountDueOn(userID string, date time.Time) (int, error) {
	return store.CountDueOnTx(c.tx, userID, date)
}

// SubmitReview applies one activity outcome: normalize the result to a
// canonical rating, update the memory state, balance the due date, and
// append the log entry — all in one transaction. Count-only modes update
// streaks and extension counters without touching the schedule or the log.
//
// Errors: a ValidationError or ComputationError means nothing was written.
// A PersistenceError means computation succeeded but the write failed;
// the caller must treat the review as not applied and may retry.
func SubmitReview(db *sql.DB, deps Deps, req SubmitRequest) (models.MemoryState, models.ReviewSummary, error) {
	if err := req.validate(); err != nil {
		return models.MemoryState{}, models.ReviewSummary{}, err
	}

	norm, err := normalize.Normalize(deps.Normalize, req.Mode, req.Outcome)
	if err != nil {
		return models.MemoryState{}, models.ReviewSummary{}, err
	}

	eng, err := newEngine(db, deps, req.UserID, req.CollectionID)
	if err != nil {
		return models.MemoryState{}, models.ReviewSummary{}, err
	}

	var (
		finalState models.MemoryState
		summary    models.ReviewSummary
	)
	txErr := store.Transact(db, func(tx *sql.Tx) error {
		st, err := store.LoadOrCreateMemoryStateTx(tx, req.UserID, req.ItemID, req.Now)
		if err != nil {
			return err
		}

		if req.Mode.ScheduleAffecting() {
			next, res, err := eng.Apply(st, norm.Rating, req.Now)
			if err != nil {
				return err
			}

			balancer := balance.New(txDueCounter{tx}, deps.Balance)
			balanced, err := balancer.Balance(*next.DueAt, req.UserID, req.ItemID, norm.Rating, req.Now)
			if err != nil {
				return err
			}
			next.DueAt = &balanced

			bumpCounters(&next, req.Mode, norm.Correct, req.Now)
			applyStreaks(&next, norm.Correct)
			if err := store.UpsertMemoryStateTx(tx, next); err != nil {
				return err
			}

			if _, err := store.InsertReviewEventTx(tx, models.ReviewEvent{
				UserID:        req.UserID,
				ItemID:        req.ItemID,
				Rating:        norm.Rating,
				Mode:          req.Mode,
				Correct:       norm.Correct,
				ElapsedDays:   res.ElapsedDays,
				ScheduledDays: res.IntervalDays,
				Stability:     next.Stability,
				Difficulty:    next.Difficulty,
				DurationMs:    req.Outcome.DurationMs,
				ReviewedAt:    req.Now,
			}); err != nil {
				return err
			}

			finalState = next
			summary = models.ReviewSummary{
				Rating:            norm.Rating,
				Correct:           norm.Correct,
				ScheduleAffecting: true,
				Retrievability:    res.Retrievability,
				CorrectStreak:     next.CorrectStreak,
				IncorrectStreak:   next.IncorrectStreak,
				State:             next.State,
				DueAt:             next.DueAt,
				IntervalDays:      res.IntervalDays,
			}
			return nil
		}

		// Count-only mode: the schedule and the log stay untouched.
		retr := eng.Retrievability(st, req.Now)
		bumpCounters(&st, req.Mode, norm.Correct, req.Now)
		applyStreaks(&st, norm.Correct)
		st.UpdatedAt = req.Now
		if err := store.UpsertMemoryStateTx(tx, st); err != nil {
			return err
		}

		finalState = st
		summary = models.ReviewSummary{
			Rating:            norm.Rating,
			Correct:           norm.Correct,
			ScheduleAffecting: false,
			Retrievability:    retr,
			CorrectStreak:     st.CorrectStreak,
			IncorrectStreak:   st.IncorrectStreak,
			State:             st.State,
			DueAt:             st.DueAt,
		}
		return nil
	})
	if txErr != nil {
		return models.MemoryState{}, models.ReviewSummary{}, wrapStoreErr("actions.SubmitReview", txErr)
	}

	return finalState, summary, nil
}

// applyStreaks enforces the mutual exclusion of the streak counters: a
// correct answer resets the incorrect streak and vice versa.
func applyStreaks(st *models.MemoryState, correct bool) {
	if correct {
		st.CorrectStreak++
		st.IncorrectStreak = 0
	} else {
		st.IncorrectStreak++
		st.CorrectStreak = 0
	}
}

// bumpCounters records a count-only repeat in the typed extension record.
func bumpCounters(st *models.MemoryState, mode models.Mode, correct bool, now time.Time) {
	switch mode {
	case models.ModePractice, models.ModeGame:
		st.Extension.Practice.Count++
		st.Extension.Practice.LastAt = now.UTC().Format(time.RFC3339)
	case models.ModeQuiz:
		st.Extension.Quiz.Attempts++
		if correct {
			st.Extension.Quiz.Correct++
		}
	}
}

// wrapStoreErr passes structured engine errors through untouched and wraps
// raw store failures as PersistenceError.
func wrapStoreErr(op string, err error) error {
	switch err.(type) {
	case *models.ValidationError, *models.NotFoundError, *models.ComputationError, *models.PersistenceError:
		return err
	}
	return &models.PersistenceError{Op: op, Err: err}
}

package actions

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/dotcommander/recall/internal/models"
	"github.com/dotcommander/recall/internal/optimizer"
	"github.com/dotcommander/recall/internal/scheduler"
	"github.com/dotcommander/recall/internal/store"
)

// FitParameters trains a weight vector from the user's review history and
// replaces their ParameterSet. Returns (nil, nil) when the history is too
// small to fit — the previous set (or the global default) stays in effect.
// Fitting never runs inside a submission; a failed fit leaves scheduling
// untouched.
func FitParameters(ctx context.Context, db *sql.DB, deps Deps, userID, collectionID string) (*models.ParameterSet, error) {
	if userID == "" {
		return nil, &models.ValidationError{Field: "user", Reason: "user id is required"}
	}

	events, err := store.ListReviewEvents(db, userID)
	if err != nil {
		return nil, &models.PersistenceError{Op: "actions.FitParameters", Err: err}
	}

	opt := optimizer.New(deps.Optimizer)
	weights, err := opt.Fit(ctx, events)
	if err != nil {
		return nil, err
	}
	if weights == nil {
		slog.Info("parameter fit skipped",
			"user", userID,
			"events", len(events),
			"reason", "insufficient history")
		return nil, nil
	}

	var ps *models.ParameterSet
	txErr := store.Transact(db, func(tx *sql.Tx) error {
		var replaceErr error
		ps, replaceErr = store.ReplaceParameterSetTx(tx, userID, collectionID, scheduler.StrategyFSRS, weights, len(events))
		return replaceErr
	})
	if txErr != nil {
		return nil, wrapStoreErr("actions.FitParameters", txErr)
	}

	slog.Info("parameter fit complete",
		"user", userID,
		"collection", collectionID,
		"trained_on", ps.TrainedOn)
	return ps, nil
}

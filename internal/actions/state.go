package actions

import (
	"database/sql"
	"time"

	"github.com/dotcommander/recall/internal/models"
	"github.com/dotcommander/recall/internal/store"
)

// StateView is a MemoryState together with its display retrievability,
// the optimistic read-through convention (1.0 for never-reviewed items).
type StateView struct {
	models.MemoryState
	Retrievability float64 `json:"retrievability"`
}

// GetState reads the state for (user, item), default-constructing a New
// state when no row exists.
func GetState(db *sql.DB, deps Deps, userID, itemID string, now time.Time) (StateView, error) {
	if userID == "" {
		return StateView{}, &models.ValidationError{Field: "user", Reason: "user id is required"}
	}
	if itemID == "" {
		return StateView{}, &models.ValidationError{Field: "item", Reason: "item id is required"}
	}

	st, err := store.GetMemoryState(db, userID, itemID, now)
	if err != nil {
		return StateView{}, &models.PersistenceError{Op: "actions.GetState", Err: err}
	}

	eng, err := newEngine(db, deps, userID, "")
	if err != nil {
		return StateView{}, err
	}
	return StateView{MemoryState: st, Retrievability: eng.DisplayRetrievability(st, now)}, nil
}

// BatchGetStates reads many item states at once; absent rows come back as
// the lazy New default so every requested id is present.
func BatchGetStates(db *sql.DB, deps Deps, userID string, itemIDs []string, now time.Time) (map[string]StateView, error) {
	if userID == "" {
		return nil, &models.ValidationError{Field: "user", Reason: "user id is required"}
	}

	states, err := store.BatchGetMemoryStates(db, userID, itemIDs, now)
	if err != nil {
		return nil, &models.PersistenceError{Op: "actions.BatchGetStates", Err: err}
	}

	eng, err := newEngine(db, deps, userID, "")
	if err != nil {
		return nil, err
	}

	out := make(map[string]StateView, len(states))
	for id, st := range states {
		out[id] = StateView{MemoryState: st, Retrievability: eng.DisplayRetrievability(st, now)}
	}
	return out, nil
}

// RebuildState replays the item's review log through the engine and
// persists the result, repairing a desynchronized or lost state row. The
// stored extension counters and streaks are kept; only the scheduling
// fields are recomputed.
func RebuildState(db *sql.DB, deps Deps, userID, itemID string, now time.Time) (models.MemoryState, error) {
	if userID == "" {
		return models.MemoryState{}, &models.ValidationError{Field: "user", Reason: "user id is required"}
	}
	if itemID == "" {
		return models.MemoryState{}, &models.ValidationError{Field: "item", Reason: "item id is required"}
	}

	events, err := store.ListItemReviewEvents(db, userID, itemID)
	if err != nil {
		return models.MemoryState{}, &models.PersistenceError{Op: "actions.RebuildState", Err: err}
	}
	if len(events) == 0 {
		return models.MemoryState{}, &models.NotFoundError{Entity: "review history", UserID: userID, ItemID: itemID}
	}

	eng, err := newEngine(db, deps, userID, "")
	if err != nil {
		return models.MemoryState{}, err
	}

	rebuilt, err := eng.Replay(userID, itemID, events, events[0].ReviewedAt)
	if err != nil {
		return models.MemoryState{}, err
	}

	var final models.MemoryState
	txErr := store.Transact(db, func(tx *sql.Tx) error {
		existing, err := store.GetMemoryStateTx(tx, userID, itemID)
		if err != nil {
			return err
		}
		if existing != nil {
			rebuilt.Extension = existing.Extension
			rebuilt.CorrectStreak = existing.CorrectStreak
			rebuilt.IncorrectStreak = existing.IncorrectStreak
			rebuilt.CreatedAt = existing.CreatedAt
		}
		rebuilt.UpdatedAt = now
		if err := store.UpsertMemoryStateTx(tx, rebuilt); err != nil {
			return err
		}
		final = rebuilt
		return nil
	})
	if txErr != nil {
		return models.MemoryState{}, wrapStoreErr("actions.RebuildState", txErr)
	}
	return final, nil
}

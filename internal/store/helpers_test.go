package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/dotcommander/recall/internal/models"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	tempDir := t.TempDir()
	testDBPath := tempDir + "/test.db"

	db, err := InitDBWithPath(testDBPath)
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	cleanup := func() {
		_ = db.Close()
	}

	return db, cleanup
}

// upsertState writes a state row inside a transaction.
func upsertState(t *testing.T, db *sql.DB, st models.MemoryState) {
	t.Helper()
	if err := Transact(db, func(tx *sql.Tx) error {
		return UpsertMemoryStateTx(tx, st)
	}); err != nil {
		t.Fatalf("upsertState(%s/%s): %v", st.UserID, st.ItemID, err)
	}
}

// insertEvent appends a review event inside a transaction.
func insertEvent(t *testing.T, db *sql.DB, ev models.ReviewEvent) int64 {
	t.Helper()
	var id int64
	if err := Transact(db, func(tx *sql.Tx) error {
		var txErr error
		id, txErr = InsertReviewEventTx(tx, ev)
		return txErr
	}); err != nil {
		t.Fatalf("insertEvent(%s/%s): %v", ev.UserID, ev.ItemID, err)
	}
	return id
}

// reviewedState builds a state row due at the given time.
func reviewedState(userID, itemID string, state models.State, dueAt, now time.Time) models.MemoryState {
	st := models.NewMemoryState(userID, itemID, now)
	st.State = state
	st.Stability = 5
	st.Difficulty = 5
	st.Repetitions = 1
	st.DueAt = &dueAt
	reviewed := now
	st.LastReviewedAt = &reviewed
	return st
}

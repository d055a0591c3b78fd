package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/recall/internal/models"
)

var storeNow = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

func TestGetMemoryStateReadThrough(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	// No row exists: the lookup default-constructs a New state.
	st, err := GetMemoryState(db, "u1", "item-1", storeNow)
	require.NoError(t, err)
	assert.Equal(t, "u1", st.UserID)
	assert.Equal(t, "item-1", st.ItemID)
	assert.Equal(t, models.StateNew, st.State)
	assert.True(t, st.IsNew())
	assert.Nil(t, st.DueAt)

	// The default is not persisted.
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM memory_states`).Scan(&count))
	assert.Zero(t, count)
}

func TestUpsertAndGetMemoryState(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	dueAt := storeNow.Add(72 * time.Hour)
	st := reviewedState("u1", "item-1", models.StateReview, dueAt, storeNow)
	st.Lapses = 2
	st.CorrectStreak = 3
	st.Extension.Practice.Count = 7
	upsertState(t, db, st)

	got, err := GetMemoryState(db, "u1", "item-1", storeNow)
	require.NoError(t, err)
	assert.Equal(t, models.StateReview, got.State)
	assert.InDelta(t, 5.0, got.Stability, 1e-9)
	assert.Equal(t, 2, got.Lapses)
	assert.Equal(t, 3, got.CorrectStreak)
	assert.Equal(t, 7, got.Extension.Practice.Count)
	require.NotNil(t, got.DueAt)
	assert.True(t, got.DueAt.Equal(dueAt))
	require.NotNil(t, got.LastReviewedAt)
}

func TestUpsertMemoryStateReplacesRow(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	dueAt := storeNow.Add(24 * time.Hour)
	st := reviewedState("u1", "item-1", models.StateLearning, dueAt, storeNow)
	upsertState(t, db, st)

	st.State = models.StateReview
	st.Repetitions = 2
	later := storeNow.Add(10 * 24 * time.Hour)
	st.DueAt = &later
	upsertState(t, db, st)

	got, err := GetMemoryState(db, "u1", "item-1", storeNow)
	require.NoError(t, err)
	assert.Equal(t, models.StateReview, got.State)
	assert.Equal(t, 2, got.Repetitions)
	assert.True(t, got.DueAt.Equal(later))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM memory_states`).Scan(&count))
	assert.Equal(t, 1, count, "upsert must not create a second row for the pair")
}

func TestLoadOrCreateMemoryStateTx(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	err := Transact(db, func(tx *sql.Tx) error {
		st, err := LoadOrCreateMemoryStateTx(tx, "u1", "fresh", storeNow)
		require.NoError(t, err)
		assert.Equal(t, models.StateNew, st.State)
		assert.Zero(t, st.Repetitions)
		return nil
	})
	require.NoError(t, err)
}

func TestBatchGetMemoryStates(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	dueAt := storeNow.Add(24 * time.Hour)
	upsertState(t, db, reviewedState("u1", "a", models.StateReview, dueAt, storeNow))
	upsertState(t, db, reviewedState("u1", "b", models.StateLearning, dueAt, storeNow))
	upsertState(t, db, reviewedState("u2", "a", models.StateRelearning, dueAt, storeNow))

	got, err := BatchGetMemoryStates(db, "u1", []string{"a", "b", "missing"}, storeNow)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, models.StateReview, got["a"].State)
	assert.Equal(t, models.StateLearning, got["b"].State)
	assert.Equal(t, models.StateNew, got["missing"].State, "absent rows come back as the lazy default")
	assert.NotEqual(t, models.StateRelearning, got["a"].State, "another user's row must not leak")
}

func TestBatchGetMemoryStatesEmpty(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	got, err := BatchGetMemoryStates(db, "u1", nil, storeNow)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListMemoryStates(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	dueAt := storeNow.Add(24 * time.Hour)
	upsertState(t, db, reviewedState("u1", "b", models.StateReview, dueAt, storeNow))
	upsertState(t, db, reviewedState("u1", "a", models.StateLearning, dueAt, storeNow))
	upsertState(t, db, reviewedState("u2", "c", models.StateReview, dueAt, storeNow))

	states, err := ListMemoryStates(db, "u1")
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "a", states[0].ItemID)
	assert.Equal(t, "b", states[1].ItemID)
}

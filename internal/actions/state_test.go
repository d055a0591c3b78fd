package actions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/recall/internal/models"
	"github.com/dotcommander/recall/internal/queue"
)

func TestGetStateReadThrough(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	view, err := GetState(db, testDeps(), "u1", "unseen", actNow)
	require.NoError(t, err)
	assert.Equal(t, models.StateNew, view.State)
	assert.True(t, view.IsNew())
	assert.InDelta(t, 1.0, view.Retrievability, 1e-9, "read-through display convention is optimistic")
}

func TestGetStateAfterReview(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	submitGood(t, db, "item-1", actNow)

	view, err := GetState(db, testDeps(), "u1", "item-1", actNow.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, view.Repetitions)
	assert.Greater(t, view.Retrievability, 0.0)
	assert.Less(t, view.Retrievability, 1.0)
}

func TestBatchGetStates(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	submitGood(t, db, "a", actNow)

	views, err := BatchGetStates(db, testDeps(), "u1", []string{"a", "b"}, actNow)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, 1, views["a"].Repetitions)
	b := views["b"]
	assert.True(t, b.IsNew())
}

func TestRebuildStateMatchesLive(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	when := actNow
	var live models.MemoryState
	for i := 0; i < 5; i++ {
		live, _ = submitGood(t, db, "item-1", when)
		when = when.Add(48 * time.Hour)
	}

	rebuilt, err := RebuildState(db, testDeps(), "u1", "item-1", when)
	require.NoError(t, err)

	assert.InDelta(t, live.Stability, rebuilt.Stability, 1e-6)
	assert.InDelta(t, live.Difficulty, rebuilt.Difficulty, 1e-6)
	assert.Equal(t, live.State, rebuilt.State)
	assert.Equal(t, live.Repetitions, rebuilt.Repetitions)
	assert.Equal(t, live.CorrectStreak, rebuilt.CorrectStreak, "rebuild keeps streaks")
}

func TestRebuildStateNoHistory(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := RebuildState(db, testDeps(), "u1", "ghost", actNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetDueCountsAction(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	submitGood(t, db, "item-1", actNow)

	counts, err := GetDueCounts(db, "u1", actNow.Add(30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Total)

	_, err = GetDueCounts(db, "", actNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestBuildSessionQueueAction(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	submitGood(t, db, "a", actNow)
	submitGood(t, db, "b", actNow)

	// Far enough out that both scheduled items are due.
	later := actNow.Add(60 * 24 * time.Hour)
	items, err := BuildSessionQueue(db, "u1", queue.Options{Now: later, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Pinned in-flight items stay first on a rebuilt queue.
	items, err = BuildSessionQueue(db, "u1", queue.Options{Now: later, Limit: 10, Pinned: []string{"b"}})
	require.NoError(t, err)
	require.NotEmpty(t, items)
	assert.Equal(t, "b", items[0].ItemID)
}

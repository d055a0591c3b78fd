package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dotcommander/recall/internal/models"
)

const memoryStateColumns = `user_id, item_id, state, stability, difficulty,
	due_at, last_reviewed_at, repetitions, lapses, correct_streak,
	incorrect_streak, extension, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemoryState(row rowScanner) (models.MemoryState, error) {
	var st models.MemoryState
	var dueAt, lastReviewedAt sql.NullTime
	var extension sql.NullString

	err := row.Scan(
		&st.UserID, &st.ItemID, &st.State, &st.Stability, &st.Difficulty,
		&dueAt, &lastReviewedAt, &st.Repetitions, &st.Lapses,
		&st.CorrectStreak, &st.IncorrectStreak, &extension,
		&st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return models.MemoryState{}, err
	}

	if dueAt.Valid {
		t := dueAt.Time
		st.DueAt = &t
	}
	if lastReviewedAt.Valid {
		t := lastReviewedAt.Time
		st.LastReviewedAt = &t
	}
	if extension.Valid && extension.String != "" {
		if err := json.Unmarshal([]byte(extension.String), &st.Extension); err != nil {
			return models.MemoryState{}, fmt.Errorf("failed to decode extension for %s/%s: %w", st.UserID, st.ItemID, err)
		}
	}
	return st, nil
}

// GetMemoryStateTx fetches the row for (user, item). Returns (nil, nil)
// when no row exists; the caller decides whether absence means a lazy
// default or an error.
func GetMemoryStateTx(q Querier, userID, itemID string) (*models.MemoryState, error) {
	row := q.QueryRow(`
		SELECT `+memoryStateColumns+`
		FROM memory_states WHERE user_id = ? AND item_id = ?
	`, userID, itemID)

	st, err := scanMemoryState(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query memory state: %w", err)
	}
	return &st, nil
}

// LoadOrCreateMemoryStateTx returns the stored state for (user, item),
// default-constructing a New state when no row exists yet. The default is
// not persisted; a row appears only when a review writes one.
func LoadOrCreateMemoryStateTx(tx *sql.Tx, userID, itemID string, now time.Time) (models.MemoryState, error) {
	st, err := GetMemoryStateTx(tx, userID, itemID)
	if err != nil {
		return models.MemoryState{}, err
	}
	if st == nil {
		return models.NewMemoryState(userID, itemID, now), nil
	}
	return *st, nil
}

// UpsertMemoryStateTx writes the full state row, inserting or replacing
// the existing row for the pair.
func UpsertMemoryStateTx(tx *sql.Tx, st models.MemoryState) error {
	extension := any(nil)
	if !st.Extension.IsZero() {
		raw, err := json.Marshal(st.Extension)
		if err != nil {
			return fmt.Errorf("failed to encode extension: %w", err)
		}
		extension = string(raw)
	}

	var dueAt, lastReviewedAt any
	if st.DueAt != nil {
		dueAt = st.DueAt.UTC()
	}
	if st.LastReviewedAt != nil {
		lastReviewedAt = st.LastReviewedAt.UTC()
	}

	_, err := tx.Exec(`
		INSERT INTO memory_states (
			user_id, item_id, state, stability, difficulty,
			due_at, last_reviewed_at, repetitions, lapses,
			correct_streak, incorrect_streak, extension, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			state = excluded.state,
			stability = excluded.stability,
			difficulty = excluded.difficulty,
			due_at = excluded.due_at,
			last_reviewed_at = excluded.last_reviewed_at,
			repetitions = excluded.repetitions,
			lapses = excluded.lapses,
			correct_streak = excluded.correct_streak,
			incorrect_streak = excluded.incorrect_streak,
			extension = excluded.extension,
			updated_at = excluded.updated_at
	`, st.UserID, st.ItemID, string(st.State), st.Stability, st.Difficulty,
		dueAt, lastReviewedAt, st.Repetitions, st.Lapses,
		st.CorrectStreak, st.IncorrectStreak, extension,
		st.CreatedAt.UTC(), st.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert memory state: %w", err)
	}
	return nil
}

// GetMemoryState is the read-through lookup outside a transaction.
func GetMemoryState(db *sql.DB, userID, itemID string, now time.Time) (models.MemoryState, error) {
	var st models.MemoryState
	err := RetryWithBackoff(func() error {
		got, err := GetMemoryStateTx(db, userID, itemID)
		if err != nil {
			return err
		}
		if got == nil {
			st = models.NewMemoryState(userID, itemID, now)
		} else {
			st = *got
		}
		return nil
	})
	if err != nil {
		return models.MemoryState{}, err
	}
	return st, nil
}

// BatchGetMemoryStates fetches states for many items at once. Absent rows
// come back as the lazy New default, so every requested id has an entry.
func BatchGetMemoryStates(db *sql.DB, userID string, itemIDs []string, now time.Time) (map[string]models.MemoryState, error) {
	result := make(map[string]models.MemoryState, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	query := `SELECT ` + memoryStateColumns + ` FROM memory_states WHERE user_id = ? AND item_id IN (?` +
		repeatPlaceholder(len(itemIDs)-1) + `)`
	args := make([]any, 0, len(itemIDs)+1)
	args = append(args, userID)
	for _, id := range itemIDs {
		args = append(args, id)
	}

	err := RetryWithBackoff(func() error {
		rows, err := db.Query(query, args...)
		if err != nil {
			return fmt.Errorf("failed to query memory states: %w", err)
		}
		defer rows.Close()

		clear(result)
		for rows.Next() {
			st, err := scanMemoryState(rows)
			if err != nil {
				return fmt.Errorf("failed to scan memory state row: %w", err)
			}
			result[st.ItemID] = st
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	for _, id := range itemIDs {
		if _, ok := result[id]; !ok {
			result[id] = models.NewMemoryState(userID, id, now)
		}
	}
	return result, nil
}

// ListMemoryStates returns all of a user's rows, for snapshot-based queue
// building and statistics.
func ListMemoryStates(db *sql.DB, userID string) ([]models.MemoryState, error) {
	var states []models.MemoryState
	err := RetryWithBackoff(func() error {
		rows, err := db.Query(`
			SELECT `+memoryStateColumns+`
			FROM memory_states WHERE user_id = ?
			ORDER BY item_id
		`, userID)
		if err != nil {
			return fmt.Errorf("failed to query memory states: %w", err)
		}
		defer rows.Close()

		states = states[:0]
		for rows.Next() {
			st, err := scanMemoryState(rows)
			if err != nil {
				return fmt.Errorf("failed to scan memory state row: %w", err)
			}
			states = append(states, st)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return states, nil
}

func repeatPlaceholder(n int) string {
	out := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		out = append(out, ',', '?')
	}
	return string(out)
}

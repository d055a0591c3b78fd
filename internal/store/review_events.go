package store

import (
	"database/sql"
	"fmt"

	"github.com/dotcommander/recall/internal/models"
)

const reviewEventColumns = `id, user_id, item_id, rating, mode, correct,
	elapsed_days, scheduled_days, stability, difficulty, duration_ms,
	reviewed_at, created_at`

// InsertReviewEventTx appends one log entry. Events are never updated or
// deleted; the log is the audit trail and the optimizer's training source.
func InsertReviewEventTx(tx *sql.Tx, ev models.ReviewEvent) (int64, error) {
	result, err := tx.Exec(`
		INSERT INTO review_events (
			user_id, item_id, rating, mode, correct,
			elapsed_days, scheduled_days, stability, difficulty,
			duration_ms, reviewed_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, ev.UserID, ev.ItemID, int(ev.Rating), string(ev.Mode), ev.Correct,
		ev.ElapsedDays, ev.ScheduledDays, ev.Stability, ev.Difficulty,
		ev.DurationMs, ev.ReviewedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert review event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get review event id: %w", err)
	}
	return id, nil
}

func scanReviewEvent(row rowScanner) (models.ReviewEvent, error) {
	var ev models.ReviewEvent
	err := row.Scan(
		&ev.ID, &ev.UserID, &ev.ItemID, &ev.Rating, &ev.Mode, &ev.Correct,
		&ev.ElapsedDays, &ev.ScheduledDays, &ev.Stability, &ev.Difficulty,
		&ev.DurationMs, &ev.ReviewedAt, &ev.CreatedAt,
	)
	return ev, err
}

// ListReviewEvents returns a user's full history in review order.
func ListReviewEvents(db *sql.DB, userID string) ([]models.ReviewEvent, error) {
	var events []models.ReviewEvent
	err := RetryWithBackoff(func() error {
		rows, err := db.Query(`
			SELECT `+reviewEventColumns+`
			FROM review_events WHERE user_id = ?
			ORDER BY reviewed_at, id
		`, userID)
		if err != nil {
			return fmt.Errorf("failed to query review events: %w", err)
		}
		defer rows.Close()

		events = events[:0]
		for rows.Next() {
			ev, err := scanReviewEvent(rows)
			if err != nil {
				return fmt.Errorf("failed to scan review event row: %w", err)
			}
			events = append(events, ev)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ListItemReviewEvents returns the history for one (user, item) pair in
// review order, for state rebuilds.
func ListItemReviewEvents(db *sql.DB, userID, itemID string) ([]models.ReviewEvent, error) {
	var events []models.ReviewEvent
	err := RetryWithBackoff(func() error {
		rows, err := db.Query(`
			SELECT `+reviewEventColumns+`
			FROM review_events WHERE user_id = ? AND item_id = ?
			ORDER BY reviewed_at, id
		`, userID, itemID)
		if err != nil {
			return fmt.Errorf("failed to query review events: %w", err)
		}
		defer rows.Close()

		events = events[:0]
		for rows.Next() {
			ev, err := scanReviewEvent(rows)
			if err != nil {
				return fmt.Errorf("failed to scan review event row: %w", err)
			}
			events = append(events, ev)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// CountReviewEvents returns the size of a user's history, used to decide
// whether a parameter fit is worth attempting.
func CountReviewEvents(db *sql.DB, userID string) (int, error) {
	var count int
	err := RetryWithBackoff(func() error {
		return db.QueryRow(`
			SELECT COUNT(*) FROM review_events WHERE user_id = ?
		`, userID).Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count review events: %w", err)
	}
	return count, nil
}

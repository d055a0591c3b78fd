package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dotcommander/recall/internal/models"
)

// CountDueOnTx counts a user's items due on the given UTC calendar date.
// The load balancer reads this through the submission's own transaction,
// so the count and the due-date write are one atomic unit.
func CountDueOnTx(q Querier, userID string, date time.Time) (int, error) {
	y, m, d := date.UTC().Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	var count int
	err := q.QueryRow(`
		SELECT COUNT(*) FROM memory_states
		WHERE user_id = ? AND due_at >= ? AND due_at < ?
	`, userID, dayStart, dayEnd).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count due items: %w", err)
	}
	return count, nil
}

// CountDueOn is the standalone variant of CountDueOnTx.
func CountDueOn(db *sql.DB, userID string, date time.Time) (int, error) {
	var count int
	err := RetryWithBackoff(func() error {
		var countErr error
		count, countErr = CountDueOnTx(db, userID, date)
		return countErr
	})
	return count, err
}

// GetDueCounts breaks down the user's workload at now: due items by
// state, items more than a day overdue, and the untouched new backlog.
func GetDueCounts(db *sql.DB, userID string, now time.Time) (models.DueCounts, error) {
	var counts models.DueCounts
	nowUTC := now.UTC()
	overdueBefore := nowUTC.Add(-24 * time.Hour)

	err := RetryWithBackoff(func() error {
		counts = models.DueCounts{}

		rows, err := db.Query(`
			SELECT state, COUNT(*) FROM memory_states
			WHERE user_id = ? AND due_at IS NOT NULL AND due_at <= ?
			GROUP BY state
		`, userID, nowUTC)
		if err != nil {
			return fmt.Errorf("failed to query due counts: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var state string
			var n int
			if err := rows.Scan(&state, &n); err != nil {
				return fmt.Errorf("failed to scan due count row: %w", err)
			}
			switch models.State(state) {
			case models.StateLearning:
				counts.Learning = n
			case models.StateReview:
				counts.Review = n
			case models.StateRelearning:
				counts.Relearning = n
			}
			counts.Total += n
		}
		if err := rows.Err(); err != nil {
			return err
		}

		if err := db.QueryRow(`
			SELECT COUNT(*) FROM memory_states
			WHERE user_id = ? AND due_at IS NOT NULL AND due_at < ?
		`, userID, overdueBefore).Scan(&counts.Overdue); err != nil {
			return fmt.Errorf("failed to count overdue items: %w", err)
		}

		if err := db.QueryRow(`
			SELECT COUNT(*) FROM memory_states
			WHERE user_id = ? AND state = ?
		`, userID, string(models.StateNew)).Scan(&counts.New); err != nil {
			return fmt.Errorf("failed to count new items: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.DueCounts{}, err
	}
	return counts, nil
}

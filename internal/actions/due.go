package actions

import (
	"database/sql"
	"time"

	"github.com/dotcommander/recall/internal/models"
	"github.com/dotcommander/recall/internal/store"
)

// GetDueCounts reports the user's workload breakdown at now.
func GetDueCounts(db *sql.DB, userID string, now time.Time) (models.DueCounts, error) {
	if userID == "" {
		return models.DueCounts{}, &models.ValidationError{Field: "user", Reason: "user id is required"}
	}
	counts, err := store.GetDueCounts(db, userID, now)
	if err != nil {
		return models.DueCounts{}, &models.PersistenceError{Op: "actions.GetDueCounts", Err: err}
	}
	return counts, nil
}

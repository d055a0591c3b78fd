package actions

import (
	"database/sql"
	"time"

	"github.com/dotcommander/recall/internal/models"
	"github.com/dotcommander/recall/internal/scheduler"
	"github.com/dotcommander/recall/internal/store"
)

// PreviewItem projects the outcome of every rating for (user, item) at
// now, without writing anything. The projections are exact: submitting one
// of the ratings at the same instant produces the identical state.
func PreviewItem(db *sql.DB, deps Deps, userID, itemID, collectionID string, now time.Time) (map[models.Rating]scheduler.Projection, error) {
	if userID == "" {
		return nil, &models.ValidationError{Field: "user", Reason: "user id is required"}
	}
	if itemID == "" {
		return nil, &models.ValidationError{Field: "item", Reason: "item id is required"}
	}

	eng, err := newEngine(db, deps, userID, collectionID)
	if err != nil {
		return nil, err
	}

	st, err := store.GetMemoryState(db, userID, itemID, now)
	if err != nil {
		return nil, &models.PersistenceError{Op: "actions.PreviewItem", Err: err}
	}
	return eng.Preview(st, now)
}

package actions

import (
	"database/sql"

	"github.com/dotcommander/recall/internal/models"
	"github.com/dotcommander/recall/internal/queue"
	"github.com/dotcommander/recall/internal/store"
)

// BuildSessionQueue snapshots the user's states and builds a prioritized
// session queue. The snapshot is taken once; items becoming due after it
// appear in the next request.
func BuildSessionQueue(db *sql.DB, userID string, opts queue.Options) ([]queue.Item, error) {
	if userID == "" {
		return nil, &models.ValidationError{Field: "user", Reason: "user id is required"}
	}

	states, err := store.ListMemoryStates(db, userID)
	if err != nil {
		return nil, &models.PersistenceError{Op: "actions.BuildSessionQueue", Err: err}
	}

	items := make([]queue.Item, 0, len(states))
	for _, st := range states {
		items = append(items, queue.Item{ItemID: st.ItemID, State: st})
	}
	return queue.Build(items, opts), nil
}

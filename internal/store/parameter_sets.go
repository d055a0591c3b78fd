package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dotcommander/recall/internal/models"
)

const parameterSetColumns = `id, user_id, collection_id, strategy, weights,
	trained_on, created_at, updated_at`

func scanParameterSet(row rowScanner) (models.ParameterSet, error) {
	var ps models.ParameterSet
	var weights string
	err := row.Scan(&ps.ID, &ps.UserID, &ps.CollectionID, &ps.Strategy,
		&weights, &ps.TrainedOn, &ps.CreatedAt, &ps.UpdatedAt)
	if err != nil {
		return models.ParameterSet{}, err
	}
	if err := json.Unmarshal([]byte(weights), &ps.Weights); err != nil {
		return models.ParameterSet{}, fmt.Errorf("failed to decode weights for %s: %w", ps.UserID, err)
	}
	return ps, nil
}

// GetEffectiveParameterSet resolves the weight vector for a scheduling
// call: a collection-level override wins over the user's general fit;
// (nil, nil) means no fitted set exists and the global defaults apply.
func GetEffectiveParameterSet(db *sql.DB, userID, collectionID string) (*models.ParameterSet, error) {
	var ps *models.ParameterSet
	err := RetryWithBackoff(func() error {
		if collectionID != "" {
			row := db.QueryRow(`
				SELECT `+parameterSetColumns+`
				FROM parameter_sets WHERE user_id = ? AND collection_id = ?
			`, userID, collectionID)
			got, err := scanParameterSet(row)
			if err == nil {
				ps = &got
				return nil
			}
			if err != sql.ErrNoRows {
				return fmt.Errorf("failed to query parameter set: %w", err)
			}
		}

		row := db.QueryRow(`
			SELECT `+parameterSetColumns+`
			FROM parameter_sets WHERE user_id = ? AND collection_id = ''
		`, userID)
		got, err := scanParameterSet(row)
		if err == sql.ErrNoRows {
			ps = nil
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to query parameter set: %w", err)
		}
		ps = &got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ps, nil
}

// ReplaceParameterSetTx replaces a user's weight vector wholesale and
// returns the stored row. Partial weight updates do not exist.
func ReplaceParameterSetTx(tx *sql.Tx, userID, collectionID, strategy string, weights []float64, trainedOn int) (*models.ParameterSet, error) {
	raw, err := json.Marshal(weights)
	if err != nil {
		return nil, fmt.Errorf("failed to encode weights: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO parameter_sets (user_id, collection_id, strategy, weights, trained_on, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, collection_id) DO UPDATE SET
			strategy = excluded.strategy,
			weights = excluded.weights,
			trained_on = excluded.trained_on,
			updated_at = CURRENT_TIMESTAMP
	`, userID, collectionID, strategy, string(raw), trainedOn)
	if err != nil {
		return nil, fmt.Errorf("failed to replace parameter set: %w", err)
	}

	row := tx.QueryRow(`
		SELECT `+parameterSetColumns+`
		FROM parameter_sets WHERE user_id = ? AND collection_id = ?
	`, userID, collectionID)
	ps, err := scanParameterSet(row)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch replaced parameter set: %w", err)
	}
	return &ps, nil
}

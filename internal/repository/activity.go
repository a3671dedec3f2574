package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/models"
)

// InsertActivity appends one audit record to the activity log. Snapshots are
// stored as JSONB so the log stays readable without schema churn.
func (r *Repository) InsertActivity(ctx context.Context, event models.ActivityEvent) error {
	before, err := json.Marshal(event.Before)
	if err != nil {
		return fmt.Errorf("failed to marshal before snapshot: %w", err)
	}

	after, err := json.Marshal(event.After)
	if err != nil {
		return fmt.Errorf("failed to marshal after snapshot: %w", err)
	}

	_, err = r.db.Exec(ctx, InsertActivitySQL,
		event.Actor, event.Action, event.TaskID, before, after, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity record: %w", err)
	}

	return nil
}

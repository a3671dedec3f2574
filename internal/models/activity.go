package models

import "time"

// ActivityEvent is an append-only audit record describing a single state
// change. Before and After hold snapshots of the fields touched by the
// operation, keyed by field name.
type ActivityEvent struct {
	Actor     string         `json:"actor"`     // Identity of who performed the action
	Action    string         `json:"action"`    // Action kind, e.g. "assign", "bulk_import"
	TaskID    string         `json:"taskId"`    // Subject task id, empty for run-level events
	Before    map[string]any `json:"before"`    // Field values prior to the change
	After     map[string]any `json:"after"`     // Field values after the change
	Timestamp time.Time      `json:"timestamp"` // When the change happened
}

// Package audit decouples the activity log from the services that produce
// events: the dispatch service and the import pipeline emit events through
// the Sink interface and never depend on where the records end up.
package audit

import (
	"context"
	"log/slog"

	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/models"
)

// Sink receives audit events describing state changes.
type Sink interface {
	Record(ctx context.Context, event models.ActivityEvent) error
}

// Writer is the storage operation a StoreSink needs.
type Writer interface {
	InsertActivity(ctx context.Context, event models.ActivityEvent) error
}

// StoreSink persists events through a repository writer. A write failure is
// logged and swallowed: audit is an observer of the operation, never a reason
// to fail it.
type StoreSink struct {
	writer Writer
	log    *slog.Logger
}

// NewStoreSink creates a sink that writes events into the activity log.
func NewStoreSink(log *slog.Logger, writer Writer) *StoreSink {
	return &StoreSink{writer: writer, log: log}
}

// Record persists one audit event.
func (s *StoreSink) Record(ctx context.Context, event models.ActivityEvent) error {
	if err := s.writer.InsertActivity(ctx, event); err != nil {
		s.log.ErrorContext(ctx, "failed to record audit event",
			"action", event.Action, "task_id", event.TaskID, "error", err)
	}

	return nil
}

// NopSink discards every event. Used in tests and as a fallback when no
// activity log is configured.
type NopSink struct{}

// Record discards the event.
func (NopSink) Record(_ context.Context, _ models.ActivityEvent) error {
	return nil
}

package bulkimport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/audit"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/metrics"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/models"
)

// ErrEmptyFile is returned when the decoded dataset has no data rows.
// This is a hard pipeline failure, unlike per-row rejections.
var ErrEmptyFile = errors.New("file is empty or invalid format")

// maxReportedErrors caps the error list in the report; the counts always
// cover the full sweep.
const maxReportedErrors = 20

// headerRowOffset converts a 0-based data row index to the spreadsheet row
// number shown to the operator: row 1 is the header, so data starts at row 2.
const headerRowOffset = 2

// TaskCreator persists one task produced by the pipeline.
type TaskCreator interface {
	CreateTask(ctx context.Context, task models.Task) error
}

// Report summarizes one import run.
type Report struct {
	SuccessCount  int      `json:"successCount"`
	ErrorCount    int      `json:"errorCount"`
	Errors        []string `json:"errors"`
	HasMoreErrors bool     `json:"hasMoreErrors"`
}

// Importer orchestrates a bulk import: iterate rows, validate each one,
// persist the valid ones and aggregate a success/error report.
type Importer struct {
	store   TaskCreator
	sink    audit.Sink
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewImporter creates an import pipeline over the given task store and
// audit sink.
func NewImporter(log *slog.Logger, store TaskCreator, sink audit.Sink, mtr *metrics.Metrics) *Importer {
	return &Importer{store: store, sink: sink, log: log, metrics: mtr}
}

// Run processes a decoded spreadsheet: rows[0] is the header, the rest are
// data records processed sequentially in file order. A failing row is
// reported as "Row <n>: <reason>" and never aborts the batch. One audit
// event summarizing the run is emitted at the end.
func (imp *Importer) Run(ctx context.Context, rows [][]string, actor, filename string) (Report, error) {
	started := time.Now()

	if len(rows) < headerRowOffset {
		return Report{}, ErrEmptyFile
	}

	columns := ResolveColumns(rows[0])

	var report Report
	allErrors := make([]string, 0)
	for i, record := range rows[1:] {
		rowNum := i + headerRowOffset

		payload, err := ValidateRow(RowFromRecord(columns, record))
		if err == nil {
			err = imp.store.CreateTask(ctx, buildTask(payload))
		}
		if err != nil {
			report.ErrorCount++
			imp.metrics.ImportRows.WithLabelValues("rejected").Inc()
			allErrors = append(allErrors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		report.SuccessCount++
		imp.metrics.TasksCreated.Inc()
		imp.metrics.ImportRows.WithLabelValues("created").Inc()
	}

	report.Errors = allErrors
	if len(allErrors) > maxReportedErrors {
		report.Errors = allErrors[:maxReportedErrors]
		report.HasMoreErrors = true
	}

	imp.metrics.ImportDuration.Observe(time.Since(started).Seconds())
	imp.log.InfoContext(ctx, "bulk import finished",
		"file", filename,
		"rows", len(rows)-1,
		"created", report.SuccessCount,
		"rejected", report.ErrorCount,
	)

	if err := imp.sink.Record(ctx, models.ActivityEvent{
		Actor:  actor,
		Action: "bulk_import",
		After: map[string]any{
			"file":         filename,
			"rowCount":     len(rows) - 1,
			"successCount": report.SuccessCount,
			"errorCount":   report.ErrorCount,
		},
		Timestamp: time.Now(),
	}); err != nil {
		imp.log.ErrorContext(ctx, "failed to record import audit event", "error", err)
	}

	return report, nil
}

// buildTask converts a validated payload into an unassigned task record.
func buildTask(payload Payload) models.Task {
	return models.Task{
		ID:         uuid.NewString(),
		Title:      payload.Title,
		ClientName: payload.ClientName,
		PostalCode: payload.PostalCode,
		MapURL:     payload.MapURL,
		HasMapLink: payload.MapURL != "",
		Latitude:   payload.Latitude,
		Longitude:  payload.Longitude,
		Status:     models.StatusUnassigned,
		Notes:      payload.Notes,
		CreatedAt:  time.Now(),
	}
}

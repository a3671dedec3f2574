// Package dispatch implements the task lifecycle state machine: creation,
// the assign/unassign/reassign protocol and status updates, together with the
// invariant tying a task's status to its assignee.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/audit"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/geo"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/metrics"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/models"
)

var (
	// ErrNotAnEmployee is returned when the assignment target exists but is
	// not an active user with the employee role.
	ErrNotAnEmployee = errors.New("user is not an active employee")
	// ErrInvalidTransition is returned when a status update is not allowed
	// by the transition table.
	ErrInvalidTransition = errors.New("status transition not allowed")
	// ErrValidation wraps every user-correctable input failure.
	ErrValidation = errors.New("validation failed")
)

const (
	maxTitleLen  = 500
	maxClientLen = 200
	dateLayout   = "2006-01-02"
)

var postalCodePattern = regexp.MustCompile(`^\d{6}$`)

// Store is the persistence surface the dispatch service needs. The pgx
// repository satisfies it; tests substitute an in-memory fake.
type Store interface {
	CreateTask(ctx context.Context, task models.Task) error
	GetTaskByID(ctx context.Context, id string) (models.Task, error)
	UpdateTask(ctx context.Context, task models.Task) error
	DeleteTask(ctx context.Context, id string) error
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// Service applies lifecycle operations to tasks, emits one audit event per
// mutation and keeps the status/assignee invariant on every persisted write.
type Service struct {
	store   Store
	sink    audit.Sink
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewService creates a dispatch service over the given store and audit sink.
func NewService(log *slog.Logger, store Store, sink audit.Sink, mtr *metrics.Metrics) *Service {
	return &Service{store: store, sink: sink, log: log, metrics: mtr}
}

// CreateInput carries the fields accepted when creating a task directly.
type CreateInput struct {
	Title      string
	ClientName string
	PostalCode string
	MapURL     string
	Latitude   *float64
	Longitude  *float64
	AssignedTo string
	Notes      string
}

// Create validates the input and persists a new task. When AssignedTo is set
// the task starts Pending with assignment timestamps; otherwise it enters the
// unassigned pool. Coordinates missing from the input are derived from the
// map link when one is present.
func (s *Service) Create(ctx context.Context, actor string, input CreateInput) (models.Task, error) {
	latitude, longitude := input.Latitude, input.Longitude
	if input.MapURL != "" && (latitude == nil || longitude == nil) {
		if lat, lng, ok := geo.FromMapURL(input.MapURL); ok {
			latitude, longitude = &lat, &lng
		}
	}

	if err := validateTaskFields(input.Title, input.ClientName, input.PostalCode, latitude, longitude); err != nil {
		return models.Task{}, err
	}

	now := time.Now()
	task := models.Task{
		ID:         uuid.NewString(),
		Title:      input.Title,
		ClientName: input.ClientName,
		PostalCode: input.PostalCode,
		MapURL:     input.MapURL,
		HasMapLink: input.MapURL != "",
		Latitude:   latitude,
		Longitude:  longitude,
		Status:     models.StatusUnassigned,
		Notes:      input.Notes,
		CreatedAt:  now,
	}

	if input.AssignedTo != "" {
		employee, err := s.assignableUser(ctx, input.AssignedTo)
		if err != nil {
			return models.Task{}, err
		}
		task.AssignedTo = &employee.ID
		task.AssignedDate = now.Format(dateLayout)
		task.AssignedAt = &now
		task.Status = models.StatusPending
	}

	if err := s.store.CreateTask(ctx, task); err != nil {
		return models.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	s.metrics.TasksCreated.Inc()
	s.emit(ctx, actor, "create", task.ID, nil, map[string]any{
		"title":            task.Title,
		"status":           string(task.Status),
		"assignedToUserId": derefOrNil(task.AssignedTo),
	})

	return task, nil
}

// Assign places the task with the given employee. The status is forced to
// Pending unconditionally, even from a later status: re-assigning is the
// recovery path that re-activates a finished or failed-contact task.
func (s *Service) Assign(ctx context.Context, actor, taskID, employeeID string) (models.Task, error) {
	task, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return models.Task{}, err
	}

	employee, err := s.assignableUser(ctx, employeeID)
	if err != nil {
		return models.Task{}, err
	}

	before := assignmentSnapshot(task)

	now := time.Now()
	task.AssignedTo = &employee.ID
	task.AssignedDate = now.Format(dateLayout)
	task.AssignedAt = &now
	task.Status = models.StatusPending

	if err = s.store.UpdateTask(ctx, task); err != nil {
		return models.Task{}, fmt.Errorf("failed to persist assignment: %w", err)
	}

	s.metrics.AssignmentOps.WithLabelValues("assign").Inc()
	s.emit(ctx, actor, "assign", task.ID, before, assignmentSnapshot(task))

	return task, nil
}

// Unassign returns the task to the unassigned pool, clearing the assignee and
// the assignment timestamps. Calling it on an already-unassigned task is a
// safe no-op that produces the same end state.
func (s *Service) Unassign(ctx context.Context, actor, taskID string) (models.Task, error) {
	task, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return models.Task{}, err
	}

	before := assignmentSnapshot(task)

	task.AssignedTo = nil
	task.AssignedDate = ""
	task.AssignedAt = nil
	task.Status = models.StatusUnassigned

	if err = s.store.UpdateTask(ctx, task); err != nil {
		return models.Task{}, fmt.Errorf("failed to persist unassignment: %w", err)
	}

	s.metrics.AssignmentOps.WithLabelValues("unassign").Inc()
	s.emit(ctx, actor, "unassign", task.ID, before, assignmentSnapshot(task))

	return task, nil
}

// Reassign hands the task to a different employee. In-flight progress is
// preserved: only an Unassigned task is promoted to Pending, any other
// status stays untouched. The assignment timestamp is refreshed.
func (s *Service) Reassign(ctx context.Context, actor, taskID, newEmployeeID string) (models.Task, error) {
	task, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return models.Task{}, err
	}

	employee, err := s.assignableUser(ctx, newEmployeeID)
	if err != nil {
		return models.Task{}, err
	}

	before := assignmentSnapshot(task)

	now := time.Now()
	task.AssignedTo = &employee.ID
	task.AssignedAt = &now
	if task.Status == models.StatusUnassigned {
		task.Status = models.StatusPending
		task.AssignedDate = now.Format(dateLayout)
	}

	if err = s.store.UpdateTask(ctx, task); err != nil {
		return models.Task{}, fmt.Errorf("failed to persist reassignment: %w", err)
	}

	s.metrics.AssignmentOps.WithLabelValues("reassign").Inc()
	s.emit(ctx, actor, "reassign", task.ID, before, assignmentSnapshot(task))

	return task, nil
}

// UpdateStatus moves the task to the requested status. Requesting the current
// status is a no-op. Any other transition must appear in the transition
// table; entering Completed or Verified stamps the matching timestamp once
// and never overwrites it.
func (s *Service) UpdateStatus(ctx context.Context, actor, taskID string, requested models.TaskStatus) (models.Task, error) {
	if !requested.IsValid() {
		return models.Task{}, fmt.Errorf("%w: unknown status %q", ErrValidation, requested)
	}

	task, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return models.Task{}, err
	}

	if requested == task.Status {
		return task, nil
	}

	before := statusSnapshot(task)

	if err = applyStatus(&task, requested); err != nil {
		return models.Task{}, err
	}

	if err = s.store.UpdateTask(ctx, task); err != nil {
		return models.Task{}, fmt.Errorf("failed to persist status update: %w", err)
	}

	s.metrics.AssignmentOps.WithLabelValues("update_status").Inc()
	s.emit(ctx, actor, "update_status", task.ID, before, statusSnapshot(task))

	return task, nil
}

// UpdateInput carries the optional fields of a task update. Nil pointers
// leave the current value untouched.
type UpdateInput struct {
	Status     *models.TaskStatus
	Notes      *string
	ManualDate *string
	ManualTime *string
}

// Update applies a partial edit to notes, the manual date/time overrides and
// optionally the status. A status change goes through the same transition
// rules as UpdateStatus.
func (s *Service) Update(ctx context.Context, actor, taskID string, input UpdateInput) (models.Task, error) {
	task, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return models.Task{}, err
	}

	before := map[string]any{
		"status":     string(task.Status),
		"notes":      task.Notes,
		"manualDate": task.ManualDate,
		"manualTime": task.ManualTime,
	}

	if input.Notes != nil {
		task.Notes = *input.Notes
	}
	if input.ManualDate != nil {
		task.ManualDate = *input.ManualDate
	}
	if input.ManualTime != nil {
		task.ManualTime = *input.ManualTime
	}
	if input.Status != nil && *input.Status != task.Status {
		if !input.Status.IsValid() {
			return models.Task{}, fmt.Errorf("%w: unknown status %q", ErrValidation, *input.Status)
		}
		if err = applyStatus(&task, *input.Status); err != nil {
			return models.Task{}, err
		}
	}

	if err = s.store.UpdateTask(ctx, task); err != nil {
		return models.Task{}, fmt.Errorf("failed to persist task update: %w", err)
	}

	s.metrics.AssignmentOps.WithLabelValues("update").Inc()
	s.emit(ctx, actor, "update", task.ID, before, map[string]any{
		"status":     string(task.Status),
		"notes":      task.Notes,
		"manualDate": task.ManualDate,
		"manualTime": task.ManualTime,
	})

	return task, nil
}

// Delete permanently removes the task. There is no tombstone; the operation
// is terminal and unrecoverable.
func (s *Service) Delete(ctx context.Context, actor, taskID string) error {
	task, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}

	if err = s.store.DeleteTask(ctx, taskID); err != nil {
		return err
	}

	s.metrics.AssignmentOps.WithLabelValues("delete").Inc()
	s.emit(ctx, actor, "delete", task.ID, map[string]any{
		"title":  task.Title,
		"status": string(task.Status),
	}, nil)

	return nil
}

// applyStatus enforces the transition table and stamps the lifecycle
// timestamps for Completed and Verified at most once.
func applyStatus(task *models.Task, requested models.TaskStatus) error {
	if !task.Status.CanTransitionTo(requested) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, task.Status, requested)
	}

	task.Status = requested

	now := time.Now()
	switch requested {
	case models.StatusCompleted:
		if task.CompletedAt == nil {
			task.CompletedAt = &now
		}
	case models.StatusVerified:
		if task.VerifiedAt == nil {
			task.VerifiedAt = &now
		}
	}

	return nil
}

func (s *Service) assignableUser(ctx context.Context, userID string) (models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	if !user.IsAssignable() {
		return models.User{}, fmt.Errorf("%w: %s", ErrNotAnEmployee, userID)
	}

	return user, nil
}

func (s *Service) emit(ctx context.Context, actor, action, taskID string, before, after map[string]any) {
	event := models.ActivityEvent{
		Actor:     actor,
		Action:    action,
		TaskID:    taskID,
		Before:    before,
		After:     after,
		Timestamp: time.Now(),
	}
	if err := s.sink.Record(ctx, event); err != nil {
		s.log.ErrorContext(ctx, "failed to emit audit event", "action", action, "error", err)
	}
}

func assignmentSnapshot(task models.Task) map[string]any {
	return map[string]any{
		"assignedToUserId": derefOrNil(task.AssignedTo),
		"assignedDate":     task.AssignedDate,
		"status":           string(task.Status),
	}
}

func statusSnapshot(task models.Task) map[string]any {
	return map[string]any{
		"status":      string(task.Status),
		"completedAt": task.CompletedAt,
		"verifiedAt":  task.VerifiedAt,
	}
}

func derefOrNil(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

// validateTaskFields checks the single-field rules for a task payload.
func validateTaskFields(title, clientName, postalCode string, lat, lng *float64) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return fmt.Errorf("%w: title must be at most %d characters", ErrValidation, maxTitleLen)
	}
	if utf8.RuneCountInString(clientName) > maxClientLen {
		return fmt.Errorf("%w: client name must be at most %d characters", ErrValidation, maxClientLen)
	}
	if postalCode != "" && !postalCodePattern.MatchString(postalCode) {
		return fmt.Errorf("%w: postal code must be exactly 6 digits (got: %s)", ErrValidation, postalCode)
	}
	if lat != nil && (*lat < -90 || *lat > 90) {
		return fmt.Errorf("%w: latitude must be within [-90, 90]", ErrValidation)
	}
	if lng != nil && (*lng < -180 || *lng > 180) {
		return fmt.Errorf("%w: longitude must be within [-180, 180]", ErrValidation)
	}

	return nil
}

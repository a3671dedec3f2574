package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/models"
)

// ErrTaskNotFound is returned when a task with the specified id does not exist.
var ErrTaskNotFound = errors.New("task not found")

// CreateTask persists a new task record. The caller is responsible for the
// cross-field invariants (status vs. assignee); the table constraints cover
// the single-field rules.
func (r *Repository) CreateTask(ctx context.Context, task models.Task) error {
	_, err := r.db.Exec(ctx, CreateTaskSQL,
		task.ID, task.Title, task.ClientName, task.PostalCode, task.MapURL,
		task.Latitude, task.Longitude, task.AssignedTo, task.Status,
		task.AssignedDate, task.AssignedAt, task.CompletedAt, task.VerifiedAt,
		task.ManualDate, task.ManualTime, task.Notes, task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

// GetTaskByID retrieves a single task by its id.
// It returns ErrTaskNotFound when no such row exists.
func (r *Repository) GetTaskByID(ctx context.Context, id string) (models.Task, error) {
	task, err := scanTask(r.db.QueryRow(ctx, GetTaskByIDSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, fmt.Errorf("failed to query task by id: %w", err)
	}

	return task, nil
}

// ListTasks retrieves tasks matching the filter, newest first.
func (r *Repository) ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	rows, err := r.db.Query(ctx, ListTasksSQL, string(filter.Status), filter.AssignedTo)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// ListUnassignedTasks retrieves the unassigned pool, newest first. A non-empty
// search term is matched case-insensitively against title, postal code and notes.
func (r *Repository) ListUnassignedTasks(ctx context.Context, search string) ([]models.Task, error) {
	rows, err := r.db.Query(ctx, ListUnassignedTasksSQL, search)
	if err != nil {
		return nil, fmt.Errorf("failed to query unassigned tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// UpdateTask writes the full task row in a single statement, which keeps the
// read-modify-write of one logical operation at the single-row write grain.
// It returns ErrTaskNotFound when the task no longer exists.
func (r *Repository) UpdateTask(ctx context.Context, task models.Task) error {
	cmdTag, err := r.db.Exec(ctx, UpdateTaskSQL,
		task.ID, task.Title, task.ClientName, task.PostalCode, task.MapURL,
		task.Latitude, task.Longitude, task.AssignedTo, task.Status,
		task.AssignedDate, task.AssignedAt, task.CompletedAt, task.VerifiedAt,
		task.ManualDate, task.ManualTime, task.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// DeleteTask permanently removes a task. Deletion is terminal, there is no
// soft-delete. It returns ErrTaskNotFound when the task does not exist.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, DeleteTaskSQL, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var task models.Task
	err := row.Scan(
		&task.ID, &task.Title, &task.ClientName, &task.PostalCode, &task.MapURL,
		&task.Latitude, &task.Longitude, &task.AssignedTo, &task.Status,
		&task.AssignedDate, &task.AssignedAt, &task.CompletedAt, &task.VerifiedAt,
		&task.ManualDate, &task.ManualTime, &task.Notes, &task.CreatedAt,
	)
	if err != nil {
		return models.Task{}, err
	}

	task.HasMapLink = task.MapURL != ""

	return task, nil
}

func collectTasks(rows pgx.Rows) ([]models.Task, error) {
	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read task rows: %w", err)
	}

	return tasks, nil
}

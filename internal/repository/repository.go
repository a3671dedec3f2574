package repository

import (
	"context"

	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/models"
)

// Repository provides the persistence and query surface for tasks, users and
// activity records on top of a Database connection.
type Repository struct {
	db Database
}

// TaskFilter narrows a task listing. Empty fields match everything.
type TaskFilter struct {
	Status     models.TaskStatus // Filter by exact status when non-empty
	AssignedTo string            // Filter by assignee id when non-empty
}

// Interface defines the repository operations the rest of the application
// depends on: task CRUD, user lookups and the activity-log writer.
type Interface interface {
	CreateTask(ctx context.Context, task models.Task) error
	GetTaskByID(ctx context.Context, id string) (models.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error)
	ListUnassignedTasks(ctx context.Context, search string) ([]models.Task, error)
	UpdateTask(ctx context.Context, task models.Task) error
	DeleteTask(ctx context.Context, id string) error
	GetUserByID(ctx context.Context, id string) (models.User, error)
	ListEmployees(ctx context.Context) ([]models.User, error)
	InsertActivity(ctx context.Context, event models.ActivityEvent) error
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database) *Repository {
	return &Repository{db: db}
}

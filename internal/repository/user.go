package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/models"
)

// ErrUserNotFound is returned when a user with the specified id does not exist.
var ErrUserNotFound = errors.New("user not found")

// GetUserByID retrieves a user's details from the database by their id.
// It returns ErrUserNotFound when no such user exists.
func (r *Repository) GetUserByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx, GetUserByIDSQL, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.Role,
		&user.EmployeeCode, &user.Active, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("failed to query user by id: %w", err)
	}

	return user, nil
}

// ListEmployees retrieves all active users with the employee role, ordered by
// name. These are the valid assignment targets.
func (r *Repository) ListEmployees(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.Query(ctx, ListEmployeesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []models.User
	for rows.Next() {
		var user models.User
		if errScan := rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.Role,
			&user.EmployeeCode, &user.Active, &user.CreatedAt,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan employee row: %w", errScan)
		}
		employees = append(employees, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read employee rows: %w", err)
	}

	return employees, nil
}

package models

import "time"

// User roles. Only users with RoleEmployee are valid assignment targets.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User represents an admin or a field employee.
type User struct {
	ID           string    `json:"id"`           // Unique identifier for the user
	Name         string    `json:"name"`         // Full name of the user
	Email        string    `json:"email"`        // Email address, unique across users
	Role         string    `json:"role"`         // RoleAdmin or RoleEmployee
	EmployeeCode string    `json:"employeeCode"` // Optional external employee code
	Active       bool      `json:"active"`       // Inactive users cannot receive assignments
	CreatedAt    time.Time `json:"createdAt"`    // Timestamp of record creation
}

// IsAssignable reports whether the user can be the target of an assignment.
func (u User) IsAssignable() bool {
	return u.Role == RoleEmployee && u.Active
}

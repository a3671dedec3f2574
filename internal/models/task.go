package models

import "time"

// Task represents a field visit in the system. It carries the case
// reference, the client location details, the current assignee and the
// lifecycle timestamps set as the task moves through its statuses.
type Task struct {
	ID         string     `json:"id"`                  // Unique identifier for the task
	Title      string     `json:"title"`               // Case/reference identifier, 1-500 chars
	ClientName string     `json:"clientName"`          // Name of the client, up to 200 chars
	PostalCode string     `json:"postalCode"`          // Exactly 6 numeric digits when present
	MapURL     string     `json:"mapUrl"`              // Free-text map link for the visit location
	HasMapLink bool       `json:"hasMapLink"`          // Derived: MapURL is non-empty
	Latitude   *float64   `json:"latitude,omitempty"`  // Latitude in [-90, 90]
	Longitude  *float64   `json:"longitude,omitempty"` // Longitude in [-180, 180]
	AssignedTo *string    `json:"assignedToUserId"`    // Employee id; nil while the task is in the unassigned pool
	Status     TaskStatus `json:"status"`              // Current lifecycle status
	// Lifecycle timestamps, each set at most once, non-decreasing in the
	// order assigned -> completed -> verified.
	AssignedDate string     `json:"assignedDate"`          // Calendar date of assignment, "2006-01-02"
	AssignedAt   *time.Time `json:"assignedAtTimestamp"`   //
	CompletedAt  *time.Time `json:"completedAt,omitempty"` //
	VerifiedAt   *time.Time `json:"verifiedAt,omitempty"`  //
	ManualDate   string     `json:"manualDate"`            // Operator-entered date override, free form
	ManualTime   string     `json:"manualTime"`            // Operator-entered time override, free form
	Notes        string     `json:"notes"`                 // Free text
	CreatedAt    time.Time  `json:"createdAt"`             // Timestamp of record creation
}

package repository

import (
	"context"
	"fmt"
)

// CreateSchemaSQL holds the DDL for the application tables. Single-field
// constraints (postal code format, coordinate ranges, status membership,
// title length) live here; the cross-field status/assignee invariant is
// enforced by the dispatch service since a row constraint cannot express it.
const CreateSchemaSQL = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    role          TEXT NOT NULL CHECK (role IN ('admin', 'employee')),
    employee_code TEXT NOT NULL DEFAULT '',
    active        BOOLEAN NOT NULL DEFAULT TRUE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tasks (
    id            TEXT PRIMARY KEY,
    title         TEXT NOT NULL CHECK (char_length(title) BETWEEN 1 AND 500),
    client_name   TEXT NOT NULL DEFAULT '' CHECK (char_length(client_name) <= 200),
    postal_code   TEXT NOT NULL DEFAULT '' CHECK (postal_code = '' OR postal_code ~ '^[0-9]{6}$'),
    map_url       TEXT NOT NULL DEFAULT '',
    latitude      DOUBLE PRECISION CHECK (latitude IS NULL OR (latitude >= -90 AND latitude <= 90)),
    longitude     DOUBLE PRECISION CHECK (longitude IS NULL OR (longitude >= -180 AND longitude <= 180)),
    assigned_to   TEXT REFERENCES users (id),
    status        TEXT NOT NULL DEFAULT 'Unassigned' CHECK (status IN (
        'Unassigned', 'Pending', 'Completed', 'Verified', 'LeftJob',
        'NotSharingInfo', 'NotPicking', 'SwitchOff', 'IncorrectNumber', 'WrongAddress'
    )),
    assigned_date TEXT NOT NULL DEFAULT '',
    assigned_at   TIMESTAMPTZ,
    completed_at  TIMESTAMPTZ,
    verified_at   TIMESTAMPTZ,
    manual_date   TEXT NOT NULL DEFAULT '',
    manual_time   TEXT NOT NULL DEFAULT '',
    notes         TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks (status);
CREATE INDEX IF NOT EXISTS idx_tasks_assigned_to ON tasks (assigned_to);

CREATE TABLE IF NOT EXISTS activity_log (
    id           BIGSERIAL PRIMARY KEY,
    actor        TEXT NOT NULL,
    action       TEXT NOT NULL,
    task_id      TEXT NOT NULL DEFAULT '',
    before_state JSONB NOT NULL DEFAULT '{}',
    after_state  JSONB NOT NULL DEFAULT '{}',
    created_at   TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema creates the application tables if they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, CreateSchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

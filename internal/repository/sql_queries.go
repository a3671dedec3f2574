package repository

// SQL statements used by the repository. Kept as exported constants so tests
// can match expectations against the exact query text.

const CreateTaskSQL = `
INSERT INTO tasks (
    id, title, client_name, postal_code, map_url, latitude, longitude,
    assigned_to, status, assigned_date, assigned_at, completed_at,
    verified_at, manual_date, manual_time, notes, created_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
);
`

const taskColumns = `
    id, title, client_name, postal_code, map_url, latitude, longitude,
    assigned_to, status, assigned_date, assigned_at, completed_at,
    verified_at, manual_date, manual_time, notes, created_at
`

const GetTaskByIDSQL = `
SELECT` + taskColumns + `FROM tasks WHERE id = $1;
`

const ListTasksSQL = `
SELECT` + taskColumns + `FROM tasks
WHERE ($1 = '' OR status = $1)
  AND ($2 = '' OR assigned_to = $2)
ORDER BY created_at DESC;
`

const ListUnassignedTasksSQL = `
SELECT` + taskColumns + `FROM tasks
WHERE status = 'Unassigned'
  AND (
        $1 = ''
        OR title ILIKE '%' || $1 || '%'
        OR postal_code ILIKE '%' || $1 || '%'
        OR notes ILIKE '%' || $1 || '%'
      )
ORDER BY created_at DESC;
`

const UpdateTaskSQL = `
UPDATE tasks SET
    title = $2, client_name = $3, postal_code = $4, map_url = $5,
    latitude = $6, longitude = $7, assigned_to = $8, status = $9,
    assigned_date = $10, assigned_at = $11, completed_at = $12,
    verified_at = $13, manual_date = $14, manual_time = $15, notes = $16
WHERE id = $1;
`

const DeleteTaskSQL = `
DELETE FROM tasks WHERE id = $1;
`

const GetUserByIDSQL = `
SELECT id, name, email, role, employee_code, active, created_at
FROM users WHERE id = $1;
`

const ListEmployeesSQL = `
SELECT id, name, email, role, employee_code, active, created_at
FROM users
WHERE role = 'employee' AND active = TRUE
ORDER BY name;
`

const InsertActivitySQL = `
INSERT INTO activity_log (actor, action, task_id, before_state, after_state, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`

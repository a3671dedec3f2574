package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/audit"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/bulkimport"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/dispatch"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/metrics"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/models"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/repository"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore backs both the dispatch Store and the router's read-side Queries
// in handler tests.
type memStore struct {
	tasks map[string]models.Task
	users map[string]models.User
}

func newMemStore() *memStore {
	return &memStore{
		tasks: make(map[string]models.Task),
		users: make(map[string]models.User),
	}
}

func (m *memStore) CreateTask(_ context.Context, task models.Task) error {
	m.tasks[task.ID] = task
	return nil
}

func (m *memStore) GetTaskByID(_ context.Context, id string) (models.Task, error) {
	task, ok := m.tasks[id]
	if !ok {
		return models.Task{}, repository.ErrTaskNotFound
	}
	return task, nil
}

func (m *memStore) UpdateTask(_ context.Context, task models.Task) error {
	if _, ok := m.tasks[task.ID]; !ok {
		return repository.ErrTaskNotFound
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *memStore) DeleteTask(_ context.Context, id string) error {
	if _, ok := m.tasks[id]; !ok {
		return repository.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *memStore) ListTasks(_ context.Context, filter repository.TaskFilter) ([]models.Task, error) {
	var tasks []models.Task
	for _, task := range m.tasks {
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.AssignedTo != "" && (task.AssignedTo == nil || *task.AssignedTo != filter.AssignedTo) {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (m *memStore) ListUnassignedTasks(_ context.Context, search string) ([]models.Task, error) {
	var tasks []models.Task
	for _, task := range m.tasks {
		if task.Status != models.StatusUnassigned {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(task.Title), strings.ToLower(search)) {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (m *memStore) ListEmployees(_ context.Context) ([]models.User, error) {
	var employees []models.User
	for _, user := range m.users {
		if user.Role == models.RoleEmployee && user.Active {
			employees = append(employees, user)
		}
	}
	return employees, nil
}

func newTestRouter(t *testing.T, store *memStore) *gin.Engine {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	reg := prometheus.NewRegistry()
	mtr := metrics.NewMetrics(reg)
	svc := dispatch.NewService(logger, store, audit.NopSink{}, mtr)
	importer := bulkimport.NewImporter(logger, store, audit.NopSink{}, mtr)
	health := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return server.NewRouter(logger, svc, importer, store, mtr, reg, health,
		server.UploadLimits{MaxBytes: 10 << 20, TmpDir: t.TempDir()})
}

func doJSON(router *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func seedHandlerEmployee(store *memStore, id string) {
	store.users[id] = models.User{
		ID: id, Name: "Employee " + id, Email: id + "@example.com",
		Role: models.RoleEmployee, Active: true, CreatedAt: time.Now(),
	}
}

func seedHandlerTask(store *memStore, id string, status models.TaskStatus, assignee *string) {
	store.tasks[id] = models.Task{
		ID: id, Title: "CASE-" + id, Status: status, AssignedTo: assignee,
		CreatedAt: time.Now(),
	}
}

func TestCreateTaskHandler(t *testing.T) {
	t.Parallel()

	t.Run("error - missing title", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, newMemStore())

		rec := doJSON(router, http.MethodPost, "/tasks", gin.H{"clientName": "Acme"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "title is required", body["message"])
	})

	t.Run("error - malformed postal code", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, newMemStore())

		rec := doJSON(router, http.MethodPost, "/tasks", gin.H{"title": "CASE-1", "postalCode": "12345"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success - created unassigned", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		router := newTestRouter(t, store)

		rec := doJSON(router, http.MethodPost, "/tasks", gin.H{
			"title": "CASE-1", "postalCode": "560001",
			"mapUrl": "https://www.google.com/maps/@12.9716,77.5946,15z",
		})

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		task, ok := body["task"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Unassigned", task["status"])
		assert.Nil(t, task["assignedToUserId"])
		assert.InDelta(t, 12.9716, task["latitude"], 1e-9)
		require.Len(t, store.tasks, 1)
	})

	t.Run("success - created pre-assigned", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		seedHandlerEmployee(store, "emp-1")
		router := newTestRouter(t, store)

		rec := doJSON(router, http.MethodPost, "/tasks", gin.H{
			"title": "CASE-1", "assignedToUserId": "emp-1",
		})

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		task := body["task"].(map[string]any)
		assert.Equal(t, "Pending", task["status"])
		assert.Equal(t, "emp-1", task["assignedToUserId"])
	})
}

func TestGetTaskHandler(t *testing.T) {
	t.Parallel()

	t.Run("error - not found", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, newMemStore())

		rec := doJSON(router, http.MethodGet, "/tasks/missing", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Task not found", body["message"])
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		seedHandlerTask(store, "t1", models.StatusUnassigned, nil)
		router := newTestRouter(t, store)

		rec := doJSON(router, http.MethodGet, "/tasks/t1", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		task := body["task"].(map[string]any)
		assert.Equal(t, "CASE-t1", task["title"])
	})
}

func TestListTasksHandler(t *testing.T) {
	t.Parallel()

	t.Run("error - unknown status filter", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, newMemStore())

		rec := doJSON(router, http.MethodGet, "/tasks?status=Flying", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success - empty result is an array", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, newMemStore())

		rec := doJSON(router, http.MethodGet, "/tasks", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"tasks":[]`)
	})

	t.Run("success - status filter applied", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		emp := "emp-1"
		seedHandlerTask(store, "t1", models.StatusPending, &emp)
		seedHandlerTask(store, "t2", models.StatusUnassigned, nil)
		router := newTestRouter(t, store)

		rec := doJSON(router, http.MethodGet, "/tasks?status=Pending", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		tasks := body["tasks"].([]any)
		require.Len(t, tasks, 1)
	})
}

func TestListUnassignedTasksHandler(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	emp := "emp-1"
	seedHandlerTask(store, "t1", models.StatusUnassigned, nil)
	seedHandlerTask(store, "t2", models.StatusPending, &emp)
	router := newTestRouter(t, store)

	rec := doJSON(router, http.MethodGet, "/tasks/unassigned", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	tasks := body["tasks"].([]any)
	require.Len(t, tasks, 1)
	task := tasks[0].(map[string]any)
	assert.Equal(t, "Unassigned", task["status"])
}

func TestAssignTaskHandler(t *testing.T) {
	t.Parallel()

	t.Run("error - missing employeeId", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		seedHandlerTask(store, "t1", models.StatusUnassigned, nil)
		router := newTestRouter(t, store)

		rec := doJSON(router, http.MethodPost, "/tasks/t1/assign", gin.H{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "employeeId is required", body["message"])
	})

	t.Run("error - employee not found", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		seedHandlerTask(store, "t1", models.StatusUnassigned, nil)
		router := newTestRouter(t, store)

		rec := doJSON(router, http.MethodPost, "/tasks/t1/assign", gin.H{"employeeId": "ghost"})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Employee not found", body["message"])
	})

	t.Run("error - target is not an employee", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		seedHandlerTask(store, "t1", models.StatusUnassigned, nil)
		store.users["boss"] = models.User{ID: "boss", Role: models.RoleAdmin, Active: true}
		router := newTestRouter(t, store)

		rec := doJSON(router, http.MethodPost, "/tasks/t1/assign", gin.H{"employeeId": "boss"})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("success - task becomes pending", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		seedHandlerTask(store, "t1", models.StatusUnassigned, nil)
		seedHandlerEmployee(store, "emp-1")
		router := newTestRouter(t, store)

		rec := doJSON(router, http.MethodPost, "/tasks/t1/assign", gin.H{"employeeId": "emp-1"})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		task := body["task"].(map[string]any)
		assert.Equal(t, "Pending", task["status"])
		assert.Equal(t, "emp-1", task["assignedToUserId"])
	})
}

func TestUnassignTaskHandler(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	emp := "emp-1"
	seedHandlerTask(store, "t1", models.StatusPending, &emp)
	router := newTestRouter(t, store)

	rec := doJSON(router, http.MethodPost, "/tasks/t1/unassign", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	task := body["task"].(map[string]any)
	assert.Equal(t, "Unassigned", task["status"])
	assert.Nil(t, task["assignedToUserId"])
}

func TestReassignTaskHandler(t *testing.T) {
	t.Parallel()

	t.Run("error - missing newEmployeeId", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, newMemStore())

		rec := doJSON(router, http.MethodPut, "/tasks/t1/reassign", gin.H{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success - progress preserved", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		empA := "emp-a"
		seedHandlerTask(store, "t1", models.StatusCompleted, &empA)
		seedHandlerEmployee(store, "emp-b")
		router := newTestRouter(t, store)

		rec := doJSON(router, http.MethodPut, "/tasks/t1/reassign", gin.H{"newEmployeeId": "emp-b"})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		task := body["task"].(map[string]any)
		assert.Equal(t, "Completed", task["status"])
		assert.Equal(t, "emp-b", task["assignedToUserId"])
	})
}

func TestUpdateTaskHandler(t *testing.T) {
	t.Parallel()

	t.Run("error - disallowed transition", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		emp := "emp-1"
		seedHandlerTask(store, "t1", models.StatusPending, &emp)
		router := newTestRouter(t, store)

		rec := doJSON(router, http.MethodPut, "/tasks/t1", gin.H{"status": "Verified"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Contains(t, body["message"], "status transition not allowed")
	})

	t.Run("success - status and notes updated together", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		emp := "emp-1"
		seedHandlerTask(store, "t1", models.StatusPending, &emp)
		router := newTestRouter(t, store)

		rec := doJSON(router, http.MethodPut, "/tasks/t1", gin.H{
			"status": "Completed", "notes": "done on site",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		task := body["task"].(map[string]any)
		assert.Equal(t, "Completed", task["status"])
		assert.Equal(t, "done on site", task["notes"])
		assert.NotNil(t, task["completedAt"])
	})
}

func TestDeleteTaskHandler(t *testing.T) {
	t.Parallel()

	t.Run("error - not found", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, newMemStore())

		rec := doJSON(router, http.MethodDelete, "/tasks/missing", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		seedHandlerTask(store, "t1", models.StatusUnassigned, nil)
		router := newTestRouter(t, store)

		rec := doJSON(router, http.MethodDelete, "/tasks/t1", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, store.tasks)
	})
}

func TestListEmployeesHandler(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	seedHandlerEmployee(store, "emp-1")
	store.users["boss"] = models.User{ID: "boss", Role: models.RoleAdmin, Active: true}
	router := newTestRouter(t, store)

	rec := doJSON(router, http.MethodGet, "/employees", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	employees := body["employees"].([]any)
	require.Len(t, employees, 1)
}

func multipartUpload(t *testing.T, fieldFilename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fieldFilename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func TestBulkUploadHandler(t *testing.T) {
	t.Parallel()

	t.Run("error - no file field", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, newMemStore())

		req := httptest.NewRequest(http.MethodPost, "/tasks/bulk-upload", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("error - wrong extension", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, newMemStore())
		buf, contentType := multipartUpload(t, "tasks.csv", []byte("CaseID,Pincode\n"))

		req := httptest.NewRequest(http.MethodPost, "/tasks/bulk-upload", buf)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "only .xlsx and .xls files are accepted", body["message"])
	})

	t.Run("error - corrupt workbook", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, newMemStore())
		buf, contentType := multipartUpload(t, "tasks.xlsx", []byte("not a workbook"))

		req := httptest.NewRequest(http.MethodPost, "/tasks/bulk-upload", buf)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "file is empty or invalid format", body["message"])
	})

	t.Run("success - template round trip", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		router := newTestRouter(t, store)

		// The downloadable template carries one valid example row, so
		// uploading it back imports exactly one task.
		workbook, err := bulkimport.BuildTemplate()
		require.NoError(t, err)
		buf, contentType := multipartUpload(t, "template.xlsx", workbook.Bytes())

		req := httptest.NewRequest(http.MethodPost, "/tasks/bulk-upload", buf)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.InDelta(t, 1, body["successCount"], 0)
		assert.InDelta(t, 0, body["errorCount"], 0)
		require.Len(t, store.tasks, 1)
	})
}

func TestDownloadTemplateHandler(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, newMemStore())

	rec := doJSON(router, http.MethodGet, "/tasks/bulk-upload/template", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "task-import-template.xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())
}

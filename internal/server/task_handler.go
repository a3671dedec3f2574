package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/bulkimport"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/dispatch"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/metrics"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/models"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/repository"
)

// TaskHandler handles the HTTP surface for task operations.
type TaskHandler struct {
	svc      *dispatch.Service
	importer *bulkimport.Importer
	queries  Queries
	log      *slog.Logger
	metrics  *metrics.Metrics
	limits   UploadLimits
}

// NewTaskHandler creates a new TaskHandler instance.
func NewTaskHandler(
	log *slog.Logger,
	svc *dispatch.Service,
	importer *bulkimport.Importer,
	queries Queries,
	mtr *metrics.Metrics,
	limits UploadLimits,
) *TaskHandler {
	return &TaskHandler{
		svc:      svc,
		importer: importer,
		queries:  queries,
		log:      log,
		metrics:  mtr,
		limits:   limits,
	}
}

type createTaskRequest struct {
	Title      string   `json:"title"      binding:"required"`
	ClientName string   `json:"clientName"`
	PostalCode string   `json:"postalCode"`
	MapURL     string   `json:"mapUrl"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	AssignedTo string   `json:"assignedToUserId"`
	Notes      string   `json:"notes"`
}

type assignRequest struct {
	EmployeeID string `json:"employeeId" binding:"required"`
}

type reassignRequest struct {
	NewEmployeeID string `json:"newEmployeeId" binding:"required"`
}

type updateTaskRequest struct {
	Status     *string `json:"status"`
	Notes      *string `json:"notes"`
	ManualDate *string `json:"manualDate"`
	ManualTime *string `json:"manualTime"`
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "title is required")
		return
	}

	task, err := h.svc.Create(c.Request.Context(), actorFrom(c), dispatch.CreateInput{
		Title:      req.Title,
		ClientName: req.ClientName,
		PostalCode: req.PostalCode,
		MapURL:     req.MapURL,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		AssignedTo: req.AssignedTo,
		Notes:      req.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Task created", "task": task})
}

// GetTask handles GET /tasks/:id.
func (h *TaskHandler) GetTask(c *gin.Context) {
	started := time.Now()
	task, err := h.queries.GetTaskByID(c.Request.Context(), c.Param("id"))
	h.metrics.DBQueryDuration.WithLabelValues("get_task").Observe(time.Since(started).Seconds())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "task": task})
}

// ListTasks handles GET /tasks with optional status/assignee filters.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	filter := repository.TaskFilter{
		Status:     models.TaskStatus(c.Query("status")),
		AssignedTo: c.Query("assignedTo"),
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		failure(c, http.StatusBadRequest, "unknown status filter")
		return
	}

	started := time.Now()
	tasks, err := h.queries.ListTasks(c.Request.Context(), filter)
	h.metrics.DBQueryDuration.WithLabelValues("list_tasks").Observe(time.Since(started).Seconds())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "tasks": emptyIfNil(tasks)})
}

// ListUnassignedTasks handles GET /tasks/unassigned with an optional
// case-insensitive substring search over title, postal code and notes.
func (h *TaskHandler) ListUnassignedTasks(c *gin.Context) {
	started := time.Now()
	tasks, err := h.queries.ListUnassignedTasks(c.Request.Context(), c.Query("search"))
	h.metrics.DBQueryDuration.WithLabelValues("list_unassigned").Observe(time.Since(started).Seconds())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "tasks": emptyIfNil(tasks)})
}

// AssignTask handles POST /tasks/:id/assign.
func (h *TaskHandler) AssignTask(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "employeeId is required")
		return
	}

	task, err := h.svc.Assign(c.Request.Context(), actorFrom(c), c.Param("id"), req.EmployeeID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Task assigned", "task": task})
}

// UnassignTask handles POST /tasks/:id/unassign.
func (h *TaskHandler) UnassignTask(c *gin.Context) {
	task, err := h.svc.Unassign(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Task unassigned", "task": task})
}

// ReassignTask handles PUT /tasks/:id/reassign.
func (h *TaskHandler) ReassignTask(c *gin.Context) {
	var req reassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "newEmployeeId is required")
		return
	}

	task, err := h.svc.Reassign(c.Request.Context(), actorFrom(c), c.Param("id"), req.NewEmployeeID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Task reassigned", "task": task})
}

// UpdateTask handles PUT /tasks/:id for status, notes and manual overrides.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "invalid request body")
		return
	}

	input := dispatch.UpdateInput{
		Notes:      req.Notes,
		ManualDate: req.ManualDate,
		ManualTime: req.ManualTime,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}

	task, err := h.svc.Update(c.Request.Context(), actorFrom(c), c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Task updated", "task": task})
}

// DeleteTask handles DELETE /tasks/:id. Deletion is permanent.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Task deleted"})
}

// ListEmployees handles GET /employees, the assignment targets.
func (h *TaskHandler) ListEmployees(c *gin.Context) {
	started := time.Now()
	employees, err := h.queries.ListEmployees(c.Request.Context())
	h.metrics.DBQueryDuration.WithLabelValues("list_employees").Observe(time.Since(started).Seconds())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "employees": employees})
}

// respondError maps domain errors to HTTP statuses. Internal detail is
// logged, never returned to the caller.
func (h *TaskHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrTaskNotFound):
		failure(c, http.StatusNotFound, "Task not found")
	case errors.Is(err, repository.ErrUserNotFound):
		failure(c, http.StatusNotFound, "Employee not found")
	case errors.Is(err, dispatch.ErrNotAnEmployee):
		failure(c, http.StatusNotFound, "User is not a valid employee target")
	case errors.Is(err, dispatch.ErrValidation), errors.Is(err, dispatch.ErrInvalidTransition):
		failure(c, http.StatusBadRequest, err.Error())
	default:
		h.log.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		failure(c, http.StatusInternalServerError, "internal server error")
	}
}

func failure(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// actorFrom resolves the acting identity for audit records. Authentication
// lives outside this service; the upstream proxy forwards the identity.
func actorFrom(c *gin.Context) string {
	if actor := c.GetHeader("X-Actor"); actor != "" {
		return actor
	}
	return "admin"
}

func emptyIfNil(tasks []models.Task) []models.Task {
	if tasks == nil {
		return []models.Task{}
	}
	return tasks
}

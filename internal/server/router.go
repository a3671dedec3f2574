package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/bulkimport"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/dispatch"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/metrics"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/models"
	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/repository"
)

// Queries is the read-side surface the handlers use directly; mutations go
// through the dispatch service instead.
type Queries interface {
	GetTaskByID(ctx context.Context, id string) (models.Task, error)
	ListTasks(ctx context.Context, filter repository.TaskFilter) ([]models.Task, error)
	ListUnassignedTasks(ctx context.Context, search string) ([]models.Task, error)
	ListEmployees(ctx context.Context) ([]models.User, error)
}

// UploadLimits bounds what the bulk-upload endpoint accepts.
type UploadLimits struct {
	MaxBytes int64  // Upload size cap
	TmpDir   string // Where the transient spreadsheet is written
}

// NewRouter builds the gin engine with all task routes, the health check and
// the metrics endpoint.
func NewRouter(
	log *slog.Logger,
	svc *dispatch.Service,
	importer *bulkimport.Importer,
	queries Queries,
	mtr *metrics.Metrics,
	reg *prometheus.Registry,
	health http.Handler,
	limits UploadLimits,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), requestMetrics(mtr))

	handler := NewTaskHandler(log, svc, importer, queries, mtr, limits)

	router.POST("/tasks", handler.CreateTask)
	router.GET("/tasks", handler.ListTasks)
	router.GET("/tasks/unassigned", handler.ListUnassignedTasks)
	router.GET("/tasks/bulk-upload/template", handler.DownloadTemplate)
	router.POST("/tasks/bulk-upload", handler.BulkUpload)
	router.GET("/tasks/:id", handler.GetTask)
	router.PUT("/tasks/:id", handler.UpdateTask)
	router.DELETE("/tasks/:id", handler.DeleteTask)
	router.POST("/tasks/:id/assign", handler.AssignTask)
	router.POST("/tasks/:id/unassign", handler.UnassignTask)
	router.PUT("/tasks/:id/reassign", handler.ReassignTask)
	router.GET("/employees", handler.ListEmployees)

	router.GET("/healthz", gin.WrapH(health))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return router
}

// requestMetrics observes the duration of each request, labeled by method
// and route pattern.
func requestMetrics(mtr *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		mtr.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(started).Seconds())
	}
}

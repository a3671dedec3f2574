package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the application.
// It covers task creation, assignment operations, bulk import outcomes
// and the latency of HTTP requests and database-backed queries.
type Metrics struct {
	TasksCreated        prometheus.Counter       // Counter for created tasks
	AssignmentOps       *prometheus.CounterVec   // Counter for dispatch operations
	ImportRows          *prometheus.CounterVec   // Counter for bulk import row outcomes
	ImportDuration      prometheus.Histogram     // Histogram for bulk import run durations
	DBQueryDuration     *prometheus.HistogramVec // Histogram for database query durations
	HTTPRequestDuration *prometheus.HistogramVec // Histogram for HTTP request durations
}

// NewMetrics creates a new Metrics instance with the provided Prometheus
// Registerer and registers every collector on it.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		TasksCreated: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "dispatch_tasks_created_total",
			Help: "Total number of tasks created, directly or via bulk import",
		}),
		AssignmentOps: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_assignment_operations_total",
			Help: "Total number of dispatch operations",
		}, []string{"operation"}), // operation: assign, unassign, reassign, update_status, update, delete
		ImportRows: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_import_rows_total",
			Help: "Total number of bulk import rows by outcome",
		}, []string{"outcome"}), // outcome: created, rejected
		ImportDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "dispatch_import_duration_seconds",
			Help:    "Duration of bulk import runs.",
			Buckets: prometheus.DefBuckets,
		}),
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dispatch_db_query_duration_seconds",
			Help:    "Duration of database queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}), // query_type: 'list_tasks', 'get_task', 'list_employees'
		HTTPRequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dispatch_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for ReleaseHub
type Metrics struct {
	// Template instantiation metrics
	TemplateApplications *prometheus.CounterVec
	ApplyDuration        *prometheus.HistogramVec
	TasksInstantiated    *prometheus.CounterVec
	TasksSkipped         *prometheus.CounterVec

	// Task lifecycle metrics
	TaskCommands  *prometheus.CounterVec
	CommandErrors *prometheus.CounterVec

	// Snooze sweeper metrics
	SnoozeSweeps    prometheus.Counter
	SnoozesReverted prometheus.Counter

	// Routine scheduler metrics
	RoutineTicks     prometheus.Counter
	RoutinesApplied  prometheus.Counter
	RoutinesUpToDate prometheus.Counter

	// HTTP API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		// Template instantiation metrics
		TemplateApplications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "releasehub_template_applications_total",
				Help: "Total number of template applications",
			},
			[]string{"template", "type", "success"},
		),
		ApplyDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "releasehub_apply_duration_seconds",
				Help:    "Template application duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"template"},
		),
		TasksInstantiated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "releasehub_tasks_instantiated_total",
				Help: "Total number of task instances created",
			},
			[]string{"template"},
		),
		TasksSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "releasehub_tasks_skipped_total",
				Help: "Total number of task instances skipped as already existing",
			},
			[]string{"template"},
		),

		// Task lifecycle metrics
		TaskCommands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "releasehub_task_commands_total",
				Help: "Total number of task lifecycle commands",
			},
			[]string{"command", "success"},
		),
		CommandErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "releasehub_task_command_errors_total",
				Help: "Total number of rejected task lifecycle commands",
			},
			[]string{"command", "error_code"},
		),

		// Snooze sweeper metrics
		SnoozeSweeps: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "releasehub_snooze_sweeps_total",
				Help: "Total number of snooze sweep passes",
			},
		),
		SnoozesReverted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "releasehub_snoozes_reverted_total",
				Help: "Total number of expired snoozes reverted to pending",
			},
		),

		// Routine scheduler metrics
		RoutineTicks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "releasehub_routine_ticks_total",
				Help: "Total number of routine scheduler ticks",
			},
		),
		RoutinesApplied: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "releasehub_routines_applied_total",
				Help: "Total number of routines that received a fresh weekly batch",
			},
		),
		RoutinesUpToDate: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "releasehub_routines_up_to_date_total",
				Help: "Total number of routines already instantiated for the current cycle",
			},
		),

		// HTTP API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "releasehub_http_requests_total",
				Help: "Total number of HTTP API requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "releasehub_http_request_duration_seconds",
				Help:    "HTTP API request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"method", "route"},
		),

		// Error metrics
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "releasehub_errors_total",
				Help: "Total number of errors by structured error code",
			},
			[]string{"error_code"},
		),
	}
}

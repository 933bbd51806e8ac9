package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for task-manager components.
type Registry struct {
	// Task lifecycle metrics
	TasksSubmitted *prometheus.CounterVec
	TasksExecuted  *prometheus.CounterVec
	TasksCompleted *prometheus.CounterVec
	TasksFailed    *prometheus.CounterVec
	TaskDuration   *prometheus.HistogramVec

	// Worker pool metrics
	WorkersActive *prometheus.GaugeVec
	QueueDepth    *prometheus.GaugeVec

	// Result store metrics
	PoolResults *prometheus.CounterVec

	// Timed submission metrics
	TimedSubmissions *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by task-manager components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		TasksSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskman",
				Subsystem: "scheduler",
				Name:      "tasks_submitted_total",
				Help:      "Total number of tasks accepted into the queue",
			},
			[]string{"manager_name"},
		),

		TasksExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskman",
				Subsystem: "scheduler",
				Name:      "tasks_executed_total",
				Help:      "Total number of tasks started by a worker",
			},
			[]string{"manager_name"},
		),

		TasksCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskman",
				Subsystem: "scheduler",
				Name:      "tasks_completed_total",
				Help:      "Total number of tasks completed successfully",
			},
			[]string{"manager_name"},
		),

		TasksFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskman",
				Subsystem: "scheduler",
				Name:      "tasks_failed_total",
				Help:      "Total number of tasks that returned an error",
			},
			[]string{"manager_name"},
		),

		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "taskman",
				Subsystem: "scheduler",
				Name:      "task_duration_seconds",
				Help:      "Time spent executing tasks",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"manager_name"},
		),

		WorkersActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "taskman",
				Subsystem: "workerpool",
				Name:      "workers_active",
				Help:      "Number of live workers",
			},
			[]string{"manager_name"},
		),

		QueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "taskman",
				Subsystem: "workerpool",
				Name:      "queue_depth",
				Help:      "Number of tasks waiting in the queue",
			},
			[]string{"manager_name"},
		),

		PoolResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskman",
				Subsystem: "resultstore",
				Name:      "results_total",
				Help:      "Total number of results deposited per pool",
			},
			[]string{"manager_name", "pool_name"},
		),

		TimedSubmissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "taskman",
				Subsystem: "timed",
				Name:      "submissions_total",
				Help:      "Total number of tasks submitted by the timed scheduler",
			},
			[]string{"scheduler_name"},
		),
	}
}

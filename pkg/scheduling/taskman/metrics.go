package taskman

import (
	"sync"
	"time"

	"github.com/Shadow2ube/task-manager/pkg/metrics"
)

// MetricsHooks wraps a Hooks implementation with Prometheus metrics
// collection. It records task throughput, failures, execution durations and
// live worker counts, then forwards every callback to the wrapped hooks.
//
// A worker executes one task at a time, so durations are tracked with a
// per-worker start-time table.
type MetricsHooks struct {
	name     string
	next     Hooks
	registry *metrics.Registry
	enabled  bool

	mu      sync.Mutex
	started map[int]time.Time
}

// NewMetricsHooks creates a metrics-collecting Hooks decorator. A nil next
// defaults to NopHooks; a nil registry defaults to metrics.DefaultRegistry.
func NewMetricsHooks(name string, next Hooks, registry *metrics.Registry) *MetricsHooks {
	if next == nil {
		next = NopHooks{}
	}
	if registry == nil {
		registry = metrics.DefaultRegistry
	}
	return &MetricsHooks{
		name:     name,
		next:     next,
		registry: registry,
		enabled:  true,
		started:  make(map[int]time.Time),
	}
}

func (h *MetricsHooks) TaskStart(t *Task, workerID int) {
	if h.enabled {
		h.registry.TasksExecuted.WithLabelValues(h.name).Inc()
		h.mu.Lock()
		h.started[workerID] = time.Now()
		h.mu.Unlock()
	}
	h.next.TaskStart(t, workerID)
}

func (h *MetricsHooks) TaskStop(t *Task, workerID int) {
	if h.enabled {
		h.observeDuration(workerID)
		h.registry.TasksCompleted.WithLabelValues(h.name).Inc()
	}
	h.next.TaskStop(t, workerID)
}

func (h *MetricsHooks) TaskFail(t *Task, workerID int, err error) {
	if h.enabled {
		h.observeDuration(workerID)
		h.registry.TasksFailed.WithLabelValues(h.name).Inc()
	}
	h.next.TaskFail(t, workerID, err)
}

func (h *MetricsHooks) WorkerStart(workerID int) {
	if h.enabled {
		h.registry.WorkersActive.WithLabelValues(h.name).Inc()
	}
	h.next.WorkerStart(workerID)
}

func (h *MetricsHooks) WorkerStop(workerID int) {
	if h.enabled {
		h.registry.WorkersActive.WithLabelValues(h.name).Dec()
	}
	h.next.WorkerStop(workerID)
}

// EnableMetrics enables metrics collection.
func (h *MetricsHooks) EnableMetrics(config metrics.Config) error {
	h.enabled = config.Enabled

	if config.Registry != nil {
		h.registry = metrics.NewRegistry(config.Registry)
	}

	return nil
}

// DisableMetrics disables metrics collection.
func (h *MetricsHooks) DisableMetrics() {
	h.enabled = false
}

// MetricsEnabled returns true if metrics are currently enabled.
func (h *MetricsHooks) MetricsEnabled() bool {
	return h.enabled
}

func (h *MetricsHooks) observeDuration(workerID int) {
	h.mu.Lock()
	start, ok := h.started[workerID]
	if ok {
		delete(h.started, workerID)
	}
	h.mu.Unlock()
	if ok {
		h.registry.TaskDuration.WithLabelValues(h.name).Observe(time.Since(start).Seconds())
	}
}

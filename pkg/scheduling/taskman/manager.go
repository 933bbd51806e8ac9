package taskman

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ygrebnov/errorc"
	"golang.org/x/sync/errgroup"

	tmerrors "github.com/Shadow2ube/task-manager/pkg/common/errors"
	"github.com/Shadow2ube/task-manager/pkg/common/validation"
	"github.com/Shadow2ube/task-manager/pkg/metrics"
	"github.com/Shadow2ube/task-manager/pkg/storage/resultstore"
)

// State is the lifecycle phase of a Manager.
type State int32

const (
	// StateIdle is the initial state; no workers are running.
	StateIdle State = iota
	// StateRunning means workers are actively consuming the queue.
	StateRunning
	// StatePaused means workers are alive but not consuming. A task already
	// mid-execution finishes before its worker honors the pause.
	StatePaused
	// StateStopping means workers were signaled to exit after any in-flight task.
	StateStopping
	// StateStopped is terminal: all workers have exited and no further
	// consumption is possible.
	StateStopped
)

// String returns the state name for logs and errors.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

const (
	// DefaultWorkers is the pool size used when Config.Workers is zero.
	DefaultWorkers = 4
	// DefaultIdleInterval is how long an idle worker sleeps between queue
	// checks when the queue is empty or its head is blocked.
	DefaultIdleInterval = 50 * time.Millisecond
)

// Config holds configuration options for creating a Manager.
type Config struct {
	// Workers is the number of worker goroutines. Defaults to DefaultWorkers.
	Workers int

	// IdleInterval is the retry interval for idle workers.
	// Defaults to DefaultIdleInterval.
	IdleInterval time.Duration

	// Hooks receives task/worker transition callbacks. Defaults to NopHooks.
	Hooks Hooks

	// Store is the result store to publish into. A fresh store is created
	// when nil. Pass a shared store to read results across managers or after
	// this manager has stopped.
	Store *resultstore.Store

	// KillOnEmpty and InOrder set the initial scheduling policies; both can
	// be flipped at runtime via Set.
	KillOnEmpty bool
	InOrder     bool

	// Name labels this manager in metrics. Defaults to "default".
	Name string

	// Metrics enables queue and submission instrumentation when non-nil.
	// Hook-side metrics are wired separately through NewMetricsHooks.
	Metrics *metrics.Registry
}

// Manager is a cooperative worker-pool task scheduler. Callers submit named
// tasks, a fixed-size pool of workers executes them, and results land in
// named pools readable through Pools/Pool.
//
// Construct with New or NewWithConfig; each Manager is independent and safe
// for concurrent use. There is no shared global instance.
type Manager struct {
	cfg   Config
	queue *taskQueue
	done  *doneSet
	store *resultstore.Store
	hooks Hooks

	policies policySet

	// ctx is handed to task functions and canceled when Stop is requested.
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	cond    *sync.Cond
	state   State
	spawned bool

	stopOnce sync.Once
	finished chan struct{}

	totalSubmitted int64
	totalCompleted int64
}

// New creates a Manager with the given worker count and default settings.
// It panics if workers is negative; use NewWithConfig for error handling.
func New(workers int) *Manager {
	m, err := NewWithConfig(Config{Workers: workers})
	if err != nil {
		panic(err)
	}
	return m
}

// NewWithConfig creates a Manager with the specified configuration.
func NewWithConfig(cfg Config) (*Manager, error) {
	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers
	}
	if err := validation.ValidatePositive("taskman", "Workers", cfg.Workers); err != nil {
		return nil, err
	}
	if err := validation.ValidateNonNegative("taskman", "IdleInterval", int(cfg.IdleInterval)); err != nil {
		return nil, err
	}
	if cfg.IdleInterval == 0 {
		cfg.IdleInterval = DefaultIdleInterval
	}
	if cfg.Hooks == nil {
		cfg.Hooks = NopHooks{}
	}
	if cfg.Store == nil {
		cfg.Store = resultstore.New()
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:      cfg,
		queue:    newTaskQueue(),
		done:     newDoneSet(),
		store:    cfg.Store,
		hooks:    cfg.Hooks,
		ctx:      ctx,
		cancel:   cancel,
		finished: make(chan struct{}),
	}
	m.cond = sync.NewCond(&m.mu)
	m.policies.set(KillOnEmpty, cfg.KillOnEmpty)
	m.policies.set(InOrder, cfg.InOrder)
	return m, nil
}

// Add appends a task to the back of the queue and returns the fresh id
// assigned to it. Accepted at any time while the manager is not stopping,
// including from inside a running task (re-entrant submission).
//
// Add after Stop fails loudly with ErrStopped; the task is not queued.
func (m *Manager) Add(t Task) (int64, error) {
	if t.Run == nil {
		return 0, errorc.With(tmerrors.ErrNilTask, errorc.String("task", t.Name))
	}

	m.mu.Lock()
	state := m.state
	m.mu.Unlock()
	if state == StateStopping || state == StateStopped {
		return 0, errorc.With(tmerrors.ErrStopped, errorc.String("task", t.Name))
	}

	id := m.queue.add(&t)
	atomic.AddInt64(&m.totalSubmitted, 1)
	if reg := m.cfg.Metrics; reg != nil {
		reg.TasksSubmitted.WithLabelValues(m.cfg.Name).Inc()
		reg.QueueDepth.WithLabelValues(m.cfg.Name).Set(float64(m.queue.len()))
	}
	return id, nil
}

// Start moves the manager to Running. From Idle it spawns the worker
// goroutines and a supervisor that owns their join; from Paused it resumes
// the existing workers. Starting a Running manager is a no-op; starting a
// stopped one returns ErrStopped.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateStopping, StateStopped:
		return tmerrors.ErrStopped
	case StateRunning:
		return nil
	case StatePaused:
		m.state = StateRunning
		m.cond.Broadcast()
		return nil
	}

	m.state = StateRunning
	m.spawned = true

	g := new(errgroup.Group)
	for i := 0; i < m.cfg.Workers; i++ {
		id := i
		g.Go(func() error {
			m.runWorker(id)
			return nil
		})
	}
	go m.supervise(g)
	return nil
}

// supervise joins the workers and marks the manager Stopped. It runs for the
// whole Running/Paused lifetime and is the only writer of the terminal state.
func (m *Manager) supervise(g *errgroup.Group) {
	_ = g.Wait()
	m.cancel()

	m.mu.Lock()
	m.state = StateStopped
	m.cond.Broadcast()
	m.mu.Unlock()

	close(m.finished)
}

// Pause moves a Running manager to Paused. Workers finish the task they are
// executing, then idle until Start or Stop; no task is interrupted.
func (m *Manager) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateRunning {
		m.state = StatePaused
	}
}

// Stop signals every worker to exit after finishing any in-flight task and
// returns a channel that closes once all workers have exited and the manager
// is Stopped. Stop is idempotent; later calls return the same channel.
func (m *Manager) Stop() <-chan struct{} {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		spawned := m.spawned
		if m.state != StateStopped {
			m.state = StateStopping
		}
		m.cond.Broadcast()
		m.mu.Unlock()

		m.cancel()

		if !spawned {
			// No workers were ever started, so there is nothing to join.
			m.mu.Lock()
			m.state = StateStopped
			m.cond.Broadcast()
			m.mu.Unlock()
			close(m.finished)
		}
	})
	return m.finished
}

// Join blocks until the manager reaches Stopped, either because Stop was
// called or because KillOnEmpty drained the pool. If Start was never called,
// Join returns only after Stop.
func (m *Manager) Join() {
	<-m.finished
}

// IsDone reports whether the queue is momentarily empty. It is a
// non-authoritative snapshot: workers may still be executing or publishing.
// Callers needing a hard guarantee must use Join.
func (m *Manager) IsDone() bool {
	return m.queue.len() == 0
}

// Tasks returns every task name known to the manager: completed names in
// completion order (duplicates included), followed by pending names in
// queue order.
func (m *Manager) Tasks() []string {
	return append(m.done.list(), m.queue.names()...)
}

// Set flips a scheduling policy. The change takes effect at the next
// scheduling decision and never retroactively affects a running task.
func (m *Manager) Set(p Policy, v bool) {
	m.policies.set(p, v)
}

// Get reports the current value of a scheduling policy.
func (m *Manager) Get(p Policy) bool {
	return m.policies.get(p)
}

// State returns the current lifecycle phase.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Store returns the result store this manager publishes into. The store
// remains valid after the manager stops.
func (m *Manager) Store() *resultstore.Store {
	return m.store
}

// Pools returns a materialized copy of every result pool.
func (m *Manager) Pools() map[string]map[int]string {
	return m.store.Pools()
}

// Pool returns a copy of one result pool; unknown names yield an empty map.
func (m *Manager) Pool(name string) map[int]string {
	return m.store.Pool(name)
}

// ClearPool empties one result pool without resetting its slot counter.
func (m *Manager) ClearPool(name string) {
	m.store.Clear(name)
}

// Stats is a point-in-time snapshot of manager activity.
type Stats struct {
	State     State
	Workers   int
	Queued    int
	Done      int
	Submitted int64
	Completed int64
}

// Stats returns a snapshot of the manager's current activity.
func (m *Manager) Stats() Stats {
	return Stats{
		State:     m.State(),
		Workers:   m.cfg.Workers,
		Queued:    m.queue.len(),
		Done:      m.done.size(),
		Submitted: atomic.LoadInt64(&m.totalSubmitted),
		Completed: atomic.LoadInt64(&m.totalCompleted),
	}
}

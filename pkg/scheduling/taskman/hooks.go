package taskman

// Hooks receives notifications around task and worker transitions.
//
// Hooks run synchronously on the worker goroutine that triggers them, with no
// scheduler lock held, so a slow or blocking hook stalls that worker and only
// that worker. Implementations observing shared state must do their own
// synchronization. Inject hooks at construction via Config; the manager does
// not support swapping them while workers run.
type Hooks interface {
	// TaskStart fires just before a worker executes a task.
	TaskStart(t *Task, workerID int)
	// TaskStop fires after a task completes without error.
	TaskStop(t *Task, workerID int)
	// TaskFail fires after a task returns a non-nil error. The task is still
	// marked done and its result is still published.
	TaskFail(t *Task, workerID int, err error)
	// WorkerStart fires exactly once per worker, before its loop begins.
	WorkerStart(workerID int)
	// WorkerStop fires exactly once per worker, after its loop exits.
	WorkerStop(workerID int)
}

// NopHooks is the default Hooks implementation; every method is a no-op.
type NopHooks struct{}

func (NopHooks) TaskStart(*Task, int)       {}
func (NopHooks) TaskStop(*Task, int)        {}
func (NopHooks) TaskFail(*Task, int, error) {}
func (NopHooks) WorkerStart(int)            {}
func (NopHooks) WorkerStop(int)             {}

// HookFuncs adapts plain functions to the Hooks interface. Nil fields are
// skipped, so callers only set the transitions they care about.
type HookFuncs struct {
	OnTaskStart   func(t *Task, workerID int)
	OnTaskStop    func(t *Task, workerID int)
	OnTaskFail    func(t *Task, workerID int, err error)
	OnWorkerStart func(workerID int)
	OnWorkerStop  func(workerID int)
}

func (h HookFuncs) TaskStart(t *Task, workerID int) {
	if h.OnTaskStart != nil {
		h.OnTaskStart(t, workerID)
	}
}

func (h HookFuncs) TaskStop(t *Task, workerID int) {
	if h.OnTaskStop != nil {
		h.OnTaskStop(t, workerID)
	}
}

func (h HookFuncs) TaskFail(t *Task, workerID int, err error) {
	if h.OnTaskFail != nil {
		h.OnTaskFail(t, workerID, err)
	}
}

func (h HookFuncs) WorkerStart(workerID int) {
	if h.OnWorkerStart != nil {
		h.OnWorkerStart(workerID)
	}
}

func (h HookFuncs) WorkerStop(workerID int) {
	if h.OnWorkerStop != nil {
		h.OnWorkerStop(workerID)
	}
}

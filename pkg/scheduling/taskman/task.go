package taskman

import "context"

// TaskFunc is the body of a task. It receives the manager's run context and
// returns the result string that will be deposited into the task's target
// pool. A non-nil error marks the task failed; the result string is published
// either way.
//
// The context is canceled when Stop is requested. A running task is never
// interrupted by the manager, but a long-running function may watch ctx to
// wind down early on its own.
type TaskFunc func(ctx context.Context) (string, error)

// Task is a named unit of deferred work.
//
// Name does not have to be unique; it is what dependency resolution and the
// done set operate on. After optionally names another task that must finish
// before this one becomes eligible. Pool names the result pool this task's
// output goes to and defaults to Name when empty.
type Task struct {
	Name  string
	Run   TaskFunc
	After string
	Pool  string

	// id is assigned exactly once, when the task is accepted into the queue.
	id int64
}

// ID returns the identifier the manager assigned when the task was accepted,
// or 0 if the task has not been queued yet.
func (t *Task) ID() int64 { return t.id }

// targetPool resolves the pool that receives this task's result.
func (t *Task) targetPool() string {
	if t.Pool != "" {
		return t.Pool
	}
	return t.Name
}

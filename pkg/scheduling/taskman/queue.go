package taskman

import "sync"

// popStatus reports the outcome of a popEligible call.
type popStatus int

const (
	// popOK means an eligible task was removed from the queue.
	popOK popStatus = iota
	// popEmpty means the queue held no tasks at all.
	popEmpty
	// popBlocked means tasks exist but none is eligible yet.
	popBlocked
)

// taskQueue is the ordered backlog of pending tasks. It assigns task ids and
// implements the dependency-resolution scan. The queue lock is never held
// while a task function or hook runs.
type taskQueue struct {
	mu     sync.Mutex
	items  []*Task
	nextID int64
}

func newTaskQueue() *taskQueue {
	return &taskQueue{nextID: 1}
}

// add appends a task to the back of the queue and assigns it a fresh id.
// Safe to call at any time, including from a running task.
func (q *taskQueue) add(t *Task) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	t.id = q.nextID
	q.nextID++
	q.items = append(q.items, t)
	return t.id
}

// popEligible removes and returns the next eligible task.
//
// The front of the queue is eligible when its dependency is empty or already
// in the done set. An ineligible front is handled according to policy:
//
//   - inOrder false: the front is rotated to the back and the scan continues,
//     so unrelated ready work is not starved by one unmet dependency. The scan
//     visits each task at most once per call; if a full rotation finds nothing
//     eligible, popBlocked is returned and the caller retries later.
//   - inOrder true: the front is never skipped. popBlocked is returned until
//     that exact dependency completes, preserving strict head-of-line order.
//
// Ties between simultaneously eligible tasks resolve by insertion order.
// A dependency naming a task that never runs rotates (or blocks) forever;
// that livelock is an accepted caller error, not detected here.
func (q *taskQueue) popEligible(done *doneSet, inOrder bool) (*Task, popStatus) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	if n == 0 {
		return nil, popEmpty
	}

	if inOrder {
		head := q.items[0]
		if !done.contains(head.After) {
			return nil, popBlocked
		}
		q.items = q.items[1:]
		return head, popOK
	}

	for i := 0; i < n; i++ {
		head := q.items[0]
		if done.contains(head.After) {
			q.items = q.items[1:]
			return head, popOK
		}
		// Rotate the ineligible task to the back.
		q.items = append(q.items[1:], head)
	}
	return nil, popBlocked
}

// len returns the number of queued tasks.
func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// names returns the queued task names in queue order.
func (q *taskQueue) names() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]string, len(q.items))
	for i, t := range q.items {
		out[i] = t.Name
	}
	return out
}

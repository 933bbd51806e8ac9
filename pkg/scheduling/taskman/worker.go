package taskman

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// runWorker is the main loop for one worker. Each iteration walks the same
// state machine: check stop, honor pause, try to pop an eligible task, then
// run and publish it. Task functions and hooks always run with no scheduler
// lock held.
func (m *Manager) runWorker(id int) {
	m.hooks.WorkerStart(id)
	defer m.hooks.WorkerStop(id)

	for {
		if !m.awaitRunning() {
			return
		}

		t, status := m.queue.popEligible(m.done, m.policies.get(InOrder))
		switch status {
		case popOK:
			m.execute(id, t)
		case popEmpty:
			if m.policies.get(KillOnEmpty) {
				return
			}
			if !m.idleWait() {
				return
			}
		case popBlocked:
			// Tasks exist but none is eligible; KillOnEmpty does not apply
			// to a non-empty queue.
			if !m.idleWait() {
				return
			}
		}
	}
}

// awaitRunning blocks while the manager is Paused and reports whether the
// worker should keep consuming. False means a stop was requested.
func (m *Manager) awaitRunning() bool {
	m.mu.Lock()
	for m.state == StatePaused {
		m.cond.Wait()
	}
	ok := m.state == StateRunning
	m.mu.Unlock()
	return ok
}

// idleWait sleeps for one idle interval, waking early on stop. It returns
// false when the worker should exit.
func (m *Manager) idleWait() bool {
	timer := time.NewTimer(m.cfg.IdleInterval)
	defer timer.Stop()
	select {
	case <-m.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// execute runs one task to completion and publishes its outcome. The result
// is deposited into the target pool before the task's name enters the done
// set, so a dependent task can never publish ahead of its dependency.
func (m *Manager) execute(workerID int, t *Task) {
	m.hooks.TaskStart(t, workerID)

	result, err := m.runTask(t)
	if err != nil {
		m.hooks.TaskFail(t, workerID, err)
	} else {
		m.hooks.TaskStop(t, workerID)
	}

	// Publish regardless of error: a failed task still occupies a result
	// slot, holding whatever string the function returned.
	m.store.Append(t.targetPool(), result)
	m.done.add(t.Name)
	atomic.AddInt64(&m.totalCompleted, 1)

	if reg := m.cfg.Metrics; reg != nil {
		reg.PoolResults.WithLabelValues(m.cfg.Name, t.targetPool()).Inc()
		reg.QueueDepth.WithLabelValues(m.cfg.Name).Set(float64(m.queue.len()))
	}
}

// runTask invokes the task function, converting a panic into a task failure
// so one bad task cannot take down its worker.
func (m *Manager) runTask(t *Task) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v\nStack trace:\n%s", r, debug.Stack())
		}
	}()
	return t.Run(m.ctx)
}

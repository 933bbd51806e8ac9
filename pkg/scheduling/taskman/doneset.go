package taskman

import "sync"

// doneSet records the names of tasks that have finished, successfully or not.
// It grows monotonically for the life of the manager and is the sole input to
// dependency resolution. Membership is by name, so two tasks sharing a name
// satisfy the same dependency.
type doneSet struct {
	mu    sync.RWMutex
	names map[string]struct{}
	order []string
}

func newDoneSet() *doneSet {
	return &doneSet{names: make(map[string]struct{})}
}

// add appends a finished task name. Duplicate names are kept in order so that
// callers can see every completion, but membership is unaffected.
func (d *doneSet) add(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names[name] = struct{}{}
	d.order = append(d.order, name)
}

// contains reports whether a task with the given name has finished.
// The empty name is always satisfied: it means "no dependency".
func (d *doneSet) contains(name string) bool {
	if name == "" {
		return true
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.names[name]
	return ok
}

// list returns the finished names in completion order.
func (d *doneSet) list() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// size returns the number of recorded completions, duplicates included.
func (d *doneSet) size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.order)
}

package taskman

import "sync"

// Policy identifies a runtime-mutable scheduling policy.
type Policy int

const (
	// KillOnEmpty makes idle workers exit instead of waiting when the queue
	// is empty. With it unset, workers stay alive until Stop.
	KillOnEmpty Policy = iota

	// InOrder blocks the resolver on an unmet dependency at the head of the
	// queue instead of rotating past it.
	InOrder
)

// String returns the policy name for logs and errors.
func (p Policy) String() string {
	switch p {
	case KillOnEmpty:
		return "KillOnEmpty"
	case InOrder:
		return "InOrder"
	default:
		return "Unknown"
	}
}

// policySet holds the two scheduling policies behind a read-write lock.
// A change takes effect at the next scheduling decision; it is never applied
// retroactively to a task already dequeued or running.
type policySet struct {
	mu          sync.RWMutex
	killOnEmpty bool
	inOrder     bool
}

func (s *policySet) set(p Policy, v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch p {
	case KillOnEmpty:
		s.killOnEmpty = v
	case InOrder:
		s.inOrder = v
	}
}

func (s *policySet) get(p Policy) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch p {
	case KillOnEmpty:
		return s.killOnEmpty
	case InOrder:
		return s.inOrder
	default:
		return false
	}
}

package errors

import "errors"

// Common error types used across the task-manager library

var (
	// ErrStopped indicates that an operation was attempted on a manager that
	// has been stopped and can no longer accept or execute work
	ErrStopped = errors.New("task manager is stopped")

	// ErrNilTask indicates that a task was submitted without a function to run
	ErrNilTask = errors.New("task has no function")

	// ErrAlreadyRunning indicates that a lifecycle transition was attempted
	// on a component that is already running
	ErrAlreadyRunning = errors.New("already running")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// IsTerminal returns true if the error indicates the manager can no longer
// accept or execute work
func IsTerminal(err error) bool {
	return errors.Is(err, ErrStopped)
}

// IsUsage returns true if the error indicates incorrect caller input rather
// than a lifecycle state problem
func IsUsage(err error) bool {
	return errors.Is(err, ErrNilTask) || errors.Is(err, ErrInvalidConfiguration)
}

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"stopped", ErrStopped, true},
		{"wrapped stopped", fmt.Errorf("add %q: %w", "a", ErrStopped), true},
		{"nil task", ErrNilTask, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTerminal(tt.err); got != tt.want {
				t.Errorf("IsTerminal(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsUsage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil task", ErrNilTask, true},
		{"invalid config", ErrInvalidConfiguration, true},
		{"wrapped invalid config", fmt.Errorf("workers: %w", ErrInvalidConfiguration), true},
		{"stopped", ErrStopped, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUsage(tt.err); got != tt.want {
				t.Errorf("IsUsage(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

package gas

import (
	"errors"
	"fmt"
)

// Domain errors for simulation setup and execution.
var (
	// ErrConfiguration indicates an invalid setup detected before any step runs.
	ErrConfiguration = errors.New("gas: invalid configuration")

	// ErrInvariant indicates that energy conservation or the capacity bound broke.
	ErrInvariant = errors.New("gas: invariant violated")
)

// InvariantError carries the context of a broken invariant.
type InvariantError struct {
	Op     string
	I, J   int
	Detail string
}

func (e *InvariantError) Error() string {
	if e.I < 0 {
		return fmt.Sprintf("%s: %s: %s", ErrInvariant, e.Op, e.Detail)
	}
	return fmt.Sprintf("%s: %s (disks %d,%d): %s", ErrInvariant, e.Op, e.I, e.J, e.Detail)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariant
}

// Invariantf builds an InvariantError that is not tied to a disk pair.
func Invariantf(op, format string, args ...any) *InvariantError {
	return &InvariantError{Op: op, I: -1, J: -1, Detail: fmt.Sprintf(format, args...)}
}

// Configf wraps ErrConfiguration with a formatted message.
func Configf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

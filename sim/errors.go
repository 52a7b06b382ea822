package sim

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig marks a configuration that failed validation. It is fatal:
// no world is built from an invalid configuration.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrUnknownKey is returned when a validated mapping is asked for a key it was not loaded with.
var ErrUnknownKey = errors.New("unknown key")

// ErrMissingDock is returned when a warehouse has no dock location to receive or scan at.
var ErrMissingDock = errors.New("warehouse has no dock")

// ErrMissingBalance is returned when a processor references a balance that does not exist.
var ErrMissingBalance = errors.New("inventory balance not found")

// invalidf builds an ErrInvalidConfig-wrapped error.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// InvariantError reports a generation defect, e.g. a sampled value outside its
// configured bound. It is never retryable.
type InvariantError struct {
	Component string
	Detail    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: invariant violated: %s", e.Component, e.Detail)
}

// NewInvariantError returns an InvariantError with a formatted detail.
func NewInvariantError(component, format string, args ...any) error {
	return &InvariantError{Component: component, Detail: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps a failed flush, commit or rollback. The day that
// produced it can be replayed after rolling back to the last commit.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ProcessorError aborts a tick. It records which processor failed on which day.
type ProcessorError struct {
	Processor string
	Date      time.Time
	Err       error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor %s failed on %s: %v", e.Processor, e.Date.Format(DateLayout), e.Err)
}

func (e *ProcessorError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is transient. Only persistence failures are.
func IsRetryable(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

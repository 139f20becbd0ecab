package task

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled is returned by Token.Checkpoint once cancellation was requested.
	ErrCancelled = errors.New("task cancelled")

	// ErrRuntimeStopped is the failure reported for submissions the runtime
	// could not execute because it was stopped.
	ErrRuntimeStopped = errors.New("task runtime stopped")

	// ErrAlreadyInitialized is returned by Init when called a second time.
	ErrAlreadyInitialized = errors.New("task runtime already initialized")

	// ErrNotInitialized is returned by Global before Init succeeded.
	ErrNotInitialized = errors.New("task runtime not initialized")

	// ErrQueueClosed is returned when enqueueing after the queue was closed.
	ErrQueueClosed = errors.New("task queue is closed")

	// ErrNilTask is the failure reported when Submit is given no task.
	ErrNilTask = errors.New("task is nil")
)

// PanicError carries a panic recovered from a task together with the stack
// of the goroutine that panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it was an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

package task

import (
	"context"
)

// TaskStatus represents the current state of a submission
type TaskStatus string

// Possible task status values
const (
	TaskStatusCreated   TaskStatus = "created"
	TaskStatusSubmitted TaskStatus = "submitted"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Task represents one unit of cancellable work.
type Task interface {
	// Type returns the task type identifier used in logs and metrics
	Type() string

	// Execute runs the task logic. ctx is cancelled when cancellation is
	// requested; implementations should also call tok.Checkpoint before
	// every expensive step.
	Execute(ctx context.Context, tok *Token) (any, error)
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc struct {
	Name string
	Fn   func(ctx context.Context, tok *Token) (any, error)
}

// Type returns the task type identifier
func (f TaskFunc) Type() string {
	return f.Name
}

// Execute runs the task logic
func (f TaskFunc) Execute(ctx context.Context, tok *Token) (any, error) {
	return f.Fn(ctx, tok)
}

package task

import (
	"context"

	"go.uber.org/atomic"
)

// MockTask is a configurable implementation of the Task interface for testing
type MockTask struct {
	TaskType  string
	ExecuteFn func(ctx context.Context, tok *Token) (any, error)

	calls atomic.Int32
}

// NewMockTask creates a MockTask of the given type that completes with a nil value
func NewMockTask(taskType string) *MockTask {
	return &MockTask{
		TaskType:  taskType,
		ExecuteFn: func(ctx context.Context, tok *Token) (any, error) { return nil, nil },
	}
}

// Type returns the task type identifier
func (t *MockTask) Type() string {
	return t.TaskType
}

// Execute runs the task logic
func (t *MockTask) Execute(ctx context.Context, tok *Token) (any, error) {
	t.calls.Inc()
	return t.ExecuteFn(ctx, tok)
}

// Calls returns how many times Execute ran
func (t *MockTask) Calls() int {
	return int(t.calls.Load())
}

// CheckpointLoop returns an ExecuteFn that passes steps checkpoints and then
// completes with the number of steps taken.
func CheckpointLoop(steps int) func(ctx context.Context, tok *Token) (any, error) {
	return func(ctx context.Context, tok *Token) (any, error) {
		for i := 0; i < steps; i++ {
			if err := tok.Checkpoint(); err != nil {
				return nil, err
			}
		}
		return steps, nil
	}
}

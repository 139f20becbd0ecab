package task

import "time"

// Observer receives lifecycle notifications from a Runtime. Implementations
// must be safe for concurrent use and must not block.
type Observer interface {
	// TaskStarted is called once a task is registered.
	TaskStarted(taskType string)
	// TaskFinished is called once the task's outcome is final.
	TaskFinished(taskType string, kind OutcomeKind, elapsed time.Duration)
	// TaskPanicked is called when a panic was recovered from the task.
	TaskPanicked(taskType string)
	// CancelRequested is called for every cancel call with its result.
	CancelRequested(effected bool)
}

type nopObserver struct{}

func (nopObserver) TaskStarted(string)                              {}
func (nopObserver) TaskFinished(string, OutcomeKind, time.Duration) {}
func (nopObserver) TaskPanicked(string)                             {}
func (nopObserver) CancelRequested(bool)                            {}

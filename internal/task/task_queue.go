package task

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Submission is a registered task waiting for, or undergoing, execution.
type Submission struct {
	handle uuid.UUID
	task   Task
	token  *Token
	done   chan Outcome
}

// Handle returns the registry handle of the submission
func (s *Submission) Handle() uuid.UUID {
	return s.handle
}

// Type returns the submitted task's type
func (s *Submission) Type() string {
	return s.task.Type()
}

// TaskQueueReader provides read-only access to the submission channel
// allowing workers to consume submissions without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming submissions
	GetChannel() <-chan *Submission
}

// TaskQueueWriter provides write access to the task queue
type TaskQueueWriter interface {
	// Enqueue adds a submission, blocking while the queue is full.
	// Returns ctx.Err() if ctx ends first, ErrQueueClosed once closed.
	Enqueue(ctx context.Context, s *Submission) error

	// Close closes the task queue, preventing further submission
	Close()
}

// TaskQueue implements a buffered submission queue that satisfies both
// TaskQueueReader and TaskQueueWriter interfaces
type TaskQueue struct {
	tasks     chan *Submission
	done      chan struct{}
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	logger    *slog.Logger
}

// NewTaskQueue creates a new task queue with the specified buffer size
func NewTaskQueue(size int, logger *slog.Logger) *TaskQueue {
	return &TaskQueue{
		tasks:  make(chan *Submission, size),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Enqueue adds a submission to the queue for processing
func (q *TaskQueue) Enqueue(ctx context.Context, s *Submission) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- s:
		q.logger.Debug("task enqueued",
			"task_id", s.handle,
			"task_type", s.Type(),
			"queue_len", len(q.tasks),
			"queue_cap", cap(q.tasks))
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the task queue, preventing further submission. Blocked
// Enqueue calls return ErrQueueClosed.
func (q *TaskQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)

		q.mu.Lock()
		q.closed = true
		close(q.tasks)
		q.mu.Unlock()

		q.logger.Info("task queue closed")
	})
}

// Drain returns the submissions still buffered in a closed queue.
func (q *TaskQueue) Drain() []*Submission {
	var rest []*Submission
	for s := range q.tasks {
		rest = append(rest, s)
	}
	return rest
}

// GetChannel returns a read-only channel for consuming submissions
func (q *TaskQueue) GetChannel() <-chan *Submission {
	return q.tasks
}

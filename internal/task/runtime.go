package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/comix-bridge/internal/config"
	"github.com/phrazzld/comix-bridge/internal/redact"
	"go.uber.org/atomic"
)

// PanicHandler is invoked with every panic recovered from a task.
type PanicHandler func(taskType string, handle uuid.UUID, p *PanicError)

// Option configures a Runtime.
type Option func(*Runtime)

// WithPanicHandler replaces the default handler, which logs at error level.
func WithPanicHandler(h PanicHandler) Option {
	return func(r *Runtime) {
		if h != nil {
			r.panicHandler = h
		}
	}
}

// WithObserver registers an Observer for lifecycle notifications.
func WithObserver(o Observer) Option {
	return func(r *Runtime) {
		if o != nil {
			r.observer = o
		}
	}
}

// Runtime executes submitted tasks and delivers exactly one Outcome per
// submission.
type Runtime struct {
	registry     *Registry
	queue        *TaskQueue
	pool         *WorkerPool
	inline       bool
	logger       *slog.Logger
	panicHandler PanicHandler
	observer     Observer

	stopOnce sync.Once
	stopped  atomic.Bool
}

// NewRuntime creates a runtime and starts its workers. With cfg.Inline set,
// tasks run on the submitting goroutine and no workers are started.
func NewRuntime(cfg config.RuntimeConfig, logger *slog.Logger, opts ...Option) (*Runtime, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if !cfg.Inline && cfg.QueueSize <= 0 {
		return nil, fmt.Errorf("queue size must be positive, got %d", cfg.QueueSize)
	}

	r := &Runtime{
		registry: NewRegistry(),
		inline:   cfg.Inline,
		logger:   logger.With("component", "task_runtime"),
		observer: nopObserver{},
	}
	r.panicHandler = r.logPanic
	for _, opt := range opts {
		opt(r)
	}

	if !r.inline {
		r.queue = NewTaskQueue(cfg.QueueSize, r.logger)
		r.pool = NewWorkerPool(r.queue, WorkerPoolConfig{WorkerCount: cfg.WorkerCount}, r.logger,
			func(s *Submission, _ int) {
				s.done <- r.run(s)
			})
		r.pool.Start()
	}

	return r, nil
}

// Registry exposes the handle registry, mainly for listing live tasks.
func (r *Runtime) Registry() *Registry {
	return r.registry
}

// Submit registers t, reports its handle through onRegistered, executes it
// and blocks until its Outcome is final. onRegistered runs after the handle is
// cancellable and before execution begins.
//
// Cancellation of ctx is forwarded to the task's token.
func (r *Runtime) Submit(ctx context.Context, t Task, onRegistered func(uuid.UUID)) Outcome {
	if t == nil {
		return failed(ErrNilTask)
	}

	tok := NewToken(ctx)
	s := &Submission{
		task:  t,
		token: tok,
		done:  make(chan Outcome, 1),
	}
	s.handle = r.registry.Register(t.Type(), tok)
	started := time.Now()
	r.observer.TaskStarted(t.Type())

	if onRegistered != nil {
		onRegistered(s.handle)
	}

	stop := context.AfterFunc(ctx, func() {
		r.Cancel(s.handle)
	})
	defer stop()

	if ctx.Err() != nil {
		tok.Cancel()
	}

	if r.inline {
		if r.stopped.Load() {
			return r.finalize(s, failed(ErrRuntimeStopped), started)
		}
		return r.finalize(s, r.execute(s), started)
	}

	r.registry.SetStatus(s.handle, TaskStatusSubmitted)
	if err := r.queue.Enqueue(ctx, s); err != nil {
		if errors.Is(err, ErrQueueClosed) {
			return r.finalize(s, failed(ErrRuntimeStopped), started)
		}
		tok.Cancel()
		return r.finalize(s, cancelled(), started)
	}

	o := <-s.done
	r.observer.TaskFinished(t.Type(), o.Kind, time.Since(started))
	return o
}

// Cancel requests cancellation of the task registered under handle. It
// returns false for unknown and finished handles.
func (r *Runtime) Cancel(handle uuid.UUID) bool {
	effected := r.registry.Cancel(handle)
	r.observer.CancelRequested(effected)
	r.logger.Debug("cancel requested", "task_id", handle, "effected", effected)
	return effected
}

// Stop stops the workers. Running tasks complete; queued tasks and later
// submissions fail with ErrRuntimeStopped. Stop is idempotent.
func (r *Runtime) Stop() {
	r.stopOnce.Do(func() {
		r.stopped.Store(true)
		if r.inline {
			return
		}
		r.queue.Close()
		r.pool.Stop()
		for _, s := range r.queue.Drain() {
			s.done <- r.settle(s, failed(ErrRuntimeStopped))
		}
	})
}

// run executes a dequeued submission and settles it. Submissions dequeued
// after Stop began are not executed.
func (r *Runtime) run(s *Submission) Outcome {
	if r.stopped.Load() {
		return r.settle(s, failed(ErrRuntimeStopped))
	}
	return r.settle(s, r.execute(s))
}

// execute runs the task with panic containment. The returned outcome is
// provisional until settled against the token.
func (r *Runtime) execute(s *Submission) Outcome {
	if err := s.token.Checkpoint(); err != nil {
		return cancelled()
	}

	r.registry.SetStatus(s.handle, TaskStatusRunning)
	logger := r.logger.With("task_id", s.handle, "task_type", s.Type())
	logger.Debug("processing task")

	value, err, fault := r.invoke(s)
	switch {
	case fault != nil:
		r.observer.TaskPanicked(s.Type())
		r.reportPanic(s, fault)
		return faulted(fault)
	case err != nil:
		logger.Debug("task returned error", "error", redact.Error(err))
		return failed(err)
	default:
		return completed(value)
	}
}

func (r *Runtime) invoke(s *Submission) (value any, err error, fault *PanicError) {
	defer func() {
		if p := recover(); p != nil {
			fault = &PanicError{Value: p, Stack: debug.Stack()}
		}
	}()
	value, err = s.task.Execute(s.token.Context(), s.token)
	return value, err, nil
}

// settle finalizes the token and removes the registry entry. A cancel
// request that reached the token first turns any outcome into Cancelled.
func (r *Runtime) settle(s *Submission, o Outcome) Outcome {
	if s.token.finish() {
		o = cancelled()
	}
	r.registry.Finish(s.handle)
	r.logger.Debug("task finished", "task_id", s.handle, "task_type", s.Type(), "outcome", o.Kind.String())
	return o
}

func (r *Runtime) finalize(s *Submission, o Outcome, started time.Time) Outcome {
	o = r.settle(s, o)
	r.observer.TaskFinished(s.Type(), o.Kind, time.Since(started))
	return o
}

func (r *Runtime) reportPanic(s *Submission, p *PanicError) {
	defer func() {
		if hp := recover(); hp != nil {
			r.logger.Error("panic handler panicked", "task_id", s.handle, "panic", redact.String(fmt.Sprint(hp)))
		}
	}()
	r.panicHandler(s.Type(), s.handle, p)
}

func (r *Runtime) logPanic(taskType string, handle uuid.UUID, p *PanicError) {
	r.logger.Error("task panicked",
		"task_id", handle,
		"task_type", taskType,
		"panic", redact.String(fmt.Sprint(p.Value)),
		"stack", string(p.Stack))
}

var process struct {
	mu sync.Mutex
	rt *Runtime
}

// Init creates the process-wide runtime. It may succeed only once per
// process; later calls return ErrAlreadyInitialized.
func Init(cfg config.RuntimeConfig, logger *slog.Logger, opts ...Option) (*Runtime, error) {
	process.mu.Lock()
	defer process.mu.Unlock()

	if process.rt != nil {
		return nil, ErrAlreadyInitialized
	}

	rt, err := NewRuntime(cfg, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task runtime: %w", err)
	}
	process.rt = rt
	return rt, nil
}

// Global returns the runtime created by Init.
func Global() (*Runtime, error) {
	process.mu.Lock()
	defer process.mu.Unlock()

	if process.rt == nil {
		return nil, ErrNotInitialized
	}
	return process.rt, nil
}

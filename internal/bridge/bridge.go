package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/comix-bridge/internal/archive"
	"github.com/phrazzld/comix-bridge/internal/redact"
	"github.com/phrazzld/comix-bridge/internal/resource"
	"github.com/phrazzld/comix-bridge/internal/task"
)

// Status is the synchronous result of an entry point.
type Status int

const (
	// StatusRejected means validation failed and nothing was submitted.
	StatusRejected Status = iota
	StatusCompleted
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusRejected:
		return "rejected"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Task types reported to the runtime.
const (
	TaskTypeMetadata  = "metadata"
	TaskTypeHash      = "hash"
	TaskTypeImage     = "image"
	TaskTypeThumbnail = "thumbnail"
)

// Operation names carried by failures.
const (
	OpMetadata  = "Can't get comic book metadata"
	OpFileData  = "Can't get comic file data"
	OpImage     = "Can't get comic book image"
	OpThumbnail = "Can't get comic book image thumbnail"
)

// Acquirer takes ownership of a validated descriptor.
type Acquirer func(fd int) (*resource.Guard, error)

// Option configures a Bridge.
type Option func(*Bridge)

// WithAcquirer replaces resource.Acquire, mainly to inject instrumented streams.
func WithAcquirer(a Acquirer) Option {
	return func(b *Bridge) {
		if a != nil {
			b.acquire = a
		}
	}
}

// Bridge exposes the entry points. It is safe for concurrent use.
type Bridge struct {
	runtime *task.Runtime
	engine  archive.Engine
	logger  *slog.Logger
	acquire Acquirer
}

// New creates a Bridge that runs operations on rt against engine.
func New(rt *task.Runtime, engine archive.Engine, logger *slog.Logger, opts ...Option) *Bridge {
	b := &Bridge{
		runtime: rt,
		engine:  engine,
		logger:  logger.With("component", "bridge"),
		acquire: resource.Acquire,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CancelTask requests cancellation of the operation identified by handle. It
// reports whether the request took effect; unknown and finished handles
// yield false. uuid.Nil is rejected.
func (b *Bridge) CancelTask(handle uuid.UUID) (bool, error) {
	if verr := check(cancelRequest{Handle: handle}); verr != nil {
		return false, verr
	}
	return b.runtime.Cancel(handle), nil
}

// work is the body of one operation, run with the descriptor's guard.
type work[T any] func(ctx context.Context, tok *task.Token, g *resource.Guard) (T, error)

// submit owns fd from here on, runs fn on the runtime and delivers the
// outcome to cb.
func submit[T any](ctx context.Context, b *Bridge, taskType, op string, fd int, cb Callback[T], fn work[T]) Status {
	logger := b.logger.With("op", taskType, "fd", fd)

	g, err := b.acquire(fd)
	if err != nil {
		ferr := &Error{Kind: KindInternal, Op: op, Code: CodeInternal, Message: "operation failed", Err: err}
		logger.Error("failed to take ownership of descriptor", "error", redact.Error(err))
		b.deliver(logger, func() { cb.OnFailure(ferr) })
		return StatusFailed
	}
	defer func() { _ = g.Release() }()

	t := task.TaskFunc{
		Name: taskType,
		Fn: func(ctx context.Context, tok *task.Token) (any, error) {
			defer b.release(logger, g)
			return fn(ctx, tok, g)
		},
	}

	var handle uuid.UUID
	o := b.runtime.Submit(ctx, t, func(h uuid.UUID) {
		handle = h
		b.deliver(logger, func() { cb.OnTaskCreated(h) })
	})
	logger = logger.With("task_id", handle)

	switch o.Kind {
	case task.OutcomeCompleted:
		v, ok := o.Value.(T)
		if !ok {
			ferr := b.internal(logger, op, fmt.Errorf("unexpected result type %T", o.Value))
			b.deliver(logger, func() { cb.OnFailure(ferr) })
			return StatusFailed
		}
		b.deliver(logger, func() { cb.OnSuccess(v) })
		return StatusCompleted
	case task.OutcomeCancelled:
		logger.Debug("operation cancelled")
		b.deliver(logger, cb.OnCancelled)
		return StatusCancelled
	default:
		ferr := b.failure(logger, op, o)
		b.deliver(logger, func() { cb.OnFailure(ferr) })
		return StatusFailed
	}
}

// failure translates a Failed or Faulted outcome.
func (b *Bridge) failure(logger *slog.Logger, op string, o task.Outcome) *Error {
	if o.Kind == task.OutcomeFailed && archive.IsDomain(o.Err) {
		logger.Info("operation failed", "code", archive.Code(o.Err))
		return &Error{
			Kind:    KindDomain,
			Op:      op,
			Code:    archive.Code(o.Err),
			Message: o.Err.Error(),
			Err:     o.Err,
		}
	}
	return b.internal(logger, op, o.Err)
}

func (b *Bridge) internal(logger *slog.Logger, op string, err error) *Error {
	logger.Error("operation failed unexpectedly", "error", redact.Error(err))
	return &Error{Kind: KindInternal, Op: op, Code: CodeInternal, Message: "operation failed", Err: err}
}

// deliver calls into caller code. A panicking callback is logged and dropped.
func (b *Bridge) deliver(logger *slog.Logger, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("callback panicked", "panic", redact.String(fmt.Sprint(p)))
		}
	}()
	fn()
}

func (b *Bridge) release(logger *slog.Logger, g *resource.Guard) {
	if err := g.Release(); err != nil {
		logger.Warn("failed to close descriptor", "error", redact.Error(err))
	}
}

// resultCallback captures a single outcome for entry points without a
// caller-supplied callback.
type resultCallback[T any] struct {
	value     T
	err       *Error
	cancelled bool
}

func (c *resultCallback[T]) OnTaskCreated(uuid.UUID) {}
func (c *resultCallback[T]) OnSuccess(v T)           { c.value = v }
func (c *resultCallback[T]) OnFailure(err *Error)    { c.err = err }
func (c *resultCallback[T]) OnCancelled()            { c.cancelled = true }

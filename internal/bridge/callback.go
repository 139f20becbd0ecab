package bridge

import "github.com/google/uuid"

// Callback receives the result of one operation. OnTaskCreated is called
// first with the handle that can be passed to CancelTask; exactly one of
// OnSuccess, OnFailure or OnCancelled follows.
type Callback[T any] interface {
	OnTaskCreated(handle uuid.UUID)
	OnSuccess(value T)
	OnFailure(err *Error)
	OnCancelled()
}

// CallbackFuncs adapts plain functions to Callback. Nil fields are skipped.
type CallbackFuncs[T any] struct {
	TaskCreated func(handle uuid.UUID)
	Success     func(value T)
	Failure     func(err *Error)
	Cancelled   func()
}

func (c CallbackFuncs[T]) OnTaskCreated(handle uuid.UUID) {
	if c.TaskCreated != nil {
		c.TaskCreated(handle)
	}
}

func (c CallbackFuncs[T]) OnSuccess(value T) {
	if c.Success != nil {
		c.Success(value)
	}
}

func (c CallbackFuncs[T]) OnFailure(err *Error) {
	if c.Failure != nil {
		c.Failure(err)
	}
}

func (c CallbackFuncs[T]) OnCancelled() {
	if c.Cancelled != nil {
		c.Cancelled()
	}
}

package task

import (
	"context"

	"go.uber.org/atomic"
)

// TokenState is the lifecycle state of a cancellation token.
type TokenState int32

// Token states. Transitions only move forward:
// Active -> CancelRequested -> Finished, or Active -> Finished.
const (
	TokenActive TokenState = iota
	TokenCancelRequested
	TokenFinished
)

func (s TokenState) String() string {
	switch s {
	case TokenActive:
		return "active"
	case TokenCancelRequested:
		return "cancel_requested"
	case TokenFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Token is the cancellation cell shared between the goroutine running a task
// and any goroutine that wants to cancel it. It is safe for concurrent use.
type Token struct {
	state  atomic.Int32
	ctx    context.Context
	cancel context.CancelFunc
}

// NewToken returns an active token. The token's context carries the values of
// parent but is only cancelled through the token itself.
func NewToken(parent context.Context) *Token {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	return &Token{ctx: ctx, cancel: cancel}
}

// State returns the current state.
func (t *Token) State() TokenState {
	return TokenState(t.state.Load())
}

// Cancel requests cancellation. It reports true only for the call that moved
// the token from Active to CancelRequested; repeated calls and calls after
// the task finished return false. It never blocks.
func (t *Token) Cancel() bool {
	if !t.state.CompareAndSwap(int32(TokenActive), int32(TokenCancelRequested)) {
		return false
	}
	t.cancel()
	return true
}

// Checkpoint returns ErrCancelled when cancellation was requested. Tasks call
// it before every expensive step.
func (t *Token) Checkpoint() error {
	if t.State() == TokenCancelRequested {
		return ErrCancelled
	}
	return nil
}

// Context is cancelled as soon as cancellation is requested.
func (t *Token) Context() context.Context {
	return t.ctx
}

// finish moves the token to Finished and reports whether a cancel request
// reached it first.
func (t *Token) finish() (cancelled bool) {
	defer t.cancel()
	if t.state.CompareAndSwap(int32(TokenActive), int32(TokenFinished)) {
		return false
	}
	t.state.Store(int32(TokenFinished))
	return true
}

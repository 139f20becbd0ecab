package bridge

import (
	"errors"
	"fmt"
)

// Kind classifies a failure reported across the bridge.
type Kind int

const (
	// KindIllegalArgument is a caller contract violation detected before any work starts.
	KindIllegalArgument Kind = iota
	// KindDomain is a failure reported by the archive engine.
	KindDomain
	// KindInternal is an unexpected failure, including recovered panics.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindIllegalArgument:
		return "illegal_argument"
	case KindDomain:
		return "domain"
	case KindInternal:
		return "internal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// CodeInternal is the code of every KindInternal error.
const CodeInternal = "internal"

// Error is the failure value delivered to callers.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "Can't get comic book image".
	Op string
	// Code is a stable machine-readable code.
	Code string
	// Message is safe to show to the caller.
	Message string
	// Err is the underlying cause. It is not meant for display.
	Err error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return e.Op + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func illegalArgument(msg string) *Error {
	return &Error{Kind: KindIllegalArgument, Code: "illegal_argument", Message: msg}
}

// IsIllegalArgument reports whether err is a synchronous validation failure.
func IsIllegalArgument(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindIllegalArgument
}

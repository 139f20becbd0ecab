package task

import "fmt"

// OutcomeKind tags the single result of a submission.
type OutcomeKind int

const (
	OutcomeCompleted OutcomeKind = iota
	OutcomeFailed
	OutcomeFaulted
	OutcomeCancelled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	case OutcomeFaulted:
		return "faulted"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the result of one submission. Value is set for Completed, Err
// for Failed, Fault for Faulted.
type Outcome struct {
	Kind  OutcomeKind
	Value any
	Err   error
	Fault *PanicError
}

// Status maps the outcome onto the submission lifecycle. Faults count as failures.
func (o Outcome) Status() TaskStatus {
	switch o.Kind {
	case OutcomeCompleted:
		return TaskStatusCompleted
	case OutcomeCancelled:
		return TaskStatusCancelled
	default:
		return TaskStatusFailed
	}
}

func completed(v any) Outcome { return Outcome{Kind: OutcomeCompleted, Value: v} }

func failed(err error) Outcome { return Outcome{Kind: OutcomeFailed, Err: err} }

func faulted(p *PanicError) Outcome { return Outcome{Kind: OutcomeFaulted, Err: p, Fault: p} }

func cancelled() Outcome { return Outcome{Kind: OutcomeCancelled, Err: ErrCancelled} }

// Package task runs cancellable operations on a bounded worker pool.
// Every submission is registered under an opaque handle before it is queued,
// observes a cooperative cancellation token while it runs, and produces
// exactly one Outcome. Panics raised by a task are contained and reported as
// faults; they never reach the submitting goroutine.
package task

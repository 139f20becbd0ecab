// Package bridge is the entry surface for callers that drive comic book
// operations synchronously. Each entry point validates its raw inputs, takes
// ownership of the caller's file descriptor, runs the operation on the task
// runtime and reports exactly one result through the caller's callback.
//
// Validation failures are returned synchronously as *Error values of kind
// KindIllegalArgument; in that case no callback is invoked and the descriptor
// stays with the caller. Once validation passes the descriptor belongs to the
// bridge and is closed exactly once, whatever the outcome.
package bridge

// Package resource takes ownership of raw file descriptors handed over by a
// caller and guarantees that each one is closed exactly once, whatever path
// the owning operation leaves by.
package resource

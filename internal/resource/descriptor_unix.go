//go:build unix

package resource

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// OpenDescriptor opens path read-only and returns the raw descriptor. The
// caller owns it until it is handed to Acquire.
func OpenDescriptor(path string) (int, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return fd, nil
}

// CloseDescriptor closes a descriptor that was never handed to a guard.
func CloseDescriptor(fd int) error {
	return unix.Close(fd)
}

// Descriptors handed over by a caller must not leak into child processes.
func closeOnExec(fd int) {
	unix.CloseOnExec(fd)
}

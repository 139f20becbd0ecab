package resource

import (
	"fmt"
	"syscall"
)

// OpenDescriptor opens path read-only and returns the raw descriptor. The
// caller owns it until it is handed to Acquire.
func OpenDescriptor(path string) (int, error) {
	fd, err := syscall.Open(path, syscall.O_RDONLY, 0)
	if err != nil {
		return -1, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return int(fd), nil
}

// CloseDescriptor closes a descriptor that was never handed to a guard.
func CloseDescriptor(fd int) error {
	return syscall.Close(syscall.Handle(fd))
}

func closeOnExec(int) {}

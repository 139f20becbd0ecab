package resource

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/atomic"
)

var (
	// ErrNegativeDescriptor is returned when a descriptor fails the ownership precondition.
	ErrNegativeDescriptor = errors.New("file descriptor is negative")

	// ErrReleased is returned when the guarded stream is used after release.
	ErrReleased = errors.New("resource already released")
)

// Stream is the readable, seekable view of an owned descriptor.
type Stream interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Closer
}

// Guard is the exclusive owner of one descriptor for the duration of one
// operation. It must not be shared between operations.
type Guard struct {
	fd       int
	stream   Stream
	once     sync.Once
	released atomic.Bool
	closeErr error
}

// Acquire takes ownership of fd. From this point on only the returned guard
// may close it.
func Acquire(fd int) (*Guard, error) {
	if fd < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeDescriptor, fd)
	}

	closeOnExec(fd)

	f := os.NewFile(uintptr(fd), fmt.Sprintf("fd:%d", fd))
	if f == nil {
		return nil, fmt.Errorf("%w: %d", ErrNegativeDescriptor, fd)
	}

	return Wrap(fd, f), nil
}

// Wrap builds a guard over an already opened stream. fd is informational.
func Wrap(fd int, s Stream) *Guard {
	return &Guard{fd: fd, stream: s}
}

// Fd returns the descriptor number the guard was created with.
func (g *Guard) Fd() int {
	return g.fd
}

// Stream returns the owned stream, rewound to its start.
func (g *Guard) Stream() (Stream, error) {
	if g.released.Load() {
		return nil, ErrReleased
	}
	if _, err := g.stream.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind stream: %w", err)
	}
	return g.stream, nil
}

// Size reports the stream length in bytes.
func (g *Guard) Size() (int64, error) {
	if g.released.Load() {
		return 0, ErrReleased
	}
	size, err := g.stream.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to determine stream size: %w", err)
	}
	if _, err := g.stream.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to rewind stream: %w", err)
	}
	return size, nil
}

// Release closes the underlying descriptor. Only the first call closes;
// later calls return the same result.
func (g *Guard) Release() error {
	g.once.Do(func() {
		g.released.Store(true)
		g.closeErr = g.stream.Close()
	})
	return g.closeErr
}

// Released reports whether Release has been called.
func (g *Guard) Released() bool {
	return g.released.Load()
}

package resource

import (
	"bytes"
	"errors"

	"go.uber.org/atomic"
)

// MockStream is an in-memory Stream that counts Close calls. It is used to
// verify that a descriptor is released exactly once.
type MockStream struct {
	*bytes.Reader
	closes   atomic.Int32
	CloseErr error
}

// NewMockStream creates a MockStream over data.
func NewMockStream(data []byte) *MockStream {
	return &MockStream{Reader: bytes.NewReader(data)}
}

// Close records the call. Reads after the first Close fail.
func (s *MockStream) Close() error {
	s.closes.Inc()
	return s.CloseErr
}

// Read fails once the stream has been closed.
func (s *MockStream) Read(p []byte) (int, error) {
	if s.closes.Load() > 0 {
		return 0, errMockClosed
	}
	return s.Reader.Read(p)
}

// ReadAt fails once the stream has been closed.
func (s *MockStream) ReadAt(p []byte, off int64) (int, error) {
	if s.closes.Load() > 0 {
		return 0, errMockClosed
	}
	return s.Reader.ReadAt(p, off)
}

// Closes returns how many times Close was called.
func (s *MockStream) Closes() int {
	return int(s.closes.Load())
}

var errMockClosed = errors.New("mock stream closed")

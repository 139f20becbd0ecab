package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
)

const hashChunkSize = 64 << 10

// Hash streams r in fixed-size chunks, checking ctx between chunks.
func (e *CBZEngine) Hash(ctx context.Context, r io.Reader) (FileHash, error) {
	h, err := e.newHash()
	if err != nil {
		return FileHash{}, fmt.Errorf("%w: %w", ErrHash, err)
	}

	buf := make([]byte, hashChunkSize)
	var size int64
	for {
		if err := ctx.Err(); err != nil {
			return FileHash{}, err
		}

		n, rerr := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			size += int64(n)
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return FileHash{}, fmt.Errorf("%w: %w", ErrHash, rerr)
		}
	}

	return FileHash{
		Size:      size,
		Digest:    h.Sum(nil),
		Algorithm: e.hashAlgorithm,
	}, nil
}

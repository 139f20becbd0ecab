package bridge

import (
	"context"
	"fmt"

	"github.com/phrazzld/comix-bridge/internal/archive"
	"github.com/phrazzld/comix-bridge/internal/resource"
	"github.com/phrazzld/comix-bridge/internal/task"
)

// ComicBook is the metadata payload of OpenComicBook.
type ComicBook struct {
	Path      string         `json:"path"`
	Name      string         `json:"name"`
	Title     string         `json:"title,omitempty"`
	PageCount int            `json:"page_count"`
	Pages     []archive.Page `json:"pages"`
}

// OpenComicBook reads the metadata of the archive behind fd and reports it to
// cb. The call blocks until the operation finishes.
func (b *Bridge) OpenComicBook(ctx context.Context, fd int, filePath, name string, cb Callback[*ComicBook]) (Status, error) {
	if verr := check(metadataRequest{FD: fd, Callback: cb, FilePath: filePath, Name: name}); verr != nil {
		return StatusRejected, verr
	}

	return submit(ctx, b, TaskTypeMetadata, OpMetadata, fd, cb,
		func(ctx context.Context, tok *task.Token, g *resource.Guard) (*ComicBook, error) {
			arc, err := b.open(ctx, tok, g)
			if err != nil {
				return nil, err
			}
			meta := arc.Metadata()
			return &ComicBook{
				Path:      filePath,
				Name:      name,
				Title:     meta.Title,
				PageCount: len(meta.Pages),
				Pages:     meta.Pages,
			}, nil
		}), nil
}

// ComicFileData returns the size and content hash of the file behind fd.
// It has no callback: failures are returned as *Error, and a cancelled
// operation yields a nil hash with a nil error.
func (b *Bridge) ComicFileData(ctx context.Context, fd int) (*archive.FileHash, error) {
	if verr := check(descriptorRequest{FD: fd}); verr != nil {
		return nil, verr
	}

	res := &resultCallback[*archive.FileHash]{}
	submit(ctx, b, TaskTypeHash, OpFileData, fd, Callback[*archive.FileHash](res),
		func(ctx context.Context, tok *task.Token, g *resource.Guard) (*archive.FileHash, error) {
			if err := tok.Checkpoint(); err != nil {
				return nil, err
			}
			stream, err := g.Stream()
			if err != nil {
				return nil, err
			}
			fh, err := b.engine.Hash(ctx, stream)
			if err != nil {
				return nil, err
			}
			return &fh, nil
		})

	if res.err != nil {
		return nil, res.err
	}
	return res.value, nil
}

// Image decodes the page at position at its original size and reports it to cb.
func (b *Bridge) Image(ctx context.Context, fd int, position int64, cb Callback[*archive.Image]) (Status, error) {
	if verr := check(imageRequest{FD: fd, Callback: cb, Position: position}); verr != nil {
		return StatusRejected, verr
	}

	return submit(ctx, b, TaskTypeImage, OpImage, fd, cb, b.decode(position, nil)), nil
}

// Thumbnail decodes the page at position scaled to fit within width×height,
// keeping its aspect ratio. A zero dimension leaves that axis unconstrained.
func (b *Bridge) Thumbnail(ctx context.Context, fd int, position int64, width, height int, cb Callback[*archive.Image]) (Status, error) {
	req := thumbnailRequest{FD: fd, Callback: cb, Position: position, Width: width, Height: height}
	if verr := check(req); verr != nil {
		return StatusRejected, verr
	}

	bounds := &archive.Size{Width: width, Height: height}
	return submit(ctx, b, TaskTypeThumbnail, OpThumbnail, fd, cb, b.decode(position, bounds)), nil
}

func (b *Bridge) decode(position int64, bounds *archive.Size) work[*archive.Image] {
	return func(ctx context.Context, tok *task.Token, g *resource.Guard) (*archive.Image, error) {
		arc, err := b.open(ctx, tok, g)
		if err != nil {
			return nil, err
		}
		if int64(int(position)) != position {
			return nil, fmt.Errorf("%w: position %d", archive.ErrPageNotFound, position)
		}
		if err := tok.Checkpoint(); err != nil {
			return nil, err
		}
		return arc.Decode(ctx, int(position), bounds)
	}
}

// open checks for cancellation around the engine's Open call.
func (b *Bridge) open(ctx context.Context, tok *task.Token, g *resource.Guard) (archive.Archive, error) {
	if err := tok.Checkpoint(); err != nil {
		return nil, err
	}
	stream, err := g.Stream()
	if err != nil {
		return nil, err
	}
	size, err := g.Size()
	if err != nil {
		return nil, err
	}
	if err := tok.Checkpoint(); err != nil {
		return nil, err
	}
	arc, err := b.engine.Open(ctx, stream, size)
	if err != nil {
		return nil, err
	}
	return arc, tok.Checkpoint()
}

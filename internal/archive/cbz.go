package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/klauspost/compress/zip"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Open parses a zip container and indexes its pages.
func (e *CBZEngine) Open(ctx context.Context, r io.ReaderAt, size int64) (Archive, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}

	files := pageFiles(zr.File)
	if len(files) == 0 {
		return nil, ErrNoPages
	}

	pages := make([]Page, len(files))
	for i, f := range files {
		pages[i] = Page{
			Position: i,
			Name:     f.Name,
			Size:     int64(f.UncompressedSize64),
		}
	}

	return &comicBook{
		engine: e,
		files:  files,
		meta: Metadata{
			Title: comicInfoTitle(zr.File, e.maxEntryBytes),
			Pages: pages,
		},
	}, nil
}

type comicBook struct {
	engine *CBZEngine
	files  []*zip.File
	meta   Metadata
}

func (b *comicBook) Metadata() Metadata {
	return b.meta
}

func (b *comicBook) Decode(ctx context.Context, position int, bounds *Size) (*Image, error) {
	if position < 0 || position >= len(b.files) {
		return nil, fmt.Errorf("%w: position %d of %d", ErrPageNotFound, position, len(b.files))
	}
	if bounds != nil && (bounds.Width < 0 || bounds.Height < 0) {
		return nil, fmt.Errorf("%w: negative bounds %dx%d", ErrDecode, bounds.Width, bounds.Height)
	}

	f := b.files[position]
	data, err := readEntry(f, b.engine.maxEntryBytes)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, f.Name, err)
	}
	if cfg.Width*cfg.Height > b.engine.maxImagePixels {
		return nil, fmt.Errorf("%w: %s is %dx%d", ErrImageTooLarge, f.Name, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, f.Name, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return b.engine.render(img, format, bounds), nil
}

func readEntry(f *zip.File, limit int64) ([]byte, error) {
	if f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrImageTooLarge, f.Name, f.UncompressedSize64)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptArchive, f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptArchive, f.Name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrImageTooLarge, f.Name, limit)
	}

	return data, nil
}

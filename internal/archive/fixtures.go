package archive

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/klauspost/compress/zip"
)

// FixtureEntry is one file of a generated archive.
type FixtureEntry struct {
	Name string
	Data []byte
}

// BuildFixture writes entries into an in-memory zip archive. It is used by
// tests across packages to produce small comic books.
func BuildFixture(entries ...FixtureEntry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create fixture entry %s: %w", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, fmt.Errorf("failed to write fixture entry %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish fixture archive: %w", err)
	}
	return buf.Bytes(), nil
}

// SolidPNG encodes a w×h PNG filled with c.
func SolidPNG(w, h int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(fmt.Sprintf("encode fixture png: %v", err))
	}
	return buf.Bytes()
}

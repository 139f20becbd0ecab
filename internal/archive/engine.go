package archive

import (
	"context"
	"fmt"
	"hash"
	"io"

	"github.com/phrazzld/comix-bridge/internal/config"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/image/draw"
)

// Hash algorithm names accepted in configuration.
const (
	HashBlake2b = "blake2b"
	HashBlake3  = "blake3"
)

// Engine computes content hashes and opens archives.
type Engine interface {
	// Hash reads r to the end and returns its length and digest.
	Hash(ctx context.Context, r io.Reader) (FileHash, error)

	// Open parses the container stored in r.
	Open(ctx context.Context, r io.ReaderAt, size int64) (Archive, error)
}

// Archive is an opened container.
type Archive interface {
	// Metadata describes the container.
	Metadata() Metadata

	// Decode returns the page at position. A non-nil bounds scales the page
	// down to fit inside it.
	Decode(ctx context.Context, position int, bounds *Size) (*Image, error)
}

// FileHash identifies file content.
type FileHash struct {
	Size      int64  `json:"size"`
	Digest    []byte `json:"digest"`
	Algorithm string `json:"algorithm"`
}

// Metadata describes an opened container.
type Metadata struct {
	// Title comes from ComicInfo.xml and is empty when the archive has none.
	Title string `json:"title,omitempty"`
	Pages []Page `json:"pages"`
}

// Page is one image entry in reading order.
type Page struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
}

// Size is a width/height pair in pixels. Zero means unconstrained.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Image is a decoded page as tightly packed RGBA8 pixels.
type Image struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Pixels []byte `json:"-"`
}

var interpolators = map[string]draw.Interpolator{
	"nearest":    draw.NearestNeighbor,
	"bilinear":   draw.BiLinear,
	"catmullrom": draw.CatmullRom,
}

// CBZEngine is the default Engine for zip based comic archives.
type CBZEngine struct {
	hashAlgorithm  string
	scaler         draw.Interpolator
	maxImagePixels int
	maxEntryBytes  int64
}

// NewEngine builds a CBZEngine from configuration.
func NewEngine(cfg config.EngineConfig) (*CBZEngine, error) {
	switch cfg.HashAlgorithm {
	case HashBlake2b, HashBlake3:
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", cfg.HashAlgorithm)
	}

	scaler, ok := interpolators[cfg.ResizeFilter]
	if !ok {
		return nil, fmt.Errorf("unknown resize filter %q", cfg.ResizeFilter)
	}

	if cfg.MaxImagePixels <= 0 || cfg.MaxEntryBytes <= 0 {
		return nil, fmt.Errorf("image limits must be positive")
	}

	return &CBZEngine{
		hashAlgorithm:  cfg.HashAlgorithm,
		scaler:         scaler,
		maxImagePixels: cfg.MaxImagePixels,
		maxEntryBytes:  cfg.MaxEntryBytes,
	}, nil
}

func (e *CBZEngine) newHash() (hash.Hash, error) {
	if e.hashAlgorithm == HashBlake3 {
		return blake3.New(), nil
	}
	return blake2b.New256(nil)
}

var _ Engine = (*CBZEngine)(nil)

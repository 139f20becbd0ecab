package archive

import (
	"bytes"
	"context"
	"image/color"
	"testing"

	"github.com/phrazzld/comix-bridge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		HashAlgorithm:  HashBlake2b,
		ResizeFilter:   "catmullrom",
		MaxImagePixels: 1 << 20,
		MaxEntryBytes:  1 << 20,
	}
}

func newTestEngine(t *testing.T) *CBZEngine {
	t.Helper()
	e, err := NewEngine(testEngineConfig())
	require.NoError(t, err)
	return e
}

func openFixture(t *testing.T, e *CBZEngine, entries ...FixtureEntry) Archive {
	t.Helper()
	data, err := BuildFixture(entries...)
	require.NoError(t, err)
	a, err := e.Open(context.Background(), bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return a
}

var red = color.RGBA{R: 255, A: 255}

func TestNewEngine_RejectsUnknownSettings(t *testing.T) {
	cfg := testEngineConfig()
	cfg.HashAlgorithm = "md5"
	_, err := NewEngine(cfg)
	assert.Error(t, err)

	cfg = testEngineConfig()
	cfg.ResizeFilter = "lanczos"
	_, err = NewEngine(cfg)
	assert.Error(t, err)

	cfg = testEngineConfig()
	cfg.MaxEntryBytes = 0
	_, err = NewEngine(cfg)
	assert.Error(t, err)
}

func TestOpen_PagesInReadingOrder(t *testing.T) {
	e := newTestEngine(t)
	page := SolidPNG(2, 2, red)

	a := openFixture(t, e,
		FixtureEntry{Name: "pages/page10.png", Data: page},
		FixtureEntry{Name: "pages/page2.png", Data: page},
		FixtureEntry{Name: "pages/Page1.PNG", Data: page},
		FixtureEntry{Name: "notes.txt", Data: []byte("not a page")},
		FixtureEntry{Name: "__MACOSX/pages/._page1.png", Data: page},
		FixtureEntry{Name: "pages/.hidden.png", Data: page},
	)

	meta := a.Metadata()
	require.Len(t, meta.Pages, 3)
	assert.Equal(t, "pages/Page1.PNG", meta.Pages[0].Name)
	assert.Equal(t, "pages/page2.png", meta.Pages[1].Name)
	assert.Equal(t, "pages/page10.png", meta.Pages[2].Name)
	for i, p := range meta.Pages {
		assert.Equal(t, i, p.Position)
		assert.Equal(t, int64(len(page)), p.Size)
	}
	assert.Empty(t, meta.Title)
}

func TestOpen_ComicInfoTitle(t *testing.T) {
	e := newTestEngine(t)
	page := SolidPNG(1, 1, red)

	testCases := []struct {
		name     string
		xml      string
		expected string
	}{
		{"title", `<ComicInfo><Title> The Long Night </Title><Series>Saga</Series></ComicInfo>`, "The Long Night"},
		{"series and number", `<ComicInfo><Series>Saga</Series><Number>4</Number></ComicInfo>`, "Saga #4"},
		{"malformed", `<ComicInfo><Title>broken`, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := openFixture(t, e,
				FixtureEntry{Name: "ComicInfo.xml", Data: []byte(tc.xml)},
				FixtureEntry{Name: "001.png", Data: page},
			)
			assert.Equal(t, tc.expected, a.Metadata().Title)
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	e := newTestEngine(t)

	garbage := []byte("this is not a zip archive at all")
	_, err := e.Open(context.Background(), bytes.NewReader(garbage), int64(len(garbage)))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, "unsupported_format", Code(err))

	data, err := BuildFixture(FixtureEntry{Name: "readme.txt", Data: []byte("hi")})
	require.NoError(t, err)
	_, err = e.Open(context.Background(), bytes.NewReader(data), int64(len(data)))
	assert.ErrorIs(t, err, ErrNoPages)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Open(ctx, bytes.NewReader(data), int64(len(data)))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsDomain(err))
}

func TestDecode_FullSize(t *testing.T) {
	e := newTestEngine(t)
	a := openFixture(t, e, FixtureEntry{Name: "001.png", Data: SolidPNG(40, 30, red)})

	img, err := a.Decode(context.Background(), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Width)
	assert.Equal(t, 30, img.Height)
	assert.Equal(t, "png", img.Format)
	require.Len(t, img.Pixels, 4*40*30)
	assert.Equal(t, []byte{255, 0, 0, 255}, img.Pixels[:4])
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBA().RGBAAt(39, 29))
}

func TestDecode_Thumbnail(t *testing.T) {
	e := newTestEngine(t)
	a := openFixture(t, e, FixtureEntry{Name: "001.png", Data: SolidPNG(400, 300, red)})

	img, err := a.Decode(context.Background(), 0, &Size{Width: 100, Height: 150})
	require.NoError(t, err)
	assert.Equal(t, 100, img.Width)
	assert.Equal(t, 75, img.Height)
	assert.LessOrEqual(t, img.Width, 100)
	assert.LessOrEqual(t, img.Height, 150)
	assert.Len(t, img.Pixels, 4*img.Width*img.Height)
}

func TestDecode_Errors(t *testing.T) {
	e := newTestEngine(t)
	a := openFixture(t, e,
		FixtureEntry{Name: "001.png", Data: SolidPNG(4, 4, red)},
		FixtureEntry{Name: "002.png", Data: []byte("definitely not a png")},
	)

	_, err := a.Decode(context.Background(), 2, nil)
	assert.ErrorIs(t, err, ErrPageNotFound)

	_, err = a.Decode(context.Background(), -1, nil)
	assert.ErrorIs(t, err, ErrPageNotFound)

	_, err = a.Decode(context.Background(), 1, nil)
	assert.ErrorIs(t, err, ErrDecode)
	assert.Equal(t, "decode_failed", Code(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Decode(ctx, 0, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecode_Limits(t *testing.T) {
	cfg := testEngineConfig()
	cfg.MaxImagePixels = 100
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	a := openFixture(t, e, FixtureEntry{Name: "001.png", Data: SolidPNG(20, 20, red)})
	_, err = a.Decode(context.Background(), 0, nil)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	cfg = testEngineConfig()
	cfg.MaxEntryBytes = 16
	e, err = NewEngine(cfg)
	require.NoError(t, err)

	a = openFixture(t, e, FixtureEntry{Name: "001.png", Data: SolidPNG(20, 20, red)})
	_, err = a.Decode(context.Background(), 0, nil)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestHash(t *testing.T) {
	data := bytes.Repeat([]byte("comic"), 50_000)

	e := newTestEngine(t)
	fh, err := e.Hash(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	expected := blake2b.Sum256(data)
	assert.Equal(t, expected[:], fh.Digest)
	assert.Equal(t, int64(len(data)), fh.Size)
	assert.Equal(t, HashBlake2b, fh.Algorithm)

	cfg := testEngineConfig()
	cfg.HashAlgorithm = HashBlake3
	e3, err := NewEngine(cfg)
	require.NoError(t, err)
	fh, err = e3.Hash(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	expected3 := blake3.Sum256(data)
	assert.Equal(t, expected3[:], fh.Digest)
	assert.Equal(t, HashBlake3, fh.Algorithm)
}

func TestHash_Cancelled(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Hash(ctx, bytes.NewReader([]byte("data")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFitWithin(t *testing.T) {
	testCases := []struct {
		name   string
		w, h   int
		bounds *Size
		ew, eh int
	}{
		{"no bounds", 400, 300, nil, 400, 300},
		{"zero bounds", 400, 300, &Size{}, 400, 300},
		{"width bound", 400, 300, &Size{Width: 200}, 200, 150},
		{"height bound", 400, 300, &Size{Height: 100}, 133, 100},
		{"both bounds", 400, 300, &Size{Width: 100, Height: 150}, 100, 75},
		{"never upscale", 40, 30, &Size{Width: 400, Height: 300}, 40, 30},
		{"tiny result", 1000, 10, &Size{Width: 10, Height: 10}, 10, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, h := fitWithin(tc.w, tc.h, tc.bounds)
			assert.Equal(t, tc.ew, w)
			assert.Equal(t, tc.eh, h)
		})
	}
}

func TestNaturalLess(t *testing.T) {
	assert.True(t, naturalLess("page2.png", "page10.png"))
	assert.False(t, naturalLess("page10.png", "page2.png"))
	assert.True(t, naturalLess("Page1.png", "page2.png"))
	assert.True(t, naturalLess("a/01.png", "a/1.png") || naturalLess("a/1.png", "a/01.png"))
	assert.True(t, naturalLess("ch1/p9.png", "ch2/p1.png"))
	assert.True(t, naturalLess("p1.png", "p1a.png"))
}

func TestCode(t *testing.T) {
	assert.Equal(t, "page_not_found", Code(ErrPageNotFound))
	assert.Equal(t, "", Code(context.Canceled))
	assert.False(t, IsDomain(nil))
	assert.True(t, IsDomain(ErrHash))
}

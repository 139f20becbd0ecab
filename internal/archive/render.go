package archive

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// render converts img into packed RGBA pixels, scaled to fit bounds.
func (e *CBZEngine) render(img image.Image, format string, bounds *Size) *Image {
	src := img.Bounds()
	w, h := fitWithin(src.Dx(), src.Dy(), bounds)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == src.Dx() && h == src.Dy() {
		draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Src)
	} else {
		e.scaler.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	}

	return &Image{
		Width:  w,
		Height: h,
		Format: format,
		Pixels: dst.Pix,
	}
}

// fitWithin scales (w, h) down, keeping the aspect ratio, so that it fits
// inside bounds. Images are never scaled up.
func fitWithin(w, h int, bounds *Size) (int, int) {
	if bounds == nil || w == 0 || h == 0 {
		return w, h
	}

	scale := 1.0
	if bounds.Width > 0 && w > bounds.Width {
		scale = min(scale, float64(bounds.Width)/float64(w))
	}
	if bounds.Height > 0 && h > bounds.Height {
		scale = min(scale, float64(bounds.Height)/float64(h))
	}
	if scale >= 1 {
		return w, h
	}

	tw := max(1, int(math.Round(float64(w)*scale)))
	th := max(1, int(math.Round(float64(h)*scale)))
	if bounds.Width > 0 {
		tw = min(tw, bounds.Width)
	}
	if bounds.Height > 0 {
		th = min(th, bounds.Height)
	}
	return tw, th
}

// RGBA exposes the pixels as an image.RGBA without copying.
func (img *Image) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    img.Pixels,
		Stride: 4 * img.Width,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
}

package ggsurface

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/draw"
)

// Canvas is the CPU pixel buffer a renderer draws into. Pixels are
// premultiplied RGBA, which is what image.RGBA holds.
type Canvas struct {
	img *image.RGBA
}

// NewCanvas allocates a transparent canvas. Both sizes must be positive.
func NewCanvas(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("ggsurface: invalid canvas size %dx%d", width, height)
	}
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}, nil
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Rect.Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

// Image returns the backing image. It is read by Present; callers may draw
// into it directly between frames.
func (c *Canvas) Image() *image.RGBA { return c.img }

// At returns the premultiplied pixel at (x, y), or transparent outside.
func (c *Canvas) At(x, y int) color.RGBA { return c.img.RGBAAt(x, y) }

// Fill overwrites every pixel with col.
func (c *Canvas) Fill(col Color) {
	p := col.Premul()
	pix := c.img.Pix
	if len(pix) == 0 {
		return
	}
	pix[0], pix[1], pix[2], pix[3] = p.R, p.G, p.B, p.A
	// Double the filled prefix until the buffer is full.
	for n := 4; n < len(pix); n *= 2 {
		copy(pix[n:], pix[:n])
	}
}

// Clear makes every pixel transparent.
func (c *Canvas) Clear() {
	clear(c.img.Pix)
}

// Blit composites src onto the canvas with its top-left corner at (x, y).
//
// t is applied to the source before the offset, with the source's top-left
// corner as origin, so Blit(x, y, img, nil, Rotate(a), nil) turns the image
// about (x, y). mask, when not nil, is sampled in source space: its
// top-left corner is aligned with the source's and its alpha scales the
// source. Pixels outside the canvas are clipped.
func (c *Canvas) Blit(x, y int, src image.Image, paint *Paint, t Transform, mask image.Image) {
	paint = paint.orDefault()
	sr := src.Bounds()
	if sr.Empty() || paint.Opacity <= 0 && paint.Op == OpOver {
		return
	}

	m := Translate(float64(x), float64(y)).Multiply(t).Multiply(Translate(-float64(sr.Min.X), -float64(sr.Min.Y)))
	mask = opacityMask(mask, sr, paint.Opacity)

	if m.IsTranslation() && isInteger(m.C) && isInteger(m.F) {
		dp := image.Pt(int(m.C), int(m.F))
		r := image.Rectangle{Min: dp, Max: dp.Add(sr.Size())}
		var mp image.Point
		if mask != nil {
			mp = mask.Bounds().Min
		}
		draw.DrawMask(c.img, r, src, sr.Min, mask, mp, paint.drawOp())
		return
	}

	if _, ok := m.Invert(); !ok {
		return
	}
	if !transformedBounds(m, sr).Overlaps(c.img.Rect) {
		return
	}

	var opts *draw.Options
	if mask != nil {
		opts = &draw.Options{SrcMask: mask, SrcMaskP: mask.Bounds().Min.Sub(sr.Min)}
	}
	paint.interpolator().Transform(c.img, m.Aff3(), src, sr, paint.drawOp(), opts)
}

// transformedBounds returns the destination pixels covered by the source
// rectangle sr mapped through m.
func transformedBounds(m Transform, sr image.Rectangle) image.Rectangle {
	x0, y0 := float64(sr.Min.X), float64(sr.Min.Y)
	x1, y1 := float64(sr.Max.X), float64(sr.Max.Y)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range [4][2]float64{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
		x, y := m.Apply(p[0], p[1])
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
}

// Background stretches src over the whole canvas, with independent scale
// factors canvas-size / source-size on each axis.
func (c *Canvas) Background(src image.Image, paint *Paint) {
	sr := src.Bounds()
	if sr.Empty() {
		return
	}
	sx := float64(c.Width()) / float64(sr.Dx())
	sy := float64(c.Height()) / float64(sr.Dy())
	c.Blit(0, 0, src, paint, Scale(sx, sy), nil)
}

// SavePNG writes the canvas to a PNG file.
func (c *Canvas) SavePNG(path string) error {
	return SavePNG(path, c.img)
}

// SavePNG writes img to a PNG file, for example a Renderer snapshot.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// opacityMask folds a paint opacity below one into the mask.
func opacityMask(mask image.Image, sr image.Rectangle, opacity float64) image.Image {
	if opacity >= 1 {
		return mask
	}
	a := uint8(math.Round(clamp01(opacity) * 255))
	if mask == nil {
		return image.NewUniform(color.Alpha{A: a})
	}
	mb := mask.Bounds()
	out := image.NewAlpha(image.Rect(0, 0, sr.Dx(), sr.Dy()))
	for y := 0; y < sr.Dy(); y++ {
		for x := 0; x < sr.Dx(); x++ {
			_, _, _, ma := mask.At(mb.Min.X+x, mb.Min.Y+y).RGBA()
			out.Pix[y*out.Stride+x] = uint8((ma >> 8) * uint32(a) / 255)
		}
	}
	return out
}

func isInteger(v float64) bool { return v == math.Trunc(v) }

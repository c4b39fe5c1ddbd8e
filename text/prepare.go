// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package text

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// Bounds is a clip rectangle in target pixels. Right and Bottom are
// exclusive.
type Bounds struct {
	Left, Top, Right, Bottom int
}

// Empty reports whether the bounds contain no pixel.
func (b Bounds) Empty() bool { return b.Left >= b.Right || b.Top >= b.Bottom }

// Intersect returns the overlap of b and o.
func (b Bounds) Intersect(o Bounds) Bounds {
	r := Bounds{
		Left:   max(b.Left, o.Left),
		Top:    max(b.Top, o.Top),
		Right:  min(b.Right, o.Right),
		Bottom: min(b.Bottom, o.Bottom),
	}
	if r.Empty() {
		return Bounds{}
	}
	return r
}

// Area places a shaped buffer on a target.
type Area struct {
	Buffer *Buffer

	// Left and Top are the target position of the buffer's top-left corner.
	Left, Top float32

	// Scale multiplies positions and glyph sizes. Zero means 1.
	Scale float32

	// Bounds clips the glyphs. Glyphs outside are dropped; glyphs crossing
	// the edge are cut.
	Bounds Bounds

	// Color is the default glyph color.
	Color color.Color
}

// Quad is one glyph ready for drawing: a target rectangle in pixels, the
// matching atlas rectangle in texels, and a premultiplied color.
type Quad struct {
	X0, Y0, X1, Y1 float32
	U0, V0, U1, V1 float32
	Color          [4]float32
}

// Prepare rasterizes the visible glyphs of every area into atlas and
// returns their quads in drawing order. It stops at the first atlas error.
func Prepare(areas []Area, cache *GlyphCache, atlas *Atlas) ([]Quad, error) {
	var quads []Quad
	for i := range areas {
		var err error
		quads, err = prepareArea(quads, &areas[i], cache, atlas)
		if err != nil {
			return quads, fmt.Errorf("text: area %d: %w", i, err)
		}
	}
	return quads, nil
}

func prepareArea(quads []Quad, a *Area, cache *GlyphCache, atlas *Atlas) ([]Quad, error) {
	if a.Buffer == nil || a.Bounds.Empty() {
		return quads, nil
	}
	a.Buffer.Shape()
	scale := a.Scale
	if scale == 0 {
		scale = 1
	}
	col := premultiplied(a.Color)

	for _, run := range a.Buffer.Runs() {
		lineTop := a.Top + run.LineTop*scale
		if lineTop >= float32(a.Bounds.Bottom) {
			break
		}
		if lineTop+run.LineHeight*scale <= float32(a.Bounds.Top) {
			continue
		}
		baseY := a.Top + run.LineY*scale
		for _, g := range run.Glyphs {
			px, sub := subpixel(a.Left + g.X*scale)
			py := int(math.Round(float64(baseY + g.Y*scale)))
			cg := cache.glyph(g.Face, g.ID, g.Size*scale, sub)
			if cg.mask == nil {
				continue
			}
			r := cg.mask.Rect.Add(image.Pt(px, py))
			clipped := Bounds{r.Min.X, r.Min.Y, r.Max.X, r.Max.Y}.Intersect(a.Bounds)
			if clipped.Empty() {
				continue
			}
			slot, err := cg.place(atlas)
			if err != nil {
				return quads, err
			}
			// Cut the texel rectangle by the same amount as the target one.
			u0 := slot.Min.X + clipped.Left - r.Min.X
			v0 := slot.Min.Y + clipped.Top - r.Min.Y
			quads = append(quads, Quad{
				X0:    float32(clipped.Left),
				Y0:    float32(clipped.Top),
				X1:    float32(clipped.Right),
				Y1:    float32(clipped.Bottom),
				U0:    float32(u0),
				V0:    float32(v0),
				U1:    float32(u0 + clipped.Right - clipped.Left),
				V1:    float32(v0 + clipped.Bottom - clipped.Top),
				Color: col,
			})
		}
	}
	return quads, nil
}

// premultiplied converts c to premultiplied float components. Nil is
// opaque black.
func premultiplied(c color.Color) [4]float32 {
	if c == nil {
		return [4]float32{0, 0, 0, 1}
	}
	r, g, b, a := c.RGBA()
	return [4]float32{
		float32(r) / 0xffff,
		float32(g) / 0xffff,
		float32(b) / 0xffff,
		float32(a) / 0xffff,
	}
}

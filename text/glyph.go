// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package text

import (
	"image"
	"image/draw"
	"math"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/vector"
)

// Face is a loaded font face.
type Face = font.Face

// GlyphID is a glyph index within a face.
type GlyphID = font.GID

// subpixelSteps is the number of horizontal subpixel positions a glyph is
// rasterized at.
const subpixelSteps = 4

// outlineRasterizer turns glyph outlines into coverage masks.
type outlineRasterizer struct {
	z vector.Rasterizer
}

// rasterize renders glyph gid of face at size pixels, shifted right by
// dx pixels (0 <= dx < 1). The returned mask's Rect is expressed relative
// to the pen position on the baseline, y pointing down. Glyphs without an
// outline, and empty outlines such as spaces, return nil.
func (r *outlineRasterizer) rasterize(face *Face, gid GlyphID, size, dx float32) *image.Alpha {
	data := face.GlyphData(gid)
	outline, ok := data.(font.GlyphOutline)
	if !ok {
		if data != nil {
			slogger().Debug("text: glyph has no outline", "gid", gid)
		}
		return nil
	}
	if len(outline.Segments) == 0 || face.Upem() == 0 {
		return nil
	}
	scale := size / float32(face.Upem())

	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY := float32(-math.MaxFloat32), float32(-math.MaxFloat32)
	for _, seg := range outline.Segments {
		for _, p := range seg.ArgsSlice() {
			x, y := p.X*scale+dx, -p.Y*scale
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	x0, y0 := int(math.Floor(float64(minX))), int(math.Floor(float64(minY)))
	x1, y1 := int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY)))
	w, h := x1-x0, y1-y0
	if w <= 0 || h <= 0 {
		return nil
	}

	r.z.Reset(w, h)
	r.z.DrawOp = draw.Src
	ox, oy := dx-float32(x0), -float32(y0)
	pt := func(p opentype.SegmentPoint) (float32, float32) {
		return p.X*scale + ox, -p.Y*scale + oy
	}
	open := false
	for _, seg := range outline.Segments {
		switch seg.Op {
		case opentype.SegmentOpMoveTo:
			if open {
				r.z.ClosePath()
			}
			r.z.MoveTo(pt(seg.Args[0]))
			open = true
		case opentype.SegmentOpLineTo:
			r.z.LineTo(pt(seg.Args[0]))
		case opentype.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			r.z.QuadTo(bx, by, cx, cy)
		case opentype.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			dx2, dy2 := pt(seg.Args[2])
			r.z.CubeTo(bx, by, cx, cy, dx2, dy2)
		}
	}
	if open {
		r.z.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r.z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	mask.Rect = mask.Rect.Add(image.Pt(x0, y0))
	return mask
}

// subpixel splits a pen x position into an integer pixel and the index of
// the subpixel step.
func subpixel(x float32) (int, uint8) {
	ix := math.Floor(float64(x))
	step := int((float64(x) - ix) * subpixelSteps)
	if step >= subpixelSteps {
		step = subpixelSteps - 1
	}
	return int(ix), uint8(step)
}

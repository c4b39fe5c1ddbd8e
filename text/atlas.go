// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package text

import (
	"fmt"
	"image"
	"image/draw"
)

// atlasPadding is the gap kept between neighboring glyphs.
const atlasPadding = 1

// span is one horizontal run of the skyline: the columns x..x+w are used
// up to row y.
type span struct {
	x, y, w int
}

// Atlas packs glyph masks into one square alpha texture with a bottom-left
// skyline. It grows by doubling until it reaches its maximum size.
//
// The GPU side uploads Dirty after every prepare and recreates its texture
// when Size changes.
type Atlas struct {
	img     *image.Alpha
	maxSize int
	skyline []span
	dirty   image.Rectangle
	epoch   uint64
	glyphs  int
}

// NewAtlas returns an empty atlas of initial×initial texels that may grow
// to maxSize×maxSize.
func NewAtlas(initial, maxSize int) *Atlas {
	initial = max(initial, 1)
	maxSize = max(maxSize, initial)
	return &Atlas{
		img:     image.NewAlpha(image.Rect(0, 0, initial, initial)),
		maxSize: maxSize,
		skyline: []span{{w: initial}},
	}
}

// Size returns the current edge length in texels.
func (a *Atlas) Size() int { return a.img.Rect.Dx() }

// Image returns the backing image. It is replaced when the atlas grows.
func (a *Atlas) Image() *image.Alpha { return a.img }

// Glyphs returns the number of masks inserted since the last Clear.
func (a *Atlas) Glyphs() int { return a.glyphs }

// Epoch changes every time the atlas is cleared. Slots handed out under an
// older epoch are invalid.
func (a *Atlas) Epoch() uint64 { return a.epoch }

// Dirty returns the region modified since the last TakeDirty.
func (a *Atlas) Dirty() image.Rectangle { return a.dirty }

// TakeDirty returns the modified region and resets it.
func (a *Atlas) TakeDirty() image.Rectangle {
	r := a.dirty
	a.dirty = image.Rectangle{}
	return r
}

// Clear forgets every slot. The texture size is kept.
func (a *Atlas) Clear() {
	clear(a.img.Pix)
	a.skyline = append(a.skyline[:0], span{w: a.Size()})
	a.glyphs = 0
	a.epoch++
	a.dirty = a.img.Rect
}

// Insert copies mask into a free slot and returns the slot in atlas texels.
// A nil or empty mask returns an empty rectangle.
func (a *Atlas) Insert(mask *image.Alpha) (image.Rectangle, error) {
	if mask == nil || mask.Rect.Empty() {
		return image.Rectangle{}, nil
	}
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	if w+atlasPadding > a.maxSize || h+atlasPadding > a.maxSize {
		return image.Rectangle{}, fmt.Errorf("%w: %dx%d exceeds %d", ErrGlyphTooLarge, w, h, a.maxSize)
	}
	for {
		if pt, ok := a.alloc(w+atlasPadding, h+atlasPadding); ok {
			slot := image.Rect(pt.X, pt.Y, pt.X+w, pt.Y+h)
			draw.Draw(a.img, slot, mask, mask.Rect.Min, draw.Src)
			a.dirty = a.dirty.Union(slot)
			a.glyphs++
			return slot, nil
		}
		if !a.grow() {
			return image.Rectangle{}, ErrAtlasFull
		}
	}
}

// alloc places a w×h block at the lowest point of the skyline, leftmost
// on ties.
func (a *Atlas) alloc(w, h int) (image.Point, bool) {
	size := a.Size()
	best, bestX, bestY := -1, 0, 0
	for i, s := range a.skyline {
		y, ok := a.fit(i, w)
		if !ok || y+h > size {
			continue
		}
		if best < 0 || y < bestY || (y == bestY && s.x < bestX) {
			best, bestX, bestY = i, s.x, y
		}
	}
	if best < 0 {
		return image.Point{}, false
	}
	a.raise(best, w, bestY+h)
	return image.Pt(bestX, bestY), true
}

// fit returns the row a block of width w starting at span i rests on.
func (a *Atlas) fit(i, w int) (int, bool) {
	if a.skyline[i].x+w > a.Size() {
		return 0, false
	}
	y, left := 0, w
	for j := i; left > 0; j++ {
		y = max(y, a.skyline[j].y)
		left -= a.skyline[j].w
	}
	return y, true
}

// raise inserts a span of width w at span i with top y and trims the spans
// it covers.
func (a *Atlas) raise(i, w, y int) {
	x := a.skyline[i].x
	end := x + w
	j := i
	for j < len(a.skyline) && a.skyline[j].x+a.skyline[j].w <= end {
		j++
	}
	rest := a.skyline[j:]
	if len(rest) > 0 && rest[0].x < end {
		rest[0].w -= end - rest[0].x
		rest[0].x = end
	}
	merged := append([]span{}, a.skyline[:i]...)
	merged = append(merged, span{x: x, y: y, w: w})
	merged = append(merged, rest...)

	out := merged[:1]
	for _, s := range merged[1:] {
		if last := &out[len(out)-1]; last.y == s.y {
			last.w += s.w
			continue
		}
		out = append(out, s)
	}
	a.skyline = out
}

// grow doubles the atlas, keeping existing slots in place.
func (a *Atlas) grow() bool {
	size := a.Size()
	if size >= a.maxSize {
		return false
	}
	next := min(size*2, a.maxSize)
	img := image.NewAlpha(image.Rect(0, 0, next, next))
	draw.Draw(img, a.img.Rect, a.img, image.Point{}, draw.Src)
	a.img = img
	a.skyline = append(a.skyline, span{x: size, w: next - size})
	a.dirty = img.Rect
	slogger().Debug("text: atlas grown", "size", next)
	return true
}

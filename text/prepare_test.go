// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package text

import (
	"image/color"
	"testing"
)

func prepareHello(t *testing.T, bounds Bounds, left, top float32) ([]Quad, *Atlas) {
	t.Helper()
	b := NewBuffer(testFonts(t), Metrics{FontSize: 20, LineHeight: 24})
	b.SetText("Hello", Attrs{}, ShapingAdvanced)
	atlas := NewAtlas(64, 1024)
	quads, err := Prepare([]Area{{
		Buffer: b,
		Left:   left,
		Top:    top,
		Scale:  1,
		Bounds: bounds,
		Color:  color.RGBA{R: 0x80, A: 0x80},
	}}, NewGlyphCache(0), atlas)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	return quads, atlas
}

func TestPrepareQuads(t *testing.T) {
	quads, atlas := prepareHello(t, Bounds{0, 0, 200, 100}, 10, 10)
	if len(quads) != 5 {
		t.Fatalf("got %d quads, want 5", len(quads))
	}
	// H, e, l and o, plus a second l when the two fall on different
	// subpixel offsets.
	if n := atlas.Glyphs(); n < 4 || n > 5 {
		t.Errorf("atlas holds %d glyphs, want 4 or 5", n)
	}
	for i, q := range quads {
		if q.X0 < 10 || q.Y0 < 10 || q.X1 > 200 || q.Y1 > 34 {
			t.Errorf("quad %d outside the placed line: %+v", i, q)
		}
		if q.X1-q.X0 != q.U1-q.U0 || q.Y1-q.Y0 != q.V1-q.V0 {
			t.Errorf("quad %d target and texel sizes differ: %+v", i, q)
		}
		if q.Color[3] < 0.5 || q.Color[3] > 0.51 || q.Color[0] > q.Color[3] {
			t.Errorf("quad %d color %v not premultiplied", i, q.Color)
		}
	}
}

func TestPrepareClips(t *testing.T) {
	full, _ := prepareHello(t, Bounds{0, 0, 200, 100}, 10, 10)
	clipped, _ := prepareHello(t, Bounds{0, 0, 200, 20}, 10, 10)
	if len(clipped) != len(full) {
		t.Fatalf("clipping dropped glyphs: %d vs %d", len(clipped), len(full))
	}
	for i, q := range clipped {
		if q.Y1 > 20 {
			t.Errorf("quad %d extends to %v past the clip", i, q.Y1)
		}
		if q.V0 != full[i].V0 {
			t.Errorf("quad %d top texel moved: %v vs %v", i, q.V0, full[i].V0)
		}
		if q.V1-q.V0 != q.Y1-q.Y0 {
			t.Errorf("quad %d texel height not cut with the target", i)
		}
	}
}

func TestPrepareCulls(t *testing.T) {
	quads, atlas := prepareHello(t, Bounds{0, 0, 200, 100}, 10, 300)
	if len(quads) != 0 {
		t.Errorf("got %d quads for text below the bounds", len(quads))
	}
	if atlas.Glyphs() != 0 {
		t.Error("culled glyphs were uploaded")
	}

	if quads, _ := prepareHello(t, Bounds{}, 0, 0); len(quads) != 0 {
		t.Error("empty bounds produced quads")
	}
}

func TestPrepareAtlasFull(t *testing.T) {
	b := NewBuffer(testFonts(t), Metrics{FontSize: 40, LineHeight: 48})
	b.SetText("ABCDEFGHIJ", Attrs{}, ShapingBasic)
	_, err := Prepare([]Area{{Buffer: b, Bounds: Bounds{0, 0, 1000, 100}}}, NewGlyphCache(0), NewAtlas(32, 64))
	if err == nil {
		t.Fatal("expected an atlas error")
	}
}

func TestBoundsIntersect(t *testing.T) {
	a := Bounds{0, 0, 10, 10}
	if got := a.Intersect(Bounds{5, 5, 20, 20}); got != (Bounds{5, 5, 10, 10}) {
		t.Errorf("Intersect = %+v", got)
	}
	if got := a.Intersect(Bounds{20, 20, 30, 30}); !got.Empty() {
		t.Errorf("disjoint Intersect = %+v", got)
	}
}

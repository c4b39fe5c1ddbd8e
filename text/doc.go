// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package text lays out, shapes and rasterizes text for ggsurface.
//
// The pipeline follows the order in which a frame uses it:
//
//   - Source: font bytes or a font file registered by the application
//   - FontSystem: every registered face plus optional system fonts,
//     resolved per rune through a go-text fontscan.FontMap
//   - Buffer: one piece of text with metrics, wrap mode, per-line
//     alignment and a visible size; Shape lays out lines until the visible
//     height is filled
//   - GlyphCache: alpha masks of rasterized glyph outlines, keyed by face,
//     glyph, size and subpixel offset
//   - Atlas: a single-channel texture that packs cached masks along a skyline
//     and tracks the region that changed since the last upload
//   - Prepare: turns a laid-out Buffer placed at a position into textured
//     Quads clipped to a Bounds rectangle
//
// Shaping uses HarfBuzz through github.com/go-text/typesetting. Outlines are
// filled with golang.org/x/image/vector.
//
// # Example
//
//	sys, err := text.NewFontSystem(nil, text.SystemOptions{})
//	if err != nil {
//		return err
//	}
//	buf := text.NewBuffer(sys, text.Metrics{FontSize: 20, LineHeight: 30})
//	buf.SetSize(400, 300)
//	buf.SetText("Hello", text.Attrs{}, text.ShapingAdvanced)
//	buf.Shape()
//
//	cache := text.NewGlyphCache(0)
//	atlas := text.NewAtlas(256, 4096)
//	quads, err := text.Prepare([]text.Area{{Buffer: buf, Left: 10, Top: 10, Scale: 1,
//		Bounds: text.Bounds{Right: 400, Bottom: 300}, Color: color.White}}, cache, atlas)
package text

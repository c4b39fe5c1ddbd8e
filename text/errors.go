// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package text

import "errors"

// Sentinel errors for the text package.
var (
	// ErrEmptyFontData is returned when a font source has no bytes.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrNoFonts is returned when a font system ends up without any face.
	ErrNoFonts = errors.New("text: no usable fonts")

	// ErrAtlasFull is returned when a glyph does not fit into an atlas that
	// already has its maximum size.
	ErrAtlasFull = errors.New("text: glyph atlas is full")

	// ErrGlyphTooLarge is returned for glyph masks wider or taller than
	// the atlas can ever be.
	ErrGlyphTooLarge = errors.New("text: glyph larger than atlas")
)

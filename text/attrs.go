// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package text

import "github.com/go-text/typesetting/font"

// Style selects upright or slanted faces.
type Style uint8

const (
	StyleNormal Style = iota
	StyleItalic
)

// Weight is a CSS-style font weight. Zero means WeightNormal.
type Weight float32

const (
	WeightThin   Weight = 100
	WeightLight  Weight = 300
	WeightNormal Weight = 400
	WeightMedium Weight = 500
	WeightBold   Weight = 700
	WeightBlack  Weight = 900
)

// Attrs selects the face used for a span of text.
// The zero value picks the default family at normal weight and style.
type Attrs struct {
	// Family is a family name ("Go", "DejaVu Sans") or a generic family
	// ("sans-serif", "serif", "monospace"). Empty means the first family
	// registered with the font system.
	Family string

	Weight Weight
	Style  Style
}

// aspect converts the attributes into a go-text query aspect.
func (a Attrs) aspect() font.Aspect {
	w := a.Weight
	if w == 0 {
		w = WeightNormal
	}
	style := font.StyleNormal
	if a.Style == StyleItalic {
		style = font.StyleItalic
	}
	return font.Aspect{Style: style, Weight: font.Weight(w), Stretch: font.StretchNormal}
}

// Shaping selects how much work goes into turning runes into glyphs.
type Shaping uint8

const (
	// ShapingAdvanced splits text by script, direction and font coverage
	// before shaping each run. Fallback fonts fill in missing glyphs.
	ShapingAdvanced Shaping = iota

	// ShapingBasic shapes every line as a single left-to-right run with the
	// primary face. It is cheaper and suits plain Latin labels.
	ShapingBasic
)

// String returns the string representation of the shaping level.
func (s Shaping) String() string {
	switch s {
	case ShapingAdvanced:
		return "Advanced"
	case ShapingBasic:
		return "Basic"
	default:
		return "Unknown"
	}
}

// Align is the horizontal alignment of one line.
type Align uint8

const (
	// AlignNone leaves the line at its natural start edge: left for
	// left-to-right text and right for right-to-left text.
	AlignNone Align = iota
	AlignLeft
	AlignRight
	AlignCenter

	// AlignJustified stretches spaces so that every wrapped line except
	// the last one of a paragraph fills the buffer width.
	AlignJustified

	// AlignEnd is right for left-to-right text and left otherwise.
	AlignEnd
)

// String returns the string representation of the alignment.
func (a Align) String() string {
	switch a {
	case AlignNone:
		return "None"
	case AlignLeft:
		return "Left"
	case AlignRight:
		return "Right"
	case AlignCenter:
		return "Center"
	case AlignJustified:
		return "Justified"
	case AlignEnd:
		return "End"
	default:
		return "Unknown"
	}
}

// Wrap selects where lines may break when they exceed the buffer width.
type Wrap uint8

const (
	// WrapNone never wraps; lines may extend past the buffer width.
	WrapNone Wrap = iota

	// WrapGlyph breaks between any two graphemes.
	WrapGlyph

	// WrapWord breaks at word boundaries only. Words longer than the line
	// overflow.
	WrapWord

	// WrapWordOrGlyph breaks at word boundaries and falls back to grapheme
	// breaks for words that do not fit on a line by themselves.
	WrapWordOrGlyph
)

// String returns the string representation of the wrap mode.
func (w Wrap) String() string {
	switch w {
	case WrapNone:
		return "None"
	case WrapGlyph:
		return "Glyph"
	case WrapWord:
		return "Word"
	case WrapWordOrGlyph:
		return "WordOrGlyph"
	default:
		return "Unknown"
	}
}

// Metrics are the font size and line height of a buffer, in pixels.
type Metrics struct {
	FontSize   float32
	LineHeight float32
}

// Scale returns the metrics multiplied by s.
func (m Metrics) Scale(s float32) Metrics {
	return Metrics{FontSize: m.FontSize * s, LineHeight: m.LineHeight * s}
}

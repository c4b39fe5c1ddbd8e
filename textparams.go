package ggsurface

import (
	"image/color"

	"github.com/gogpu/ggsurface/text"
)

// lineHeightFactor is the line height, in font sizes, used when
// TextParams.LineHeight is zero.
const lineHeightFactor = 1.5

// TextParams describes how one DrawText call lays out and colors its text.
// A nil *TextParams means DefaultTextParams().
type TextParams struct {
	// Attrs selects family, weight and style.
	Attrs text.Attrs

	// Shaping selects the shaping level.
	Shaping text.Shaping

	// Align is applied to every line.
	Align text.Align

	// LineHeight in pixels. Zero means 1.5 times the font size.
	LineHeight float32

	// Wrap selects where long lines break.
	Wrap text.Wrap

	// Width and Height size the layout box. Zero means the canvas size.
	Width, Height float32

	// Scale multiplies positions and glyph sizes. Zero means 1.
	Scale float32

	// Bounds clips the text. Nil means the measured extent of the text
	// placed at the draw position.
	Bounds *text.Bounds

	// Color of the glyphs. Nil means white.
	Color color.Color
}

// DefaultTextParams returns advanced shaping, natural alignment, word
// wrapping, scale 1 and white text.
func DefaultTextParams() TextParams {
	return TextParams{
		Shaping: text.ShapingAdvanced,
		Align:   text.AlignNone,
		Wrap:    text.WrapWord,
		Scale:   1,
		Color:   White,
	}
}

func (p *TextParams) lineHeight(size float32) float32 {
	if p.LineHeight > 0 {
		return p.LineHeight
	}
	return size * lineHeightFactor
}

func (p *TextParams) scale() float32 {
	if p.Scale > 0 {
		return p.Scale
	}
	return 1
}

func (p *TextParams) color() color.Color {
	if p.Color == nil {
		return White
	}
	return p.Color
}

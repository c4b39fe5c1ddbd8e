package ggsurface

import (
	"image/color"
	"math"
)

// Color is a straight-alpha color with components in [0, 1].
// It implements color.Color, which reports premultiplied values.
type Color struct {
	R, G, B, A float64
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	p := c.Premul()
	return uint32(p.R) * 0x101, uint32(p.G) * 0x101, uint32(p.B) * 0x101, uint32(p.A) * 0x101
}

// Premul returns the color as 8-bit premultiplied RGBA, the canvas pixel
// format.
func (c Color) Premul() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: to8(clamp01(c.R) * a),
		G: to8(clamp01(c.G) * a),
		B: to8(clamp01(c.B) * a),
		A: to8(a),
	}
}

// Opaque reports whether the color has full alpha.
func (c Color) Opaque() bool { return c.A >= 1 }

// Lerp interpolates between c and other.
func (c Color) Lerp(other Color, t float64) Color {
	return Color{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

// WithAlpha returns c with alpha a.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// RGB creates an opaque color.
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// RGBA creates a color from straight-alpha components.
func RGBA(r, g, b, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// RGB8 creates an opaque color from 8-bit components.
func RGB8(r, g, b uint8) Color {
	return Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: 1}
}

// FromColor converts any color.Color.
func FromColor(c color.Color) Color {
	if cc, ok := c.(Color); ok {
		return cc
	}
	r, g, b, a := c.RGBA()
	if a == 0 {
		return Transparent
	}
	return Color{
		R: float64(r) / float64(a),
		G: float64(g) / float64(a),
		B: float64(b) / float64(a),
		A: float64(a) / 0xffff,
	}
}

// Hex parses "RGB", "RGBA", "RRGGBB" or "RRGGBBAA", with or without a
// leading '#'. Malformed input yields opaque black.
func Hex(hex string) Color {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}
	var v [4]uint32
	v[3] = 255
	switch len(hex) {
	case 3, 4:
		for i := range len(hex) {
			n, ok := parseHex(hex[i : i+1])
			if !ok {
				return Black
			}
			v[i] = n * 17
		}
	case 6, 8:
		for i := 0; i < len(hex); i += 2 {
			n, ok := parseHex(hex[i : i+2])
			if !ok {
				return Black
			}
			v[i/2] = n
		}
	default:
		return Black
	}
	return Color{R: float64(v[0]) / 255, G: float64(v[1]) / 255, B: float64(v[2]) / 255, A: float64(v[3]) / 255}
}

func parseHex(s string) (uint32, bool) {
	var n uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		n *= 16
		switch {
		case '0' <= c && c <= '9':
			n += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			n += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			n += uint32(c - 'A' + 10)
		default:
			return 0, false
		}
	}
	return n, true
}

// HSL creates an opaque color from hue [0, 360), saturation and lightness
// in [0, 1].
func HSL(h, s, l float64) Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	h /= 360

	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h*6, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 1.0/6:
		r, g, b = c, x, 0
	case h < 2.0/6:
		r, g, b = x, c, 0
	case h < 3.0/6:
		r, g, b = 0, c, x
	case h < 4.0/6:
		r, g, b = 0, x, c
	case h < 5.0/6:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return RGB(r+m, g+m, b+m)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func to8(x float64) uint8 {
	return uint8(math.Round(x * 255))
}

// Common colors.
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Red         = RGB(1, 0, 0)
	Green       = RGB(0, 1, 0)
	Blue        = RGB(0, 0, 1)
	Yellow      = RGB(1, 1, 0)
	Cyan        = RGB(0, 1, 1)
	Magenta     = RGB(1, 0, 1)
	Transparent = RGBA(0, 0, 0, 0)
)

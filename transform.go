package ggsurface

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Transform is a 2D affine transformation in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// mapping (x, y) to (a*x + b*y + c, d*x + e*y + f).
//
// The zero value is not the identity; use Identity.
type Transform struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{A: 1, E: 1}
}

// Translate returns a translation.
func Translate(x, y float64) Transform {
	return Transform{A: 1, C: x, E: 1, F: y}
}

// Scale returns a scale about the origin.
func Scale(x, y float64) Transform {
	return Transform{A: x, E: y}
}

// Rotate returns a rotation about the origin, angle in radians. Positive
// angles turn clockwise on screen since y points down.
func Rotate(angle float64) Transform {
	sin, cos := math.Sincos(angle)
	return Transform{A: cos, B: -sin, D: sin, E: cos}
}

// Shear returns a shear.
func Shear(x, y float64) Transform {
	return Transform{A: 1, B: x, D: y, E: 1}
}

// Multiply returns t * o: o is applied first, then t.
func (t Transform) Multiply(o Transform) Transform {
	return Transform{
		A: t.A*o.A + t.B*o.D,
		B: t.A*o.B + t.B*o.E,
		C: t.A*o.C + t.B*o.F + t.C,
		D: t.D*o.A + t.E*o.D,
		E: t.D*o.B + t.E*o.E,
		F: t.D*o.C + t.E*o.F + t.F,
	}
}

// Apply maps a point.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return t.A*x + t.B*y + t.C, t.D*x + t.E*y + t.F
}

// Invert returns the inverse and whether it exists.
func (t Transform) Invert() (Transform, bool) {
	det := t.A*t.E - t.B*t.D
	if math.Abs(det) < 1e-12 {
		return Identity(), false
	}
	inv := 1 / det
	return Transform{
		A: t.E * inv,
		B: -t.B * inv,
		C: (t.B*t.F - t.C*t.E) * inv,
		D: -t.D * inv,
		E: t.A * inv,
		F: (t.C*t.D - t.A*t.F) * inv,
	}, true
}

// IsTranslation reports whether t only translates.
func (t Transform) IsTranslation() bool {
	return t.A == 1 && t.B == 0 && t.D == 0 && t.E == 1
}

// Aff3 returns t in the form used by golang.org/x/image/draw.
func (t Transform) Aff3() f64.Aff3 {
	return f64.Aff3{t.A, t.B, t.C, t.D, t.E, t.F}
}

package ggsurface

import "golang.org/x/image/draw"

// Op is the compositing operator of a blit.
type Op int

const (
	// OpOver composites the source over the canvas.
	OpOver Op = iota
	// OpSource replaces the covered canvas pixels with the source.
	OpSource
)

// Quality selects the resampling filter used when a blit is transformed.
type Quality int

const (
	// QualityNearest picks the nearest source pixel.
	QualityNearest Quality = iota
	// QualityBilinear is a fast approximation of bilinear filtering.
	QualityBilinear
	// QualityBilinearExact is slower, exact bilinear filtering.
	QualityBilinearExact
	// QualityBicubic uses the Catmull-Rom kernel.
	QualityBicubic
)

// String returns the string representation of the quality.
func (q Quality) String() string {
	switch q {
	case QualityNearest:
		return "Nearest"
	case QualityBilinear:
		return "Bilinear"
	case QualityBilinearExact:
		return "BilinearExact"
	case QualityBicubic:
		return "Bicubic"
	default:
		return "Unknown"
	}
}

// Paint controls how an image is composited onto the canvas.
// A nil *Paint means NewPaint().
type Paint struct {
	// Op is the compositing operator.
	Op Op

	// Opacity scales the source alpha, in [0, 1].
	Opacity float64

	// Quality is the resampling filter for scaled or rotated blits.
	Quality Quality
}

// NewPaint returns source-over compositing at full opacity with nearest
// neighbour sampling.
func NewPaint() *Paint {
	return &Paint{Op: OpOver, Opacity: 1, Quality: QualityNearest}
}

// Clone returns a copy of p.
func (p *Paint) Clone() *Paint {
	c := *p
	return &c
}

func (p *Paint) orDefault() *Paint {
	if p == nil {
		return NewPaint()
	}
	return p
}

func (p *Paint) drawOp() draw.Op {
	if p.Op == OpSource {
		return draw.Src
	}
	return draw.Over
}

func (p *Paint) interpolator() draw.Interpolator {
	switch p.Quality {
	case QualityBilinear:
		return draw.ApproxBiLinear
	case QualityBilinearExact:
		return draw.BiLinear
	case QualityBicubic:
		return draw.CatmullRom
	default:
		return draw.NearestNeighbor
	}
}

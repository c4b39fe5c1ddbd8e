package ggsurface

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync/atomic"

	"golang.org/x/image/draw"

	"github.com/gogpu/ggsurface/platform"
	"github.com/gogpu/ggsurface/text"
)

// errPresenterReleased is returned by a released software presenter.
var errPresenterReleased = errors.New("ggsurface: presenter released")

// softwareBackend composites frames and glyphs on the CPU into an image
// kept in memory. It shows nothing on a real window; it serves headless
// windows, tests and image output.
type softwareBackend struct {
	logger atomic.Pointer[slog.Logger]
}

// SoftwareBackend returns the CPU presenter backend. Its presenters
// implement Snapshotter.
func SoftwareBackend() PresenterFactory {
	return &softwareBackend{}
}

// SetLogger implements the logger propagation used by SetLogger.
func (b *softwareBackend) SetLogger(l *slog.Logger) { b.logger.Store(l) }

func (b *softwareBackend) log() *slog.Logger {
	if l := b.logger.Load(); l != nil {
		return l
	}
	return slogger()
}

// NewPresenter implements PresenterFactory.
func (b *softwareBackend) NewPresenter(win platform.Window, cfg PresenterConfig) (Presenter, error) {
	p := &softwarePresenter{}
	if err := p.Resize(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}
	if !win.NativeHandle().IsZero() {
		b.log().Warn("ggsurface: software presenter on a native window; frames stay in memory", "window", win.ID())
	}
	return p, nil
}

type softwarePresenter struct {
	out      *image.RGBA
	released bool
	frames   int
}

func (p *softwarePresenter) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("ggsurface: invalid presenter size %dx%d", width, height)
	}
	p.out = image.NewRGBA(image.Rect(0, 0, width, height))
	return nil
}

func (p *softwarePresenter) NewTextLayer() (TextLayer, error) {
	if p.released {
		return nil, errPresenterReleased
	}
	return &softwareLayer{p: p}, nil
}

// Present scales frame to the output size, then draws every layer's glyphs
// over it.
func (p *softwarePresenter) Present(frame *image.RGBA, layers []TextLayer) error {
	if p.released {
		return errPresenterReleased
	}
	ob := p.out.Bounds()
	if frame.Bounds().Size() == ob.Size() {
		draw.Draw(p.out, ob, frame, frame.Bounds().Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(p.out, ob, frame, frame.Bounds(), draw.Src, nil)
	}

	for i, l := range layers {
		sl, ok := l.(*softwareLayer)
		if !ok || sl.p != p {
			return fmt.Errorf("ggsurface: layer %d does not belong to this presenter", i)
		}
		if sl.dead {
			return fmt.Errorf("ggsurface: layer %d: %w", i, errPresenterReleased)
		}
		sl.draw(p.out)
	}
	p.frames++
	return nil
}

// Snapshot returns the last presented image. It is reused by the next
// Present.
func (p *softwarePresenter) Snapshot() *image.RGBA { return p.out }

func (p *softwarePresenter) Release() {
	p.released = true
}

type softwareLayer struct {
	p     *softwarePresenter
	atlas *image.Alpha
	quads []text.Quad
	dead  bool
}

func (l *softwareLayer) Prepare(atlas *text.Atlas, quads []text.Quad) error {
	if l.dead || l.p.released {
		return errPresenterReleased
	}
	l.atlas = atlas.Image()
	l.quads = append(l.quads[:0], quads...)
	atlas.TakeDirty()
	return nil
}

// draw composites the glyph coverage tinted with each quad's color.
func (l *softwareLayer) draw(dst *image.RGBA) {
	for _, q := range l.quads {
		r := image.Rect(int(q.X0), int(q.Y0), int(q.X1), int(q.Y1))
		src := image.NewUniform(color.RGBA{
			R: unit8(q.Color[0]),
			G: unit8(q.Color[1]),
			B: unit8(q.Color[2]),
			A: unit8(q.Color[3]),
		})
		draw.DrawMask(dst, r, src, image.Point{}, l.atlas, image.Pt(int(q.U0), int(q.V0)), draw.Over)
	}
}

func (l *softwareLayer) Release() {
	l.dead = true
	l.quads = nil
}

func unit8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

package ggsurface

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/ggsurface/platform"
	"github.com/gogpu/ggsurface/text"
)

// Renderer draws frames for one window: a CPU canvas, a presenter and the
// text machinery. It is only created together with its window by
// NewSurface and is reached through Surface.Renderer.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	canvas    *Canvas
	presenter Presenter

	fonts *fontRegistry
	cache *text.GlyphCache
	atlas *text.Atlas

	// pool grows by one layer when a frame has more text than ever before.
	// areas[i] is what pool[i] was prepared from this frame.
	pool  []TextLayer
	areas []text.Area
	used  int

	frames uint64
	closed bool
}

// newRenderer builds the renderer for win. The presenter is created from
// the window's native handle; the renderer keeps no reference to win.
func newRenderer(win platform.Window, cfg Config) (*Renderer, error) {
	w, h := win.InnerSize()
	canvas, err := NewCanvas(w, h)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSurfaceInit, err)
	}
	p, err := cfg.backend().NewPresenter(win, PresenterConfig{Width: w, Height: h, Format: cfg.Format})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSurfaceInit, err)
	}
	return &Renderer{
		canvas:    canvas,
		presenter: p,
		fonts:     newFontRegistry(cfg.Fonts, cfg.fontOptions()),
		cache:     text.NewGlyphCache(cfg.GlyphCacheSize),
		atlas:     text.NewAtlas(cfg.AtlasSize, cfg.MaxAtlasSize),
	}, nil
}

// Canvas returns the CPU canvas.
func (r *Renderer) Canvas() *Canvas { return r.canvas }

// Size returns the canvas size in physical pixels.
func (r *Renderer) Size() (width, height int) { return r.canvas.Width(), r.canvas.Height() }

// Fill overwrites the whole canvas with c.
func (r *Renderer) Fill(c Color) { r.canvas.Fill(c) }

// Blit composites src at (x, y). See Canvas.Blit.
func (r *Renderer) Blit(x, y int, src image.Image, paint *Paint, t Transform, mask image.Image) {
	r.canvas.Blit(x, y, src, paint, t, mask)
}

// Background stretches src over the whole canvas.
func (r *Renderer) Background(src image.Image, paint *Paint) {
	r.canvas.Background(src, paint)
}

// LoadFonts registers font sources. With rebuild the font system is
// rebuilt at once from every source registered so far; otherwise the next
// DrawText rebuilds it.
func (r *Renderer) LoadFonts(sources []text.Source, rebuild bool) error {
	if err := r.fonts.add(sources, rebuild); err != nil {
		return fmt.Errorf("%w: %w", ErrTextPrepare, err)
	}
	if rebuild {
		r.cache.Clear()
	}
	return nil
}

// FontSystem returns the font system, building it if needed.
func (r *Renderer) FontSystem() (*text.FontSystem, error) {
	stale := r.fonts.system == nil || r.fonts.stale
	fs, err := r.fonts.fonts()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTextPrepare, err)
	}
	if stale {
		r.cache.Clear()
	}
	return fs, nil
}

// DrawText lays out s with its top-left corner at (x, y) and prepares it
// for the next Present. Text is drawn over the canvas in call order.
// params may be nil for the defaults.
func (r *Renderer) DrawText(s string, x, y, size float32, params *TextParams) error {
	if params == nil {
		def := DefaultTextParams()
		params = &def
	}
	fs, err := r.FontSystem()
	if err != nil {
		return err
	}

	buf := text.NewBuffer(fs, text.Metrics{FontSize: size, LineHeight: params.lineHeight(size)})
	bw, bh := params.Width, params.Height
	if bw <= 0 {
		bw = float32(r.canvas.Width())
	}
	if bh <= 0 {
		bh = float32(r.canvas.Height())
	}
	buf.SetSize(bw, bh)
	buf.SetWrap(params.Wrap)
	buf.SetText(s, params.Attrs, params.Shaping)
	buf.SetAlign(params.Align)
	buf.Shape()

	scale := params.scale()
	area := text.Area{
		Buffer: buf,
		Left:   x,
		Top:    y,
		Scale:  scale,
		Color:  params.color(),
	}
	if params.Bounds != nil {
		area.Bounds = *params.Bounds
	} else {
		area.Bounds = measuredBounds(buf, x, y, scale)
	}

	layer, err := r.nextLayer()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTextPrepare, err)
	}
	if err := r.prepare(layer, area); err != nil {
		return fmt.Errorf("%w: %w", ErrTextPrepare, err)
	}
	r.areas = append(r.areas[:r.used], area)
	r.used++
	return nil
}

// Text draws s in color c with the default parameters.
func (r *Renderer) Text(s string, x, y, size float32, c Color) error {
	p := DefaultTextParams()
	p.Color = c
	return r.DrawText(s, x, y, size, &p)
}

// nextLayer returns the first unused pool layer, growing the pool by one
// if every layer is in use.
func (r *Renderer) nextLayer() (TextLayer, error) {
	if r.used < len(r.pool) {
		return r.pool[r.used], nil
	}
	l, err := r.presenter.NewTextLayer()
	if err != nil {
		return nil, err
	}
	r.pool = append(r.pool, l)
	slogger().Debug("ggsurface: text layer pool grown", "size", len(r.pool))
	return l, nil
}

// prepare rasterizes area into the atlas and uploads its quads to layer.
// When the atlas is full it is cleared and the layers already used this
// frame are prepared again, since their texels are gone.
func (r *Renderer) prepare(layer TextLayer, area text.Area) error {
	quads, err := text.Prepare([]text.Area{area}, r.cache, r.atlas)
	if errors.Is(err, text.ErrAtlasFull) {
		slogger().Debug("ggsurface: glyph atlas full, clearing", "size", r.atlas.Size(), "glyphs", r.atlas.Glyphs())
		r.atlas.Clear()
		for i := 0; i < r.used; i++ {
			if err := r.prepareOne(r.pool[i], r.areas[i]); err != nil {
				return err
			}
		}
		quads, err = text.Prepare([]text.Area{area}, r.cache, r.atlas)
	}
	if err != nil {
		return err
	}
	return layer.Prepare(r.atlas, quads)
}

func (r *Renderer) prepareOne(layer TextLayer, area text.Area) error {
	quads, err := text.Prepare([]text.Area{area}, r.cache, r.atlas)
	if err != nil {
		return err
	}
	return layer.Prepare(r.atlas, quads)
}

// measuredBounds is the extent of the laid out text placed at (x, y): the
// rightmost glyph edge or widest line, and the height of all lines.
func measuredBounds(buf *text.Buffer, x, y, scale float32) text.Bounds {
	w, h := buf.Size()
	for _, run := range buf.Runs() {
		for _, g := range run.Glyphs {
			w = max(w, g.X+g.Advance)
		}
	}
	return text.Bounds{
		Left:   int(math.Floor(float64(x))),
		Top:    int(math.Floor(float64(y))),
		Right:  int(math.Ceil(float64(x + w*scale))),
		Bottom: int(math.Ceil(float64(y + h*scale))),
	}
}

// Present shows the canvas with the text of this frame drawn over it.
// The used text layers are returned to the pool whether or not the frame
// made it to the screen.
func (r *Renderer) Present() error {
	layers := r.pool[:r.used]
	err := r.presenter.Present(r.canvas.Image(), layers)
	r.used = 0
	clear(r.areas)
	r.areas = r.areas[:0]
	if err != nil {
		return newPresentError(err)
	}
	r.frames++
	return nil
}

// Resize reallocates the canvas for width×height pixels and resizes the
// presenter. The canvas is cleared.
func (r *Renderer) Resize(width, height int) error {
	if width == r.canvas.Width() && height == r.canvas.Height() {
		return nil
	}
	canvas, err := NewCanvas(width, height)
	if err != nil {
		return err
	}
	if err := r.presenter.Resize(width, height); err != nil {
		return err
	}
	r.canvas = canvas
	slogger().Debug("ggsurface: renderer resized", "width", width, "height", height)
	return nil
}

// TextUsed returns the number of text layers used in the current frame.
func (r *Renderer) TextUsed() int { return r.used }

// TextPoolSize returns the number of text layers allocated.
func (r *Renderer) TextPoolSize() int { return len(r.pool) }

// Frames returns the number of frames presented successfully.
func (r *Renderer) Frames() uint64 { return r.frames }

// Snapshot returns the last presented image if the presenter keeps one.
func (r *Renderer) Snapshot() *image.RGBA {
	if s, ok := r.presenter.(Snapshotter); ok {
		return s.Snapshot()
	}
	return nil
}

// close releases the text layers and the presenter.
func (r *Renderer) close() {
	if r.closed {
		return
	}
	r.closed = true
	for _, l := range r.pool {
		l.Release()
	}
	r.pool, r.areas, r.used = nil, nil, 0
	r.presenter.Release()
}

package ggsurface

import (
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggsurface/platform"
	"github.com/gogpu/ggsurface/text"
)

// PresenterConfig describes the presenter requested for a window.
type PresenterConfig struct {
	// Width and Height are the window's inner size in physical pixels.
	Width, Height int

	// Format is the texture format of the window surface.
	Format gputypes.TextureFormat
}

// PresenterFactory creates presenters for windows. Backends implement it.
type PresenterFactory interface {
	NewPresenter(win platform.Window, cfg PresenterConfig) (Presenter, error)
}

// PresenterFunc adapts a function to PresenterFactory.
type PresenterFunc func(win platform.Window, cfg PresenterConfig) (Presenter, error)

// NewPresenter implements PresenterFactory.
func (f PresenterFunc) NewPresenter(win platform.Window, cfg PresenterConfig) (Presenter, error) {
	return f(win, cfg)
}

// Presenter shows frames in one window.
//
// Present draws frame scaled to the output size, then every layer in
// order over it. Errors wrapping gpu.ErrDeviceLost are fatal; every other
// error only drops the frame.
type Presenter interface {
	Resize(width, height int) error
	NewTextLayer() (TextLayer, error)
	Present(frame *image.RGBA, layers []TextLayer) error
	Release()
}

// TextLayer holds the prepared glyphs of one text area. Layers are pooled
// by the renderer and prepared again every frame.
type TextLayer interface {
	Prepare(atlas *text.Atlas, quads []text.Quad) error
	Release()
}

// Snapshotter is implemented by presenters that keep the last presented
// frame in memory.
type Snapshotter interface {
	Snapshot() *image.RGBA
}

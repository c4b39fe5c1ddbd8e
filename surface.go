package ggsurface

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/ggsurface/platform"
	"github.com/gogpu/ggsurface/text"
)

// Surface is a window together with the renderer drawing into it. The two
// are created together, and Close destroys them together: the renderer
// first, then the window.
//
// After Close, drawing calls do nothing and fallible calls return
// ErrSurfaceClosed. A Surface is not safe for concurrent use; drive it
// from the event loop.
type Surface struct {
	window   platform.Window
	renderer *Renderer
	closed   bool
}

// NewSurface creates a window with the default attributes and its
// renderer.
func NewSurface(loop platform.EventLoop, cfg Config, title string, width, height int) (*Surface, error) {
	return NewSurfaceWith(loop, cfg, title, width, height, nil)
}

// NewSurfaceWith is NewSurface with a window attribute customizer, see
// NewWindowWith. If the renderer cannot be built the window is closed and
// no Surface is returned.
func NewSurfaceWith(loop platform.EventLoop, cfg Config, title string, width, height int,
	customize func(*platform.WindowAttributes)) (*Surface, error) {
	win, err := NewWindowWith(loop, cfg, title, width, height, customize)
	if err != nil {
		return nil, err
	}
	r, err := newRenderer(win, cfg)
	if err != nil {
		if cerr := win.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return nil, err
	}
	w, h := r.Size()
	slogger().Info("ggsurface: surface created", "window", win.ID(), "title", title, "size", fmt.Sprintf("%dx%d", w, h))
	return &Surface{window: win, renderer: r}, nil
}

// Window returns the surface's window, for reading its id, using it as a
// parent or requesting redraws. Do not close it; close the Surface.
func (s *Surface) Window() platform.Window { return s.window }

// ID returns the window id.
func (s *Surface) ID() platform.WindowID { return s.window.ID() }

// Renderer returns the renderer, or nil after Close.
func (s *Surface) Renderer() *Renderer {
	if s.closed {
		return nil
	}
	return s.renderer
}

// Closed reports whether Close has been called.
func (s *Surface) Closed() bool { return s.closed }

// RequestRedraw asks the event loop for a RedrawRequested event.
func (s *Surface) RequestRedraw() {
	if s.closed {
		return
	}
	s.window.RequestRedraw()
}

// Fill overwrites the whole canvas with c.
func (s *Surface) Fill(c Color) {
	if s.closed {
		return
	}
	s.renderer.Fill(c)
}

// Blit composites src at (x, y). See Canvas.Blit.
func (s *Surface) Blit(x, y int, src image.Image, paint *Paint, t Transform, mask image.Image) {
	if s.closed {
		return
	}
	s.renderer.Blit(x, y, src, paint, t, mask)
}

// Background stretches src over the whole canvas.
func (s *Surface) Background(src image.Image, paint *Paint) {
	if s.closed {
		return
	}
	s.renderer.Background(src, paint)
}

// LoadFonts registers font sources. See Renderer.LoadFonts.
func (s *Surface) LoadFonts(sources []text.Source, rebuild bool) error {
	if s.closed {
		return ErrSurfaceClosed
	}
	return s.renderer.LoadFonts(sources, rebuild)
}

// DrawText prepares text for the next Present. See Renderer.DrawText.
func (s *Surface) DrawText(str string, x, y, size float32, params *TextParams) error {
	if s.closed {
		return ErrSurfaceClosed
	}
	return s.renderer.DrawText(str, x, y, size, params)
}

// Text draws str in color c with the default parameters.
func (s *Surface) Text(str string, x, y, size float32, c Color) error {
	if s.closed {
		return ErrSurfaceClosed
	}
	return s.renderer.Text(str, x, y, size, c)
}

// Present shows the frame. See Renderer.Present.
func (s *Surface) Present() error {
	if s.closed {
		return ErrSurfaceClosed
	}
	return s.renderer.Present()
}

// Resize resizes canvas and presenter to width×height physical pixels.
func (s *Surface) Resize(width, height int) error {
	if s.closed {
		return ErrSurfaceClosed
	}
	return s.renderer.Resize(width, height)
}

// Size returns the canvas size in physical pixels, or zero after Close.
func (s *Surface) Size() (width, height int) {
	if s.closed {
		return 0, 0
	}
	return s.renderer.Size()
}

// HandleEvent applies the window events a surface reacts to by itself.
// It reports whether ev was consumed. Resized events with a zero size
// (minimized windows) are consumed without resizing.
func (s *Surface) HandleEvent(ev platform.Event) (bool, error) {
	if s.closed {
		return false, ErrSurfaceClosed
	}
	switch ev.Kind {
	case platform.EventResized:
		if ev.Width <= 0 || ev.Height <= 0 {
			return true, nil
		}
		if err := s.renderer.Resize(ev.Width, ev.Height); err != nil {
			return true, err
		}
		s.window.RequestRedraw()
		return true, nil
	default:
		return false, nil
	}
}

// Close releases the renderer, then closes the window. Calling it again
// returns nil.
func (s *Surface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.renderer.close()
	if err := s.window.Close(); err != nil {
		return fmt.Errorf("ggsurface: close window %s: %w", s.window.ID(), err)
	}
	slogger().Debug("ggsurface: surface closed", "window", s.window.ID())
	return nil
}

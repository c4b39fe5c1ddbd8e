package ggsurface

import (
	"fmt"

	"github.com/gogpu/ggsurface/platform"
)

// NewWindow creates a window with the library defaults for cfg.Platform.
func NewWindow(loop platform.EventLoop, cfg Config, title string, width, height int) (platform.Window, error) {
	return NewWindowWith(loop, cfg, title, width, height, nil)
}

// NewWindowWith creates a window like NewWindow, calling customize on the
// attributes after the defaults are set so it can override any of them.
//
// The defaults are: the given title and logical size, a minimum size equal
// to that size, decorations on, and visibility and resizing from
// cfg.Platform.
func NewWindowWith(loop platform.EventLoop, cfg Config, title string, width, height int,
	customize func(*platform.WindowAttributes)) (platform.Window, error) {
	attrs := defaultAttributes(cfg.Platform, title, width, height)
	if customize != nil {
		customize(&attrs)
	}
	if err := attrs.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWindowCreation, err)
	}
	win, err := loop.CreateWindow(attrs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWindowCreation, err)
	}
	slogger().Debug("ggsurface: window created", "id", win.ID(), "title", title,
		"logical", fmt.Sprintf("%dx%d", attrs.Width, attrs.Height))
	return win, nil
}

func defaultAttributes(p Platform, title string, width, height int) platform.WindowAttributes {
	return platform.WindowAttributes{
		Title:     title,
		Width:     width,
		Height:    height,
		MinWidth:  width,
		MinHeight: height,
		Resizable: p.Resizable,
		Visible:   p.Visible,
		Decorated: true,
	}
}

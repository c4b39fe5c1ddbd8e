// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package platform

import "fmt"

// WindowID identifies a window for the lifetime of its event loop.
// The zero value never names a live window.
type WindowID uint64

// String returns a short printable form of the id.
func (id WindowID) String() string {
	return fmt.Sprintf("window#%d", uint64(id))
}

// FullscreenMode selects how a window covers the screen.
type FullscreenMode uint8

const (
	// FullscreenNone keeps a regular decorated window.
	FullscreenNone FullscreenMode = iota

	// FullscreenBorderless covers the current monitor at desktop resolution.
	FullscreenBorderless

	// FullscreenExclusive switches the monitor to the window size.
	FullscreenExclusive
)

// String returns the string representation of the mode.
func (m FullscreenMode) String() string {
	switch m {
	case FullscreenNone:
		return "None"
	case FullscreenBorderless:
		return "Borderless"
	case FullscreenExclusive:
		return "Exclusive"
	default:
		return "Unknown"
	}
}

// WindowAttributes describes a window to be created.
// Width and Height are logical sizes; the toolkit multiplies them by the
// monitor scale factor to obtain physical pixels.
type WindowAttributes struct {
	Title string

	Width, Height int

	// MinWidth and MinHeight bound interactive resizing. Zero means unbounded.
	MinWidth, MinHeight int

	Resizable bool
	Visible   bool
	Decorated bool

	// Parent makes the new window a child of an existing window.
	// Toolkits without child windows report an error when it is set.
	Parent WindowID

	Fullscreen FullscreenMode
}

// Validate reports whether the attributes can describe a window.
func (a *WindowAttributes) Validate() error {
	if a.Width <= 0 || a.Height <= 0 {
		return fmt.Errorf("platform: invalid window size %dx%d", a.Width, a.Height)
	}
	if a.MinWidth < 0 || a.MinHeight < 0 {
		return fmt.Errorf("platform: invalid minimum size %dx%d", a.MinWidth, a.MinHeight)
	}
	return nil
}

// HandleKind names the windowing system a NativeHandle belongs to.
type HandleKind uint8

const (
	// HandleNone marks a window without an OS surface (offscreen).
	HandleNone HandleKind = iota
	HandleWin32
	HandleXlib
	HandleWayland
	HandleCocoa
	HandleAndroid
)

// NativeHandle carries the raw OS handles a GPU surface is created from.
// Display is zero on systems without a display connection (Win32, Cocoa).
type NativeHandle struct {
	Kind    HandleKind
	Display uintptr
	Window  uintptr
}

// IsZero reports whether the handle refers to no OS window.
func (h NativeHandle) IsZero() bool {
	return h.Kind == HandleNone || h.Window == 0
}

// Window is a live native window.
//
// Windows are owned by whoever created them; Close destroys the native
// resource and must be called exactly once by the owner. Other methods may
// be called any number of times before Close.
type Window interface {
	// ID returns the identifier used in events for this window.
	ID() WindowID

	// Title returns the current window title.
	Title() string

	// InnerSize returns the drawable area in physical pixels.
	InnerSize() (width, height int)

	// ScaleFactor returns the ratio of physical to logical pixels.
	ScaleFactor() float64

	// RequestRedraw asks the loop to deliver EventRedrawRequested.
	// Multiple requests before the next delivery collapse into one.
	RequestRedraw()

	// NativeHandle returns the OS handles for GPU surface creation.
	NativeHandle() NativeHandle

	// Close destroys the native window.
	Close() error
}

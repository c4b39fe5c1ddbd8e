// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package platform

// EventKind identifies the type of a window event.
type EventKind uint8

const (
	// EventResized reports a new inner size in physical pixels (Width, Height).
	EventResized EventKind = iota + 1

	// EventRedrawRequested asks the handler to draw and present a frame.
	EventRedrawRequested

	// EventCloseRequested reports that the user asked to close the window.
	// The window stays open until its owner closes it.
	EventCloseRequested

	// EventScaleChanged reports a new scale factor (Scale).
	EventScaleChanged

	// EventFocused reports focus gain (Focused true) or loss.
	EventFocused

	// EventKeyPressed and EventKeyReleased carry Key and Mods.
	EventKeyPressed
	EventKeyReleased

	// EventPointerMoved carries X, Y in physical pixels.
	EventPointerMoved

	// EventPointerPressed and EventPointerReleased carry Button, X and Y.
	EventPointerPressed
	EventPointerReleased

	// EventUser carries an application value posted through the loop.
	EventUser
)

// String returns the string representation of the kind.
func (k EventKind) String() string {
	switch k {
	case EventResized:
		return "Resized"
	case EventRedrawRequested:
		return "RedrawRequested"
	case EventCloseRequested:
		return "CloseRequested"
	case EventScaleChanged:
		return "ScaleChanged"
	case EventFocused:
		return "Focused"
	case EventKeyPressed:
		return "KeyPressed"
	case EventKeyReleased:
		return "KeyReleased"
	case EventPointerMoved:
		return "PointerMoved"
	case EventPointerPressed:
		return "PointerPressed"
	case EventPointerReleased:
		return "PointerReleased"
	case EventUser:
		return "User"
	default:
		return "Unknown"
	}
}

// Key is a toolkit-independent key code. Printable keys use their
// upper-case ASCII value; the named constants cover the rest.
type Key int

const (
	KeyUnknown   Key = 0
	KeySpace     Key = ' '
	KeyEscape    Key = 256
	KeyEnter     Key = 257
	KeyTab       Key = 258
	KeyBackspace Key = 259
	KeyLeft      Key = 263
	KeyRight     Key = 262
	KeyUp        Key = 265
	KeyDown      Key = 264
)

// Modifiers is a bit set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModSuper
)

// Button identifies a pointer button.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Event is one item of the window event stream. Only the fields documented
// for Kind are meaningful.
type Event struct {
	Kind EventKind

	Width, Height int

	Scale float64

	Focused bool

	Key  Key
	Mods Modifiers

	Button Button
	X, Y   float64

	Value any
}

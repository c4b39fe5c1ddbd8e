// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build (darwin && !ios) || windows || (linux && !android) || freebsd || openbsd || dragonfly

package glfw

import (
	"errors"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gogpu/ggsurface/platform"
)

// Window is a GLFW window.
type Window struct {
	loop  *Loop
	id    platform.WindowID
	gw    *glfw.Window
	title string
}

var _ platform.Window = (*Window)(nil)

// ID implements platform.Window.
func (w *Window) ID() platform.WindowID { return w.id }

// Title implements platform.Window.
func (w *Window) Title() string { return w.title }

// SetTitle changes the window title.
func (w *Window) SetTitle(title string) {
	if w.gw == nil {
		return
	}
	w.title = title
	w.gw.SetTitle(title)
}

// InnerSize implements platform.Window. It reports the framebuffer size,
// which is the physical pixel size on every GLFW platform.
func (w *Window) InnerSize() (width, height int) {
	if w.gw == nil {
		return 0, 0
	}
	return w.gw.GetFramebufferSize()
}

// ScaleFactor implements platform.Window.
func (w *Window) ScaleFactor() float64 {
	if w.gw == nil {
		return 1
	}
	x, _ := w.gw.GetContentScale()
	if x <= 0 {
		return 1
	}
	return float64(x)
}

// RequestRedraw implements platform.Window.
func (w *Window) RequestRedraw() {
	if w.gw == nil {
		return
	}
	w.loop.redraw[w.id] = true
	glfw.PostEmptyEvent()
}

// NativeHandle implements platform.Window.
func (w *Window) NativeHandle() platform.NativeHandle {
	if w.gw == nil {
		return platform.NativeHandle{}
	}
	return nativeHandle(w.gw)
}

// Close implements platform.Window.
func (w *Window) Close() error {
	if w.gw == nil {
		return errors.New("glfw: window already closed")
	}
	w.destroy()
	return nil
}

func (w *Window) destroy() {
	if w.gw == nil {
		return
	}
	w.loop.forget(w)
	w.gw.Destroy()
	w.gw = nil
}

// installCallbacks routes GLFW callbacks into the loop queue. Callbacks run
// inside PollEvents/WaitEvents, so they only enqueue.
func (w *Window) installCallbacks() {
	l := w.loop
	w.gw.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		l.push(w.id, platform.Event{Kind: platform.EventResized, Width: width, Height: height})
	})
	w.gw.SetCloseCallback(func(gw *glfw.Window) {
		// The owner decides when the window goes away.
		gw.SetShouldClose(false)
		l.push(w.id, platform.Event{Kind: platform.EventCloseRequested})
	})
	w.gw.SetRefreshCallback(func(*glfw.Window) {
		l.redraw[w.id] = true
	})
	w.gw.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		l.push(w.id, platform.Event{Kind: platform.EventFocused, Focused: focused})
	})
	w.gw.SetContentScaleCallback(func(_ *glfw.Window, x, _ float32) {
		l.push(w.id, platform.Event{Kind: platform.EventScaleChanged, Scale: float64(x)})
	})
	w.gw.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		kind := platform.EventKeyPressed
		if action == glfw.Release {
			kind = platform.EventKeyReleased
		}
		l.push(w.id, platform.Event{Kind: kind, Key: mapKey(key), Mods: mapMods(mods)})
	})
	w.gw.SetCursorPosCallback(func(gw *glfw.Window, x, y float64) {
		sx, sy := w.cursorScale(gw)
		l.push(w.id, platform.Event{Kind: platform.EventPointerMoved, X: x * sx, Y: y * sy})
	})
	w.gw.SetMouseButtonCallback(func(gw *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		kind := platform.EventPointerPressed
		if action == glfw.Release {
			kind = platform.EventPointerReleased
		}
		x, y := gw.GetCursorPos()
		sx, sy := w.cursorScale(gw)
		l.push(w.id, platform.Event{
			Kind:   kind,
			Button: mapButton(button),
			Mods:   mapMods(mods),
			X:      x * sx,
			Y:      y * sy,
		})
	})
}

// cursorScale converts screen coordinates to framebuffer pixels.
func (w *Window) cursorScale(gw *glfw.Window) (float64, float64) {
	ww, wh := gw.GetSize()
	fw, fh := gw.GetFramebufferSize()
	if ww == 0 || wh == 0 {
		return 1, 1
	}
	return float64(fw) / float64(ww), float64(fh) / float64(wh)
}

// mapKey converts a GLFW key. platform.Key values for printable keys and
// the named keys use the GLFW numbering, so the conversion is direct.
func mapKey(k glfw.Key) platform.Key {
	if k == glfw.KeyUnknown {
		return platform.KeyUnknown
	}
	return platform.Key(k)
}

func mapMods(m glfw.ModifierKey) platform.Modifiers {
	var out platform.Modifiers
	if m&glfw.ModShift != 0 {
		out |= platform.ModShift
	}
	if m&glfw.ModControl != 0 {
		out |= platform.ModControl
	}
	if m&glfw.ModAlt != 0 {
		out |= platform.ModAlt
	}
	if m&glfw.ModSuper != 0 {
		out |= platform.ModSuper
	}
	return out
}

func mapButton(b glfw.MouseButton) platform.Button {
	switch b {
	case glfw.MouseButtonRight:
		return platform.ButtonRight
	case glfw.MouseButtonMiddle:
		return platform.ButtonMiddle
	default:
		return platform.ButtonLeft
	}
}

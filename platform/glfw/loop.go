// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build (darwin && !ios) || windows || (linux && !android) || freebsd || openbsd || dragonfly

// Package glfw runs the platform event loop on GLFW 3.3.
//
// GLFW must be driven from the main OS thread. The package locks the
// calling goroutine to its thread at init, so Run must be called from
// main.main (directly or through functions it calls synchronously).
//
// Windows are created with the NoAPI client hint: GLFW creates no OpenGL
// context and the GPU presenter attaches its own surface to the native
// handle. Child windows are not supported by GLFW; attributes with a
// Parent are rejected.
package glfw

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gogpu/ggsurface/platform"
)

func init() {
	runtime.LockOSThread()
}

// ErrChildWindow is returned when WindowAttributes.Parent is set.
var ErrChildWindow = errors.New("glfw: child windows are not supported")

type pending struct {
	id platform.WindowID
	ev platform.Event
}

// Loop is a GLFW event loop. The zero value is not usable; call New.
type Loop struct {
	initialized bool
	exit        bool
	created     bool

	nextID  platform.WindowID
	windows map[platform.WindowID]*Window
	byGLFW  map[*glfw.Window]*Window

	queue  []pending
	redraw map[platform.WindowID]bool
}

var (
	_ platform.ActiveLoop = (*Loop)(nil)
	_ platform.Runner     = (*Loop)(nil)
)

// New returns a loop. GLFW itself is initialized by Run.
func New() *Loop {
	return &Loop{
		windows: make(map[platform.WindowID]*Window),
		byGLFW:  make(map[*glfw.Window]*Window),
		redraw:  make(map[platform.WindowID]bool),
	}
}

// Run initializes GLFW, delivers Resumed, and then dispatches events until
// Exit is called or the last window has been closed. GLFW is terminated
// before Run returns.
func (l *Loop) Run(h platform.Handler) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw: init: %w", err)
	}
	l.initialized = true
	defer func() {
		for _, w := range l.windows {
			w.destroy()
		}
		glfw.Terminate()
		l.initialized = false
	}()

	h.Resumed(l)
	for !l.exit {
		if l.created && len(l.windows) == 0 {
			break
		}
		if len(l.queue) == 0 && len(l.redraw) == 0 {
			glfw.WaitEvents()
		} else {
			glfw.PollEvents()
		}
		l.dispatch(h)
	}
	return nil
}

// dispatch delivers everything queued by callbacks, then one redraw per
// window that asked for it.
func (l *Loop) dispatch(h platform.Handler) {
	for len(l.queue) > 0 && !l.exit {
		p := l.queue[0]
		l.queue = l.queue[1:]
		h.WindowEvent(l, p.id, p.ev)
	}
	if l.exit {
		return
	}
	ids := make([]platform.WindowID, 0, len(l.redraw))
	for id := range l.redraw {
		ids = append(ids, id)
	}
	clear(l.redraw)
	for _, id := range ids {
		if _, live := l.windows[id]; !live {
			continue
		}
		h.WindowEvent(l, id, platform.Event{Kind: platform.EventRedrawRequested})
	}
}

// Exit implements platform.ActiveLoop.
func (l *Loop) Exit() {
	l.exit = true
	if l.initialized {
		glfw.PostEmptyEvent()
	}
}

// Post implements platform.ActiveLoop.
func (l *Loop) Post(id platform.WindowID, value any) {
	l.push(id, platform.Event{Kind: platform.EventUser, Value: value})
	if l.initialized {
		glfw.PostEmptyEvent()
	}
}

func (l *Loop) push(id platform.WindowID, ev platform.Event) {
	l.queue = append(l.queue, pending{id: id, ev: ev})
}

// CreateWindow implements platform.EventLoop. It must be called while Run
// is active, typically from Handler.Resumed.
func (l *Loop) CreateWindow(attrs platform.WindowAttributes) (platform.Window, error) {
	if !l.initialized {
		return nil, errors.New("glfw: CreateWindow called outside Run")
	}
	if err := attrs.Validate(); err != nil {
		return nil, err
	}
	if attrs.Parent != 0 {
		return nil, ErrChildWindow
	}

	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.ScaleToMonitor, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolHint(attrs.Resizable))
	glfw.WindowHint(glfw.Visible, boolHint(attrs.Visible))
	glfw.WindowHint(glfw.Decorated, boolHint(attrs.Decorated))

	width, height := attrs.Width, attrs.Height
	var monitor *glfw.Monitor
	switch attrs.Fullscreen {
	case platform.FullscreenExclusive:
		monitor = glfw.GetPrimaryMonitor()
	case platform.FullscreenBorderless:
		monitor = glfw.GetPrimaryMonitor()
		if monitor != nil {
			mode := monitor.GetVideoMode()
			glfw.WindowHint(glfw.RedBits, mode.RedBits)
			glfw.WindowHint(glfw.GreenBits, mode.GreenBits)
			glfw.WindowHint(glfw.BlueBits, mode.BlueBits)
			glfw.WindowHint(glfw.RefreshRate, mode.RefreshRate)
			width, height = mode.Width, mode.Height
		}
	}

	gw, err := glfw.CreateWindow(width, height, attrs.Title, monitor, nil)
	if err != nil {
		return nil, fmt.Errorf("glfw: create window: %w", err)
	}
	if attrs.MinWidth > 0 || attrs.MinHeight > 0 {
		gw.SetSizeLimits(limit(attrs.MinWidth), limit(attrs.MinHeight), glfw.DontCare, glfw.DontCare)
	}

	l.nextID++
	w := &Window{loop: l, id: l.nextID, gw: gw, title: attrs.Title}
	l.windows[w.id] = w
	l.byGLFW[gw] = w
	l.created = true
	w.installCallbacks()

	slogger().Debug("glfw: window created", "id", w.id, "title", attrs.Title, "size", fmt.Sprintf("%dx%d", width, height))
	return w, nil
}

func (l *Loop) forget(w *Window) {
	delete(l.windows, w.id)
	delete(l.byGLFW, w.gw)
	delete(l.redraw, w.id)
}

func boolHint(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

func limit(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}

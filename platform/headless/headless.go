// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package headless implements the platform contracts without an OS window
// system. Windows are plain records, events are queued in memory, and the
// loop runs until it is told to exit, runs out of work, or reaches its
// frame budget.
//
// A headless window has no native handle, so GPU presenters render it into
// an offscreen texture. This makes the package suitable for tests, CI, and
// rendering single frames to image files.
package headless

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/ggsurface/platform"
)

// ErrParentNotFound is returned when WindowAttributes.Parent names no live window.
var ErrParentNotFound = errors.New("headless: parent window not found")

// Option configures a Loop.
type Option func(*Loop)

// WithScaleFactor sets the scale factor reported by every window.
func WithScaleFactor(scale float64) Option {
	return func(l *Loop) {
		if scale > 0 {
			l.scale = scale
		}
	}
}

// WithMaxFrames stops the loop after n RedrawRequested deliveries.
// Zero means no limit.
func WithMaxFrames(n int) Option {
	return func(l *Loop) {
		l.maxFrames = n
	}
}

type queued struct {
	id      platform.WindowID
	ev      platform.Event
	suspend bool
}

// Loop is an in-memory event loop.
// It is safe to create windows and queue events from other goroutines;
// the handler itself is only called from Run.
type Loop struct {
	mu      sync.Mutex
	nextID  platform.WindowID
	windows map[platform.WindowID]*Window
	queue   []queued
	redraw  map[platform.WindowID]bool
	failErr error

	scale     float64
	maxFrames int
	frames    int
	exit      bool
	running   bool
}

// New creates an empty loop.
func New(opts ...Option) *Loop {
	l := &Loop{
		windows: make(map[platform.WindowID]*Window),
		redraw:  make(map[platform.WindowID]bool),
		scale:   1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FailNextWindow makes the next CreateWindow call fail with err.
func (l *Loop) FailNextWindow(err error) {
	l.mu.Lock()
	l.failErr = err
	l.mu.Unlock()
}

// CreateWindow implements platform.EventLoop.
func (l *Loop) CreateWindow(attrs platform.WindowAttributes) (platform.Window, error) {
	if err := attrs.Validate(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failErr != nil {
		err := l.failErr
		l.failErr = nil
		return nil, err
	}
	if attrs.Parent != 0 {
		if _, ok := l.windows[attrs.Parent]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrParentNotFound, attrs.Parent)
		}
	}

	l.nextID++
	w := &Window{
		loop:   l,
		id:     l.nextID,
		attrs:  attrs,
		width:  int(math.Round(float64(attrs.Width) * l.scale)),
		height: int(math.Round(float64(attrs.Height) * l.scale)),
		scale:  l.scale,
	}
	l.windows[w.id] = w
	return w, nil
}

// Window returns the live window with the given id.
func (l *Loop) Window(id platform.WindowID) (*Window, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[id]
	return w, ok
}

// Len returns the number of live windows.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Send queues an event for the window.
func (l *Loop) Send(id platform.WindowID, ev platform.Event) {
	l.mu.Lock()
	l.queue = append(l.queue, queued{id: id, ev: ev})
	l.mu.Unlock()
}

// Post implements platform.ActiveLoop.
func (l *Loop) Post(id platform.WindowID, value any) {
	l.Send(id, platform.Event{Kind: platform.EventUser, Value: value})
}

// Suspend queues a suspend/resume cycle, as a mobile host does when the
// application is sent to the background and brought back.
func (l *Loop) Suspend() {
	l.mu.Lock()
	l.queue = append(l.queue, queued{suspend: true})
	l.mu.Unlock()
}

// Exit implements platform.ActiveLoop.
func (l *Loop) Exit() {
	l.mu.Lock()
	l.exit = true
	l.mu.Unlock()
}

// Frames returns the number of RedrawRequested events delivered so far.
func (l *Loop) Frames() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Run implements platform.Runner. It delivers Resumed, then drains queued
// events and pending redraws in order until there is nothing left to do,
// Exit is called, or the frame budget is spent.
func (l *Loop) Run(h platform.Handler) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return errors.New("headless: loop already running")
	}
	l.running = true
	l.exit = false
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
	}()

	h.Resumed(l)
	for {
		item, ok := l.next()
		if !ok {
			return nil
		}
		switch {
		case item.suspend:
			h.Suspended(l)
			h.Resumed(l)
		default:
			h.WindowEvent(l, item.id, item.ev)
		}
	}
}

// next pops the next queued event, or converts a pending redraw request
// into one once the queue is empty.
func (l *Loop) next() (queued, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.exit {
		return queued{}, false
	}
	if len(l.queue) > 0 {
		item := l.queue[0]
		l.queue = l.queue[1:]
		return item, true
	}
	if l.maxFrames > 0 && l.frames >= l.maxFrames {
		return queued{}, false
	}
	for id := range l.redraw {
		delete(l.redraw, id)
		if _, live := l.windows[id]; !live {
			continue
		}
		l.frames++
		return queued{id: id, ev: platform.Event{Kind: platform.EventRedrawRequested}}, true
	}
	return queued{}, false
}

// Window is an in-memory window.
type Window struct {
	loop *Loop
	id   platform.WindowID

	mu     sync.Mutex
	attrs  platform.WindowAttributes
	width  int
	height int
	scale  float64
	closed bool

	redraws int
	onClose func()
}

var _ platform.Window = (*Window)(nil)

// ID implements platform.Window.
func (w *Window) ID() platform.WindowID { return w.id }

// Title implements platform.Window.
func (w *Window) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attrs.Title
}

// Attributes returns the attributes the window was created with.
func (w *Window) Attributes() platform.WindowAttributes {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attrs
}

// InnerSize implements platform.Window.
func (w *Window) InnerSize() (width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// ScaleFactor implements platform.Window.
func (w *Window) ScaleFactor() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scale
}

// RequestRedraw implements platform.Window.
func (w *Window) RequestRedraw() {
	w.mu.Lock()
	w.redraws++
	w.mu.Unlock()

	w.loop.mu.Lock()
	w.loop.redraw[w.id] = true
	w.loop.mu.Unlock()
}

// Redraws returns how many times RequestRedraw was called.
func (w *Window) Redraws() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.redraws
}

// NativeHandle implements platform.Window. Headless windows have none.
func (w *Window) NativeHandle() platform.NativeHandle {
	return platform.NativeHandle{Kind: platform.HandleNone}
}

// Resize changes the inner size and queues EventResized, as a user drag
// would on a real toolkit.
func (w *Window) Resize(width, height int) {
	w.mu.Lock()
	w.width, w.height = width, height
	w.mu.Unlock()
	w.loop.Send(w.id, platform.Event{Kind: platform.EventResized, Width: width, Height: height})
}

// OnClose registers a callback run when the window is closed.
func (w *Window) OnClose(fn func()) {
	w.mu.Lock()
	w.onClose = fn
	w.mu.Unlock()
}

// Closed reports whether Close has been called.
func (w *Window) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Close implements platform.Window.
func (w *Window) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return errors.New("headless: window already closed")
	}
	w.closed = true
	fn := w.onClose
	w.mu.Unlock()

	w.loop.mu.Lock()
	delete(w.loop.windows, w.id)
	delete(w.loop.redraw, w.id)
	w.loop.mu.Unlock()

	if fn != nil {
		fn()
	}
	return nil
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package platform

// EventLoop creates windows. Toolkits that can only create windows while
// running hand an ActiveLoop to the Handler instead of exposing one up front.
type EventLoop interface {
	CreateWindow(attrs WindowAttributes) (Window, error)
}

// ActiveLoop is the running loop as seen from inside a Handler callback.
type ActiveLoop interface {
	EventLoop

	// Exit stops the loop after the current callback returns.
	Exit()

	// Post queues an EventUser with the given value for the window.
	Post(id WindowID, value any)
}

// Handler receives the event stream of a running loop.
//
// Resumed is delivered once when the loop starts and again after every
// Suspended. Between Suspended and Resumed no GPU surface may exist: the
// handler must release every presentation resource in Suspended and
// rebuild in Resumed.
type Handler interface {
	Resumed(loop ActiveLoop)
	Suspended(loop ActiveLoop)
	WindowEvent(loop ActiveLoop, id WindowID, ev Event)
}

// Runner is an event loop that drives a Handler until Exit is called or
// every window has been closed.
type Runner interface {
	Run(h Handler) error
}

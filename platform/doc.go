// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package platform defines the contracts between ggsurface and a windowing
// toolkit: window attributes, native handles, the event stream, and the
// application handler driven by an event loop.
//
// Two implementations ship with the module:
//   - platform/glfw: desktop windows on GLFW 3.3
//   - platform/headless: in-memory windows for tests and offscreen output
//
// Every event is delivered on the goroutine running the loop, one at a time.
// Handlers must not block.
package platform

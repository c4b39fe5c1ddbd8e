// Package ggsurface binds a native window, a CPU pixel canvas, GPU
// presentation and text shaping into one Surface.
//
// # Overview
//
// A Surface owns a window and the renderer built for it. Drawing happens
// on the CPU canvas (Fill, Blit, Background) and through GPU text layers
// (DrawText). Present uploads the canvas, draws the text over it in call
// order and shows the result.
//
// # Quick Start
//
//	func (a *app) Resumed(loop platform.ActiveLoop) {
//		s, err := ggsurface.NewSurface(loop, ggsurface.DefaultConfig(), "hello", 400, 300)
//		if err != nil {
//			log.Fatal(err)
//		}
//		a.surface = s
//	}
//
//	func (a *app) WindowEvent(loop platform.ActiveLoop, id platform.WindowID, ev platform.Event) {
//		if ev.Kind != platform.EventRedrawRequested {
//			return
//		}
//		a.surface.Fill(ggsurface.White)
//		_ = a.surface.Text("Hello, World!", 10, 10, 24, ggsurface.Black)
//		_ = a.surface.Present()
//	}
//
// # Lifetime
//
// A renderer is only ever created by NewSurface for the window it was
// created with, and Surface.Close releases the renderer before it closes
// the window. The renderer keeps no reference to the window object itself:
// its presenter holds the GPU target made from the window's native handle.
//
// On platforms that revoke GPU surfaces while the application is in the
// background, every Surface must be closed in Handler.Suspended and built
// again in Handler.Resumed. Manager does this for a set of windows.
//
// # Backends
//
// Presenters come from registered backends. "gpu" renders through
// gogpu/wgpu and "software" composites on the CPU. Config.Backend selects
// one explicitly; otherwise the available backends are tried from the
// highest priority down.
package ggsurface

// Version is the current version of the library.
const Version = "0.1.0"

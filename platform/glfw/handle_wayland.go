// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build linux && !android && wayland

package glfw

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gogpu/ggsurface/platform"
)

func nativeHandle(w *glfw.Window) platform.NativeHandle {
	return platform.NativeHandle{
		Kind:    platform.HandleWayland,
		Display: uintptr(unsafe.Pointer(glfw.GetWaylandDisplay())),
		Window:  uintptr(unsafe.Pointer(w.GetWaylandWindow())),
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build windows

package glfw

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gogpu/ggsurface/platform"
)

func nativeHandle(w *glfw.Window) platform.NativeHandle {
	return platform.NativeHandle{
		Kind:   platform.HandleWin32,
		Window: uintptr(unsafe.Pointer(w.GetWin32Window())),
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build darwin && !ios

package glfw

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gogpu/ggsurface/platform"
)

func nativeHandle(w *glfw.Window) platform.NativeHandle {
	return platform.NativeHandle{
		Kind:   platform.HandleCocoa,
		Window: w.GetCocoaWindow(),
	}
}

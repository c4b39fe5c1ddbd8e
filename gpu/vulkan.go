// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	// Registers the Vulkan backend with hal so that Open can find it.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

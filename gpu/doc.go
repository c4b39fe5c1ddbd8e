// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpu presents CPU-rendered frames and shaped text through the
// gogpu/wgpu hardware abstraction layer.
//
// A Presenter owns the GPU objects of one window: the frame texture that
// receives the canvas pixels every frame, the glyph atlas texture shared by
// every TextLayer, the two render pipelines, and a Target that either
// presents to the window surface or reads the result back to memory.
//
// Each frame runs one render pass: the canvas is blitted over the whole
// target, then every prepared TextLayer draws its glyph quads with
// premultiplied alpha blending, in order.
//
// Devices come from Open (a standalone Vulkan device), OpenWith (any hal
// backend, including hal/noop for tests) or FromProvider (a device shared by
// a gpucontext.DeviceProvider).
package gpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import "errors"

var (
	// ErrNoAdapter is returned when the backend exposes no adapter.
	ErrNoAdapter = errors.New("gpu: no adapter available")

	// ErrBackendUnavailable is returned when the requested hal backend is
	// not compiled in or cannot start.
	ErrBackendUnavailable = errors.New("gpu: backend unavailable")

	// ErrDeviceLost is wrapped by every error after which the device can no
	// longer be used. The presenter must be rebuilt.
	ErrDeviceLost = errors.New("gpu: device lost")

	// ErrSurfaceLost is wrapped when the window surface could not provide
	// a texture for one frame. The next frame may succeed.
	ErrSurfaceLost = errors.New("gpu: surface texture unavailable")

	// ErrReleased is returned by methods called after Release.
	ErrReleased = errors.New("gpu: presenter released")

	// ErrNoWindowHandle is returned for windows without a native handle.
	ErrNoWindowHandle = errors.New("gpu: window has no native handle")
)

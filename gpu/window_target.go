// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// WindowTarget presents frames to a native window through a hal surface.
type WindowTarget struct {
	dev     *Device
	surface hal.Surface
	format  gputypes.TextureFormat

	width, height int
	configured    bool

	acquired   hal.SurfaceTexture
	view       hal.TextureView
	suboptimal bool
}

var _ Target = (*WindowTarget)(nil)

// NewWindowTarget creates a surface for the native display and window
// handles. Shared devices have no instance to create surfaces with.
func NewWindowTarget(dev *Device, display, window uintptr, format gputypes.TextureFormat) (*WindowTarget, error) {
	if window == 0 {
		return nil, ErrNoWindowHandle
	}
	if dev.instance == nil {
		return nil, fmt.Errorf("%w: shared devices cannot create window surfaces", ErrBackendUnavailable)
	}
	surface, err := dev.instance.CreateSurface(display, window)
	if err != nil {
		return nil, fmt.Errorf("gpu: create surface: %w", err)
	}
	return &WindowTarget{dev: dev, surface: surface, format: format}, nil
}

// Format implements Target.
func (t *WindowTarget) Format() gputypes.TextureFormat { return t.format }

// Resize implements Target. It reconfigures the surface.
func (t *WindowTarget) Resize(width, height int) error {
	if t.configured && width == t.width && height == t.height {
		return nil
	}
	t.width, t.height = width, height
	return t.configure()
}

func (t *WindowTarget) configure() error {
	t.configured = false
	err := t.surface.Configure(t.dev.device, &hal.SurfaceConfiguration{
		Width:       uint32(t.width),  //nolint:gosec // validated by the presenter
		Height:      uint32(t.height), //nolint:gosec // validated by the presenter
		Format:      t.format,
		Usage:       gputypes.TextureUsageRenderAttachment,
		PresentMode: hal.PresentModeFifo,
		AlphaMode:   hal.CompositeAlphaModeOpaque,
	})
	if err != nil {
		return fmt.Errorf("gpu: configure surface: %w", err)
	}
	t.configured = true
	return nil
}

// Acquire implements Target. An unconfigured surface is configured again
// at the last size, and an outdated one is reconfigured and retried once.
func (t *WindowTarget) Acquire() (hal.TextureView, error) {
	if !t.configured {
		if err := t.configure(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSurfaceLost, err)
		}
	}
	out, err := t.surface.AcquireTexture(nil)
	if errors.Is(err, hal.ErrSurfaceOutdated) {
		slogger().Debug("gpu: surface outdated, reconfiguring", "size", fmt.Sprintf("%dx%d", t.width, t.height))
		if cerr := t.configure(); cerr != nil {
			return nil, fmt.Errorf("%w: %w", ErrSurfaceLost, cerr)
		}
		out, err = t.surface.AcquireTexture(nil)
	}
	if err != nil {
		if !errors.Is(err, hal.ErrNotReady) && !errors.Is(err, hal.ErrTimeout) {
			t.configured = false
		}
		return nil, fmt.Errorf("%w: %w", ErrSurfaceLost, err)
	}
	view, err := t.dev.device.CreateTextureView(out.Texture, &hal.TextureViewDescriptor{Label: "ggsurface_surface_view"})
	if err != nil {
		t.surface.DiscardTexture(out.Texture)
		return nil, fmt.Errorf("%w: surface view: %w", ErrSurfaceLost, err)
	}
	t.acquired, t.view = out.Texture, view
	t.suboptimal = out.Suboptimal
	return view, nil
}

// Record implements Target.
func (t *WindowTarget) Record(hal.CommandEncoder) {}

// Finish implements Target. It queues the acquired texture for display
// without waiting for the submission.
func (t *WindowTarget) Finish(uint64) error {
	defer t.dropView()
	tex := t.acquired
	t.acquired = nil
	if err := t.dev.queue.Present(t.surface, tex, nil); err != nil {
		t.configured = false
		return fmt.Errorf("%w: present: %w", ErrSurfaceLost, err)
	}
	if t.suboptimal {
		t.configured = false
	}
	return nil
}

// Discard implements Target.
func (t *WindowTarget) Discard() {
	if t.acquired != nil {
		t.surface.DiscardTexture(t.acquired)
		t.acquired = nil
	}
	t.dropView()
}

func (t *WindowTarget) dropView() {
	if t.view != nil && t.dev.device != nil {
		t.dev.device.DestroyTextureView(t.view)
	}
	t.view = nil
}

// Release implements Target.
func (t *WindowTarget) Release() {
	t.Discard()
	if t.surface == nil {
		return
	}
	if t.configured && t.dev.device != nil {
		t.surface.Unconfigure(t.dev.device)
	}
	t.surface.Destroy()
	t.surface = nil
	t.configured = false
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"
	"image"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// readbackTimeout bounds the wait for an offscreen frame to complete.
const readbackTimeout = 5 * time.Second

// copyPitchAlignment is the row alignment required by texture-to-buffer
// copies.
const copyPitchAlignment = 256

// Target is where a presenter's render pass ends up.
type Target interface {
	// Format returns the color format of the views handed out by Acquire.
	Format() gputypes.TextureFormat

	// Resize reallocates for a new size in pixels.
	Resize(width, height int) error

	// Acquire returns the view to render the next frame into.
	Acquire() (hal.TextureView, error)

	// Record appends commands after the render pass, before submission.
	Record(enc hal.CommandEncoder)

	// Finish runs after the frame was submitted with the given index.
	Finish(submission uint64) error

	// Discard abandons an acquired frame.
	Discard()

	Release()
}

// Offscreen renders into a texture and reads every frame back to memory.
// It serves headless presenters and tests.
type Offscreen struct {
	dev    *Device
	format gputypes.TextureFormat

	width, height int
	tex           hal.Texture
	view          hal.TextureView
	staging       hal.Buffer
	pitch         uint32

	img *image.RGBA
}

var _ Target = (*Offscreen)(nil)

// NewOffscreen returns an offscreen target in format. Only 8-bit RGBA and
// BGRA formats can be read back.
func NewOffscreen(dev *Device, format gputypes.TextureFormat) *Offscreen {
	return &Offscreen{dev: dev, format: format}
}

// Format implements Target.
func (o *Offscreen) Format() gputypes.TextureFormat { return o.format }

// Resize implements Target.
func (o *Offscreen) Resize(width, height int) error {
	if width == o.width && height == o.height && o.tex != nil {
		return nil
	}
	o.destroy()
	d := o.dev.device
	w, h := uint32(width), uint32(height) //nolint:gosec // sizes are validated by the presenter

	tex, err := d.CreateTexture(&hal.TextureDescriptor{
		Label:         "ggsurface_offscreen",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        o.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create offscreen texture: %w", err)
	}
	o.tex = tex

	view, err := d.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "ggsurface_offscreen_view"})
	if err != nil {
		o.destroy()
		return fmt.Errorf("create offscreen view: %w", err)
	}
	o.view = view

	o.pitch = (w*4 + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	staging, err := d.CreateBuffer(&hal.BufferDescriptor{
		Label: "ggsurface_staging",
		Size:  uint64(o.pitch) * uint64(h),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		o.destroy()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	o.staging = staging
	o.width, o.height = width, height
	o.img = image.NewRGBA(image.Rect(0, 0, width, height))
	return nil
}

// Acquire implements Target.
func (o *Offscreen) Acquire() (hal.TextureView, error) {
	if o.view == nil {
		return nil, ErrReleased
	}
	return o.view, nil
}

// Record implements Target. It copies the rendered texture to the staging
// buffer.
func (o *Offscreen) Record(enc hal.CommandEncoder) {
	w, h := uint32(o.width), uint32(o.height) //nolint:gosec // bounded by Resize
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: o.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	enc.CopyTextureToBuffer(o.tex, o.staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: o.pitch, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: o.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: o.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
}

// Finish implements Target. It waits for the submission, then copies the
// mapped staging buffer into the image returned by Image.
func (o *Offscreen) Finish(submission uint64) error {
	if err := o.dev.wait(submission, readbackTimeout); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	size := uint64(o.pitch) * uint64(o.height)
	m, err := o.dev.device.MapBuffer(o.staging, 0, size)
	if err != nil {
		return fmt.Errorf("readback: map staging buffer: %w", err)
	}
	defer func() { _ = o.dev.device.UnmapBuffer(o.staging) }()
	readback := unsafe.Slice((*byte)(m.Ptr), size)

	bgra := isBGRA(o.format)
	row := o.width * 4
	for y := 0; y < o.height; y++ {
		src := readback[y*int(o.pitch) : y*int(o.pitch)+row]
		dst := o.img.Pix[y*o.img.Stride : y*o.img.Stride+row]
		copy(dst, src)
		if bgra {
			for i := 0; i < row; i += 4 {
				dst[i], dst[i+2] = dst[i+2], dst[i]
			}
		}
	}
	return nil
}

// Discard implements Target.
func (o *Offscreen) Discard() {}

// Image returns the last frame read back. It is reused between frames.
func (o *Offscreen) Image() *image.RGBA { return o.img }

// Release implements Target.
func (o *Offscreen) Release() { o.destroy() }

func (o *Offscreen) destroy() {
	d := o.dev.device
	if d == nil {
		return
	}
	if o.staging != nil {
		d.DestroyBuffer(o.staging)
		o.staging = nil
	}
	if o.view != nil {
		d.DestroyTextureView(o.view)
		o.view = nil
	}
	if o.tex != nil {
		d.DestroyTexture(o.tex)
		o.tex = nil
	}
	o.width, o.height = 0, 0
}

func isBGRA(f gputypes.TextureFormat) bool {
	return f == gputypes.TextureFormatBGRA8Unorm || f == gputypes.TextureFormatBGRA8UnormSrgb
}

func isSRGB(f gputypes.TextureFormat) bool {
	return f == gputypes.TextureFormatBGRA8UnormSrgb || f == gputypes.TextureFormatRGBA8UnormSrgb
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/ggsurface/text"
)

func openNoop(t *testing.T) *Device {
	t.Helper()
	dev, err := OpenWith(noop.API{})
	if err != nil {
		t.Fatalf("OpenWith(noop): %v", err)
	}
	t.Cleanup(dev.Release)
	return dev
}

func newTestPresenter(t *testing.T, format gputypes.TextureFormat) (*Presenter, *Offscreen) {
	t.Helper()
	dev := openNoop(t)
	target := NewOffscreen(dev, format)
	p, err := NewPresenter(dev, target, 64, 32)
	if err != nil {
		t.Fatalf("NewPresenter: %v", err)
	}
	t.Cleanup(p.Release)
	return p, target
}

func TestPresenterPresentsFrames(t *testing.T) {
	p, target := newTestPresenter(t, gputypes.TextureFormatBGRA8Unorm)

	frame := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for i := 0; i < 3; i++ {
		if err := p.Present(frame, nil); err != nil {
			t.Fatalf("Present #%d: %v", i, err)
		}
	}
	if p.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", p.Frames())
	}
	if got := target.Image().Rect.Size(); got != image.Pt(64, 32) {
		t.Errorf("readback image size = %v", got)
	}
}

func TestPresenterResize(t *testing.T) {
	p, target := newTestPresenter(t, gputypes.TextureFormatRGBA8Unorm)
	if err := p.Resize(100, 50); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if w, h := p.Size(); w != 100 || h != 50 {
		t.Errorf("Size() = %dx%d", w, h)
	}
	if err := p.Present(image.NewRGBA(image.Rect(0, 0, 100, 50)), nil); err != nil {
		t.Fatalf("Present after resize: %v", err)
	}
	if got := target.Image().Rect.Size(); got != image.Pt(100, 50) {
		t.Errorf("readback image size = %v", got)
	}
	if err := p.Resize(0, 10); err == nil {
		t.Error("Resize accepted a zero width")
	}
}

func TestTextLayerPrepare(t *testing.T) {
	p, _ := newTestPresenter(t, gputypes.TextureFormatBGRA8UnormSrgb)
	layer, err := p.NewTextLayer()
	if err != nil {
		t.Fatal(err)
	}

	atlas := text.NewAtlas(32, 64)
	quads := make([]text.Quad, 100)
	for i := range quads {
		quads[i] = text.Quad{X1: 4, Y1: 4, U1: 4, V1: 4, Color: [4]float32{1, 1, 1, 1}}
	}
	if err := layer.Prepare(atlas, quads); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if layer.Quads() != 100 || layer.Capacity() < 100 {
		t.Errorf("Quads=%d Capacity=%d", layer.Quads(), layer.Capacity())
	}
	capacity := layer.Capacity()
	if err := layer.Prepare(atlas, quads[:10]); err != nil {
		t.Fatal(err)
	}
	if layer.Capacity() != capacity {
		t.Error("smaller prepare reallocated the layer")
	}
	if !atlas.Dirty().Empty() {
		t.Error("atlas dirty region not consumed by the upload")
	}
	if err := p.Present(image.NewRGBA(image.Rect(0, 0, 64, 32)), []*TextLayer{layer}); err != nil {
		t.Fatalf("Present with layer: %v", err)
	}

	layer.Release()
	if err := layer.Prepare(atlas, quads); !errors.Is(err, ErrReleased) {
		t.Errorf("Prepare after Release = %v, want ErrReleased", err)
	}
}

func TestPresenterRelease(t *testing.T) {
	p, _ := newTestPresenter(t, gputypes.TextureFormatBGRA8Unorm)
	layer, _ := p.NewTextLayer()
	p.Release()
	p.Release()

	if err := p.Present(nil, nil); !errors.Is(err, ErrReleased) {
		t.Errorf("Present after Release = %v", err)
	}
	if err := layer.Prepare(text.NewAtlas(8, 8), nil); !errors.Is(err, ErrReleased) {
		t.Errorf("layer Prepare after presenter Release = %v", err)
	}
	if _, err := p.NewTextLayer(); !errors.Is(err, ErrReleased) {
		t.Errorf("NewTextLayer after Release = %v", err)
	}
}

func TestNewPresenterRejectsReleasedDevice(t *testing.T) {
	dev := openNoop(t)
	dev.Release()
	if _, err := NewPresenter(dev, NewOffscreen(dev, gputypes.TextureFormatBGRA8Unorm), 8, 8); !errors.Is(err, ErrReleased) {
		t.Errorf("NewPresenter on released device = %v", err)
	}
}

func TestWindowTargetNeedsHandle(t *testing.T) {
	dev := openNoop(t)
	if _, err := NewWindowTarget(dev, 0, 0, gputypes.TextureFormatBGRA8UnormSrgb); !errors.Is(err, ErrNoWindowHandle) {
		t.Errorf("NewWindowTarget without handle = %v", err)
	}
}

type halProvider struct {
	dev *Device
}

func (h halProvider) Device() gpucontext.Device             { return nil }
func (h halProvider) Queue() gpucontext.Queue               { return nil }
func (h halProvider) Adapter() gpucontext.Adapter           { return nil }
func (h halProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (h halProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "host", Type: gpucontext.AdapterTypeUnknown}
}
func (h halProvider) HalDevice() any                        { return h.dev.device }
func (h halProvider) HalQueue() any                         { return h.dev.queue }

type plainProvider struct{}

func (plainProvider) Device() gpucontext.Device             { return nil }
func (plainProvider) Queue() gpucontext.Queue               { return nil }
func (plainProvider) Adapter() gpucontext.Adapter           { return nil }
func (plainProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (plainProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }

func TestFromProvider(t *testing.T) {
	owner := openNoop(t)
	shared, err := FromProvider(halProvider{dev: owner})
	if err != nil {
		t.Fatalf("FromProvider: %v", err)
	}
	if !shared.Shared() || shared.Instance() != nil {
		t.Error("shared device reports ownership")
	}
	if shared.Name() != "host" {
		t.Errorf("Name() = %q, want the provider's adapter name", shared.Name())
	}
	shared.Release()
	if owner.device == nil {
		t.Error("releasing the shared wrapper destroyed the owner's device")
	}

	if _, err := FromProvider(plainProvider{}); err == nil {
		t.Error("FromProvider accepted a provider without HAL access")
	}
}

func TestLinearColor(t *testing.T) {
	white := linearColor([4]float32{1, 1, 1, 1})
	if white != [4]float32{1, 1, 1, 1} {
		t.Errorf("white = %v", white)
	}
	half := linearColor([4]float32{0.5, 0.5, 0.5, 1})
	if half[0] < 0.2 || half[0] > 0.22 {
		t.Errorf("sRGB 0.5 -> %v, want about 0.214", half[0])
	}
	transparent := linearColor([4]float32{})
	if transparent != ([4]float32{}) {
		t.Errorf("transparent = %v", transparent)
	}
}

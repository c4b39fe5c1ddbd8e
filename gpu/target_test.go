// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/ggsurface/text"
)

// faultyQueue wraps a noop queue and injects failures.
type faultyQueue struct {
	hal.Queue
	writeTexture error
	writeBuffer  error
	present      []error
	stalled      bool
}

func (q *faultyQueue) WriteTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	if q.writeTexture != nil {
		return q.writeTexture
	}
	return q.Queue.WriteTexture(dst, data, layout, size)
}

func (q *faultyQueue) WriteBuffer(buffer hal.Buffer, offset uint64, data []byte) error {
	if q.writeBuffer != nil {
		return q.writeBuffer
	}
	return q.Queue.WriteBuffer(buffer, offset, data)
}

func (q *faultyQueue) Present(s hal.Surface, tex hal.SurfaceTexture, damage []image.Rectangle) error {
	if len(q.present) > 0 {
		err := q.present[0]
		q.present = q.present[1:]
		if err != nil {
			return err
		}
	}
	return q.Queue.Present(s, tex, damage)
}

func (q *faultyQueue) PollCompleted() uint64 {
	if q.stalled {
		return 0
	}
	return q.Queue.PollCompleted()
}

// flakySurface fails AcquireTexture with the queued errors.
type flakySurface struct {
	*noop.Surface
	acquire    []error
	configures int
}

func (s *flakySurface) Configure(d hal.Device, c *hal.SurfaceConfiguration) error {
	s.configures++
	return s.Surface.Configure(d, c)
}

func (s *flakySurface) AcquireTexture(f hal.Fence) (*hal.AcquiredSurfaceTexture, error) {
	if len(s.acquire) > 0 {
		err := s.acquire[0]
		s.acquire = s.acquire[1:]
		if err != nil {
			return nil, err
		}
	}
	return s.Surface.AcquireTexture(f)
}

func withFaultyQueue(dev *Device) *faultyQueue {
	q := &faultyQueue{Queue: dev.queue}
	dev.queue = q
	return q
}

func newWindowPresenter(t *testing.T, acquire ...error) (*Presenter, *flakySurface, *faultyQueue) {
	t.Helper()
	dev := openNoop(t)
	q := withFaultyQueue(dev)
	surface := &flakySurface{Surface: &noop.Surface{}, acquire: acquire}
	target := &WindowTarget{dev: dev, surface: surface, format: gputypes.TextureFormatBGRA8UnormSrgb}
	p, err := NewPresenter(dev, target, 32, 16)
	if err != nil {
		t.Fatalf("NewPresenter: %v", err)
	}
	t.Cleanup(p.Release)
	return p, surface, q
}

func TestWindowTargetRetriesOutdatedSurface(t *testing.T) {
	p, surface, _ := newWindowPresenter(t, hal.ErrSurfaceOutdated)
	frame := image.NewRGBA(image.Rect(0, 0, 32, 16))

	if err := p.Present(frame, nil); err != nil {
		t.Fatalf("Present with an outdated surface: %v", err)
	}
	if surface.configures != 2 {
		t.Errorf("configures = %d, want 2", surface.configures)
	}
}

func TestWindowTargetRecoversAfterFailedAcquire(t *testing.T) {
	p, surface, _ := newWindowPresenter(t, hal.ErrSurfaceLost)
	frame := image.NewRGBA(image.Rect(0, 0, 32, 16))

	if err := p.Present(frame, nil); !errors.Is(err, ErrSurfaceLost) {
		t.Fatalf("first Present = %v, want ErrSurfaceLost", err)
	}
	for i := 1; i <= 3; i++ {
		if err := p.Present(frame, nil); err != nil {
			t.Fatalf("Present #%d: %v", i, err)
		}
	}
	if surface.configures != 2 {
		t.Errorf("configures = %d, want 2", surface.configures)
	}
	if p.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", p.Frames())
	}
}

func TestWindowTargetNotReadyKeepsConfiguration(t *testing.T) {
	p, surface, _ := newWindowPresenter(t, hal.ErrNotReady)
	frame := image.NewRGBA(image.Rect(0, 0, 32, 16))

	if err := p.Present(frame, nil); !errors.Is(err, ErrSurfaceLost) {
		t.Fatalf("first Present = %v", err)
	}
	if err := p.Present(frame, nil); err != nil {
		t.Fatalf("second Present: %v", err)
	}
	if surface.configures != 1 {
		t.Errorf("configures = %d, want 1", surface.configures)
	}
}

func TestWindowTargetRecoversAfterFailedPresent(t *testing.T) {
	p, surface, q := newWindowPresenter(t)
	q.present = []error{hal.ErrSurfaceOutdated}
	frame := image.NewRGBA(image.Rect(0, 0, 32, 16))

	if err := p.Present(frame, nil); !errors.Is(err, ErrSurfaceLost) {
		t.Fatalf("first Present = %v, want ErrSurfaceLost", err)
	}
	if err := p.Present(frame, nil); err != nil {
		t.Fatalf("second Present: %v", err)
	}
	if surface.configures != 2 {
		t.Errorf("configures = %d, want 2", surface.configures)
	}
}

func TestWindowPresentDoesNotWaitForGPU(t *testing.T) {
	p, _, q := newWindowPresenter(t)
	q.stalled = true
	frame := image.NewRGBA(image.Rect(0, 0, 32, 16))

	for i := 0; i < 3; i++ {
		if err := p.Present(frame, nil); err != nil {
			t.Fatalf("Present #%d: %v", i, err)
		}
	}
	if len(p.inflight) != 3 {
		t.Fatalf("in flight = %d, want 3", len(p.inflight))
	}

	q.stalled = false
	if err := p.Present(frame, nil); err != nil {
		t.Fatal(err)
	}
	if len(p.inflight) != 1 {
		t.Errorf("in flight after completion = %d, want 1", len(p.inflight))
	}
}

func TestPresentReportsUploadFailure(t *testing.T) {
	p, _ := newTestPresenter(t, gputypes.TextureFormatBGRA8Unorm)
	upload := errors.New("staging exhausted")
	withFaultyQueue(p.dev).writeTexture = upload

	err := p.Present(image.NewRGBA(image.Rect(0, 0, 64, 32)), nil)
	if !errors.Is(err, upload) {
		t.Fatalf("Present = %v, want the upload error", err)
	}
	if errors.Is(err, ErrDeviceLost) || p.Lost() {
		t.Error("an upload failure marked the device lost")
	}
	if p.Frames() != 0 {
		t.Errorf("Frames() = %d after a failed upload", p.Frames())
	}
}

func TestTextLayerReportsUploadFailure(t *testing.T) {
	p, _ := newTestPresenter(t, gputypes.TextureFormatBGRA8Unorm)
	layer, err := p.NewTextLayer()
	if err != nil {
		t.Fatal(err)
	}
	upload := errors.New("buffer write failed")
	withFaultyQueue(p.dev).writeBuffer = upload

	quads := []text.Quad{{X1: 2, Y1: 2, U1: 2, V1: 2, Color: [4]float32{1, 1, 1, 1}}}
	if err := layer.Prepare(text.NewAtlas(16, 16), quads); !errors.Is(err, upload) {
		t.Fatalf("Prepare = %v, want the upload error", err)
	}
	if layer.Quads() != 0 {
		t.Errorf("failed layer draws %d quads", layer.Quads())
	}
}

func TestAtlasStaysDirtyWhenUploadFails(t *testing.T) {
	p, _ := newTestPresenter(t, gputypes.TextureFormatBGRA8Unorm)
	layer, _ := p.NewTextLayer()
	atlas := text.NewAtlas(16, 16)
	if err := layer.Prepare(atlas, nil); err != nil {
		t.Fatal(err)
	}

	mask := image.NewAlpha(image.Rect(0, 0, 2, 2))
	if _, err := atlas.Insert(mask); err != nil {
		t.Fatal(err)
	}
	q := withFaultyQueue(p.dev)
	q.writeTexture = errors.New("upload")
	if err := layer.Prepare(atlas, nil); err == nil {
		t.Fatal("Prepare ignored the atlas upload failure")
	}
	if atlas.Dirty().Empty() {
		t.Error("failed upload consumed the dirty region")
	}

	q.writeTexture = nil
	if err := layer.Prepare(atlas, nil); err != nil {
		t.Fatal(err)
	}
	if !atlas.Dirty().Empty() {
		t.Error("dirty region kept after a successful upload")
	}
}

func TestOffscreenReadsBackStagingBuffer(t *testing.T) {
	p, target := newTestPresenter(t, gputypes.TextureFormatBGRA8Unorm)
	if err := p.Present(image.NewRGBA(image.Rect(0, 0, 64, 32)), nil); err != nil {
		t.Fatal(err)
	}

	// The noop copy leaves the staging buffer alone, so fill it by hand.
	if err := p.dev.queue.WriteBuffer(target.staging, 0, []byte{10, 20, 30, 40}); err != nil {
		t.Fatal(err)
	}
	if err := target.Finish(p.dev.queue.PollCompleted()); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if got := target.Image().Pix[:4]; got[0] != 30 || got[1] != 20 || got[2] != 10 || got[3] != 40 {
		t.Errorf("first pixel = %v, want BGRA swizzled to [30 20 10 40]", got)
	}
}

package ggsurface

import (
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggsurface/gpu"
	"github.com/gogpu/ggsurface/platform"
)

// gpuBackend presents through gogpu/wgpu. Windows with a native handle get
// a swap surface; headless windows render into an offscreen texture that
// is read back after every frame.
type gpuBackend struct {
	api      gputypes.Backend
	factory  gpu.InstanceFactory
	provider gpucontext.DeviceProvider
}

// GPUBackend returns a backend that opens a Vulkan device for every
// presenter.
func GPUBackend() PresenterFactory {
	return &gpuBackend{api: gputypes.BackendVulkan}
}

// GPUBackendWith returns a backend that opens devices from api, for
// example hal/noop in tests.
func GPUBackendWith(api gpu.InstanceFactory) PresenterFactory {
	return &gpuBackend{factory: api}
}

// SharedGPUBackend returns a backend whose presenters all draw with the
// device of a host application.
func SharedGPUBackend(p gpucontext.DeviceProvider) PresenterFactory {
	return &gpuBackend{provider: p}
}

func (b *gpuBackend) open() (*gpu.Device, error) {
	switch {
	case b.provider != nil:
		return gpu.FromProvider(b.provider)
	case b.factory != nil:
		return gpu.OpenWith(b.factory)
	default:
		return gpu.Open(b.api)
	}
}

// NewPresenter implements PresenterFactory.
func (b *gpuBackend) NewPresenter(win platform.Window, cfg PresenterConfig) (Presenter, error) {
	dev, err := b.open()
	if err != nil {
		return nil, err
	}

	var (
		target    gpu.Target
		offscreen *gpu.Offscreen
	)
	if h := win.NativeHandle(); h.IsZero() {
		offscreen = gpu.NewOffscreen(dev, cfg.Format)
		target = offscreen
	} else {
		target, err = gpu.NewWindowTarget(dev, h.Display, h.Window, cfg.Format)
		if err != nil {
			dev.Release()
			return nil, err
		}
	}

	p, err := gpu.NewPresenter(dev, target, cfg.Width, cfg.Height)
	if err != nil {
		dev.Release()
		return nil, err
	}
	slogger().Info("ggsurface: gpu presenter ready",
		"window", win.ID(), "device", dev.Name(), "shared", dev.Shared(),
		"offscreen", offscreen != nil, "size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height))
	return &gpuPresenter{dev: dev, p: p, offscreen: offscreen}, nil
}

// gpuPresenter owns its device unless the device is shared.
type gpuPresenter struct {
	dev       *gpu.Device
	p         *gpu.Presenter
	offscreen *gpu.Offscreen
	batch     []*gpu.TextLayer
}

func (g *gpuPresenter) Resize(width, height int) error {
	return g.p.Resize(width, height)
}

func (g *gpuPresenter) NewTextLayer() (TextLayer, error) {
	l, err := g.p.NewTextLayer()
	if err != nil {
		return nil, err
	}
	return gpuLayer{l}, nil
}

func (g *gpuPresenter) Present(frame *image.RGBA, layers []TextLayer) error {
	g.batch = g.batch[:0]
	for i, l := range layers {
		gl, ok := l.(gpuLayer)
		if !ok {
			return fmt.Errorf("ggsurface: layer %d is not a gpu layer", i)
		}
		g.batch = append(g.batch, gl.TextLayer)
	}
	return g.p.Present(frame, g.batch)
}

// Snapshot returns the read-back image of a headless window, or nil for a
// window with a swap surface.
func (g *gpuPresenter) Snapshot() *image.RGBA {
	if g.offscreen == nil {
		return nil
	}
	return g.offscreen.Image()
}

func (g *gpuPresenter) Release() {
	g.p.Release()
	g.dev.Release()
}

type gpuLayer struct {
	*gpu.TextLayer
}

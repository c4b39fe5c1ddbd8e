// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// InstanceFactory creates hal instances. Every hal backend implements it,
// including hal/noop.
type InstanceFactory interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// Device is an opened hal device and its queue.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	name     string
	external bool
}

// Open creates a standalone device on the given backend, preferring a
// discrete or integrated GPU over software adapters.
func Open(backend gputypes.Backend) (*Device, error) {
	b, ok := hal.GetBackend(backend)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, backend)
	}
	return OpenWith(b)
}

// OpenWith creates a standalone device from any hal backend.
func OpenWith(api InstanceFactory) (*Device, error) {
	instance, err := api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", ErrBackendUnavailable, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	open, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}
	slogger().Info("gpu: device opened", "adapter", selected.Info.Name)
	return &Device{
		instance: instance,
		device:   open.Device,
		queue:    open.Queue,
		name:     selected.Info.Name,
	}, nil
}

// FromProvider wraps a device owned by someone else. The provider must also
// expose HalDevice() and HalQueue() returning hal.Device and hal.Queue.
// Release leaves the shared device alive.
func FromProvider(p gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := p.(halProvider)
	if !ok {
		return nil, errors.New("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, errors.New("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, errors.New("gpu: provider HalQueue is not hal.Queue")
	}
	name := p.AdapterInfo().Name
	if name == "" {
		name = "shared"
	}
	slogger().Debug("gpu: using shared device", "adapter", name)
	return &Device{device: device, queue: queue, name: name, external: true}, nil
}

// wait blocks until the queue completed submission or timeout passed.
func (d *Device) wait(submission uint64, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for d.queue.PollCompleted() < submission {
		if time.Now().After(deadline) {
			return fmt.Errorf("gpu: submission %d: %w", submission, hal.ErrTimeout)
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

// Name returns the adapter name.
func (d *Device) Name() string { return d.name }

// Shared reports whether the device came from a provider.
func (d *Device) Shared() bool { return d.external }

// Instance returns the hal instance, or nil for shared devices.
func (d *Device) Instance() hal.Instance { return d.instance }

// Release destroys the device unless it is shared. It is safe to call
// more than once.
func (d *Device) Release() {
	if d.device == nil {
		return
	}
	if !d.external {
		d.device.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device, d.queue, d.instance = nil, nil, nil
}

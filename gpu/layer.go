// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ggsurface/text"
)

// minLayerQuads is the initial quad capacity of a layer.
const minLayerQuads = 64

// TextLayer holds the glyph quads of one text area on the GPU. Layers are
// meant to be pooled: Prepare reuses the buffers and only grows them.
type TextLayer struct {
	p     *Presenter
	vbuf  hal.Buffer
	ibuf  hal.Buffer
	cap   int
	quads int
	dead  bool
}

// Quads returns the number of quads drawn by the layer.
func (l *TextLayer) Quads() int { return l.quads }

// Capacity returns how many quads fit without reallocation.
func (l *TextLayer) Capacity() int { return l.cap }

// Prepare uploads the atlas changes and replaces the layer's quads.
func (l *TextLayer) Prepare(atlas *text.Atlas, quads []text.Quad) error {
	if l.dead || l.p.released {
		return ErrReleased
	}
	if err := l.p.syncAtlas(atlas); err != nil {
		return err
	}
	if len(quads) == 0 {
		l.quads = 0
		return nil
	}
	if len(quads) > l.cap {
		if err := l.grow(len(quads)); err != nil {
			return err
		}
	}
	linear := isSRGB(l.p.format)
	data := make([]byte, len(quads)*4*glyphVertexStride)
	for i, q := range quads {
		c := q.Color
		if linear {
			c = linearColor(c)
		}
		base := i * 4 * glyphVertexStride
		corners := [4][4]float32{
			{q.X0, q.Y0, q.U0, q.V0},
			{q.X1, q.Y0, q.U1, q.V0},
			{q.X1, q.Y1, q.U1, q.V1},
			{q.X0, q.Y1, q.U0, q.V1},
		}
		for v, corner := range corners {
			off := base + v*glyphVertexStride
			for k, f := range corner {
				binary.LittleEndian.PutUint32(data[off+k*4:], math.Float32bits(f))
			}
			for k, f := range c {
				binary.LittleEndian.PutUint32(data[off+16+k*4:], math.Float32bits(f))
			}
		}
	}
	if err := l.p.dev.queue.WriteBuffer(l.vbuf, 0, data); err != nil {
		l.quads = 0
		return fmt.Errorf("gpu: upload glyph vertices: %w", err)
	}
	l.quads = len(quads)
	return nil
}

// grow reallocates the buffers for at least n quads.
func (l *TextLayer) grow(n int) error {
	capacity := max(l.cap, minLayerQuads)
	for capacity < n {
		capacity *= 2
	}
	l.p.reclaim(true)
	l.destroyBuffers()
	d := l.p.dev.device

	vbuf, err := d.CreateBuffer(&hal.BufferDescriptor{
		Label: "ggsurface_glyph_vertices",
		Size:  uint64(capacity * 4 * glyphVertexStride), //nolint:gosec // positive
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create glyph vertex buffer: %w", err)
	}
	ibuf, err := d.CreateBuffer(&hal.BufferDescriptor{
		Label: "ggsurface_glyph_indices",
		Size:  uint64(capacity * 6 * 4), //nolint:gosec // positive
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		d.DestroyBuffer(vbuf)
		return fmt.Errorf("create glyph index buffer: %w", err)
	}

	indices := make([]byte, capacity*6*4)
	for q := 0; q < capacity; q++ {
		base := uint32(q * 4) //nolint:gosec // bounded by capacity
		for k, v := range [6]uint32{0, 1, 2, 2, 3, 0} {
			binary.LittleEndian.PutUint32(indices[(q*6+k)*4:], base+v)
		}
	}
	if err := l.p.dev.queue.WriteBuffer(ibuf, 0, indices); err != nil {
		d.DestroyBuffer(vbuf)
		d.DestroyBuffer(ibuf)
		return fmt.Errorf("gpu: upload glyph indices: %w", err)
	}

	l.vbuf, l.ibuf, l.cap = vbuf, ibuf, capacity
	return nil
}

// Release frees the layer's buffers. The layer cannot be used afterwards.
func (l *TextLayer) Release() {
	if l.dead {
		return
	}
	l.p.reclaim(true)
	l.destroy()
	delete(l.p.layers, l)
}

func (l *TextLayer) destroy() {
	l.destroyBuffers()
	l.dead = true
	l.quads = 0
}

func (l *TextLayer) destroyBuffers() {
	d := l.p.dev.device
	if d == nil {
		return
	}
	if l.vbuf != nil {
		d.DestroyBuffer(l.vbuf)
		l.vbuf = nil
	}
	if l.ibuf != nil {
		d.DestroyBuffer(l.ibuf)
		l.ibuf = nil
	}
	l.cap = 0
}

// linearColor converts a premultiplied sRGB color to premultiplied linear.
func linearColor(c [4]float32) [4]float32 {
	a := c[3]
	if a == 0 {
		return c
	}
	out := [4]float32{0, 0, 0, a}
	for i := 0; i < 3; i++ {
		out[i] = srgbToLinear(c[i]/a) * a
	}
	return out
}

func srgbToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return float32(math.Pow((float64(v)+0.055)/1.055, 2.4))
}

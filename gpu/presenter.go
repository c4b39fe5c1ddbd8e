// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ggsurface/text"
)

// Presenter draws frames and text layers to a Target.
//
// A Presenter is not safe for concurrent use. It must be driven from the
// goroutine that runs the window's event loop.
type Presenter struct {
	dev    *Device
	target Target
	format gputypes.TextureFormat

	width, height int

	blit    *pipeline
	glyph   *pipeline
	sampler hal.Sampler
	uniform hal.Buffer

	frameTex    hal.Texture
	frameView   hal.TextureView
	frameBind   hal.BindGroup
	frameFormat gputypes.TextureFormat
	frameW      int
	frameH      int

	atlasTex  hal.Texture
	atlasView hal.TextureView
	atlasBind hal.BindGroup
	atlasImg  *image.Alpha
	atlasSize int

	layers   map[*TextLayer]struct{}
	inflight []submission
	lost     bool
	released bool
	frames   uint64
}

// submission is a frame the GPU may still be executing. Its encoder and
// command buffer are freed once the queue reports it complete.
type submission struct {
	index uint64
	enc   hal.CommandEncoder
	cmd   hal.CommandBuffer
}

// NewPresenter builds the pipelines for target and sizes it to width×height.
// The presenter does not own dev; release the device after the presenter.
func NewPresenter(dev *Device, target Target, width, height int) (*Presenter, error) {
	if dev == nil || dev.device == nil {
		return nil, ErrReleased
	}
	p := &Presenter{
		dev:    dev,
		target: target,
		format: target.Format(),
		layers: make(map[*TextLayer]struct{}),
	}
	p.frameFormat = gputypes.TextureFormatRGBA8Unorm
	if isSRGB(p.format) {
		p.frameFormat = gputypes.TextureFormatRGBA8UnormSrgb
	}
	if err := p.init(); err != nil {
		p.Release()
		return nil, err
	}
	if err := p.Resize(width, height); err != nil {
		p.Release()
		return nil, err
	}
	slogger().Debug("gpu: presenter ready", "format", p.format, "size", fmt.Sprintf("%dx%d", width, height))
	return p, nil
}

func (p *Presenter) init() error {
	d := p.dev.device
	var err error
	if p.blit, err = newBlitPipeline(d, p.format); err != nil {
		return err
	}
	if p.glyph, err = newGlyphPipeline(d, p.format); err != nil {
		return err
	}
	p.sampler, err = d.CreateSampler(&hal.SamplerDescriptor{
		Label:        "ggsurface_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}
	p.uniform, err = d.CreateBuffer(&hal.BufferDescriptor{
		Label: "ggsurface_glyph_uniform",
		Size:  glyphUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	return nil
}

// Format returns the target color format.
func (p *Presenter) Format() gputypes.TextureFormat { return p.format }

// Target returns the presenter's target.
func (p *Presenter) Target() Target { return p.target }

// Size returns the current target size in pixels.
func (p *Presenter) Size() (width, height int) { return p.width, p.height }

// Frames returns how many frames were presented successfully.
func (p *Presenter) Frames() uint64 { return p.frames }

// Lost reports whether a fatal error made the presenter unusable.
func (p *Presenter) Lost() bool { return p.lost }

// Resize reallocates the target for width×height pixels.
func (p *Presenter) Resize(width, height int) error {
	if p.released {
		return ErrReleased
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("gpu: invalid size %dx%d", width, height)
	}
	p.reclaim(true)
	if err := p.target.Resize(width, height); err != nil {
		return err
	}
	p.width, p.height = width, height
	return nil
}

// NewTextLayer returns an empty text layer drawing through p.
func (p *Presenter) NewTextLayer() (*TextLayer, error) {
	if p.released {
		return nil, ErrReleased
	}
	l := &TextLayer{p: p}
	p.layers[l] = struct{}{}
	return l, nil
}

// Present uploads frame, draws it over the target, draws every layer on
// top in order, and presents the result. Errors wrapping ErrDeviceLost
// are fatal; ErrSurfaceLost only skips this frame.
//
// Submission does not wait for the GPU, except for targets that read the
// frame back.
func (p *Presenter) Present(frame *image.RGBA, layers []*TextLayer) error {
	if p.released {
		return ErrReleased
	}
	if p.lost {
		return ErrDeviceLost
	}
	p.reclaim(false)
	if err := p.uploadFrame(frame); err != nil {
		return err
	}
	if err := p.writeUniforms(); err != nil {
		return err
	}

	view, err := p.target.Acquire()
	if err != nil {
		return err
	}
	index, err := p.encodeSubmit(view, layers)
	if err != nil {
		p.target.Discard()
		if errors.Is(err, ErrDeviceLost) {
			p.lost = true
		}
		return err
	}
	if err := p.target.Finish(index); err != nil {
		return err
	}
	p.frames++
	return nil
}

func (p *Presenter) encodeSubmit(view hal.TextureView, layers []*TextLayer) (uint64, error) {
	d := p.dev.device
	enc, err := d.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "ggsurface_encoder"})
	if err != nil {
		return 0, fmt.Errorf("%w: create command encoder: %w", ErrDeviceLost, err)
	}
	if err := enc.BeginEncoding("ggsurface_frame"); err != nil {
		enc.Destroy()
		return 0, fmt.Errorf("begin encoding: %w", err)
	}

	rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "ggsurface_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	if p.frameBind != nil {
		rp.SetPipeline(p.blit.pipeline)
		rp.SetBindGroup(0, p.frameBind, nil)
		rp.Draw(3, 1, 0, 0)
	}
	for _, l := range layers {
		if l == nil || l.quads == 0 || p.atlasBind == nil {
			continue
		}
		rp.SetPipeline(p.glyph.pipeline)
		rp.SetBindGroup(0, p.atlasBind, nil)
		rp.SetVertexBuffer(0, l.vbuf, 0)
		rp.SetIndexBuffer(l.ibuf, gputypes.IndexFormatUint32, 0)
		rp.DrawIndexed(uint32(l.quads*6), 1, 0, 0, 0) //nolint:gosec // bounded by layer capacity
	}
	rp.End()
	p.target.Record(enc)

	cmd, err := enc.EndEncoding()
	if err != nil {
		enc.DiscardEncoding()
		enc.Destroy()
		return 0, fmt.Errorf("end encoding: %w", err)
	}

	index, err := p.dev.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		d.FreeCommandBuffer(cmd)
		enc.Destroy()
		return 0, fmt.Errorf("%w: submit: %w", ErrDeviceLost, err)
	}
	p.inflight = append(p.inflight, submission{index: index, enc: enc, cmd: cmd})
	return index, nil
}

// reclaim frees the encoders of completed submissions. With all set it
// waits for the device to go idle first and frees every submission.
func (p *Presenter) reclaim(all bool) {
	if len(p.inflight) == 0 {
		return
	}
	d := p.dev.device
	if all {
		if err := d.WaitIdle(); err != nil {
			slogger().Warn("gpu: wait idle", "err", err)
		}
	}
	done := p.dev.queue.PollCompleted()
	keep := p.inflight[:0]
	for _, s := range p.inflight {
		if !all && s.index > done {
			keep = append(keep, s)
			continue
		}
		d.FreeCommandBuffer(s.cmd)
		s.enc.Destroy()
	}
	clear(p.inflight[len(keep):])
	p.inflight = keep
}

// uploadFrame copies frame into the frame texture, recreating the texture
// when the frame size changed.
func (p *Presenter) uploadFrame(frame *image.RGBA) error {
	if frame == nil {
		return nil
	}
	w, h := frame.Rect.Dx(), frame.Rect.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	if w != p.frameW || h != p.frameH || p.frameTex == nil {
		if err := p.createFrameTexture(w, h); err != nil {
			return err
		}
	}
	pix := frame.Pix[frame.PixOffset(frame.Rect.Min.X, frame.Rect.Min.Y):]
	err := p.dev.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: p.frameTex, MipLevel: 0},
		pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(frame.Stride), //nolint:gosec // image strides fit uint32
			RowsPerImage: uint32(h),            //nolint:gosec // image sizes fit uint32
		},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1}, //nolint:gosec // see above
	)
	if err != nil {
		return fmt.Errorf("gpu: upload frame: %w", err)
	}
	return nil
}

func (p *Presenter) createFrameTexture(w, h int) error {
	p.reclaim(true)
	p.destroyFrame()
	d := p.dev.device
	tex, err := d.CreateTexture(&hal.TextureDescriptor{
		Label:         "ggsurface_frame",
		Size:          hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1}, //nolint:gosec // positive image size
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        p.frameFormat,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create frame texture: %w", err)
	}
	p.frameTex = tex
	view, err := d.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "ggsurface_frame_view"})
	if err != nil {
		p.destroyFrame()
		return fmt.Errorf("create frame view: %w", err)
	}
	p.frameView = view
	bind, err := d.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "ggsurface_frame_bind",
		Layout: p.blit.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: p.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		p.destroyFrame()
		return fmt.Errorf("create frame bind group: %w", err)
	}
	p.frameBind = bind
	p.frameW, p.frameH = w, h
	return nil
}

// syncAtlas mirrors atlas into the atlas texture. The whole texture is
// rewritten after the atlas grew; otherwise only its dirty region.
func (p *Presenter) syncAtlas(atlas *text.Atlas) error {
	img := atlas.Image()
	size := atlas.Size()
	if img != p.atlasImg || size != p.atlasSize || p.atlasTex == nil {
		if err := p.createAtlasTexture(size); err != nil {
			return err
		}
		if err := p.writeAtlas(img, img.Rect); err != nil {
			return err
		}
		p.atlasImg = img
		atlas.TakeDirty()
		return nil
	}
	if dirty := atlas.Dirty(); !dirty.Empty() {
		if err := p.writeAtlas(img, dirty); err != nil {
			return err
		}
		atlas.TakeDirty()
	}
	return nil
}

func (p *Presenter) writeAtlas(img *image.Alpha, r image.Rectangle) error {
	r = r.Intersect(img.Rect)
	if r.Empty() {
		return nil
	}
	w, h := r.Dx(), r.Dy()
	data := make([]byte, w*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(r.Min.X, r.Min.Y+y)
		copy(data[y*w:(y+1)*w], img.Pix[off:off+w])
	}
	err := p.dev.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  p.atlasTex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(r.Min.X), Y: uint32(r.Min.Y)}, //nolint:gosec // inside the atlas
		},
		data,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(w), RowsPerImage: uint32(h)}, //nolint:gosec // inside the atlas
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},       //nolint:gosec // inside the atlas
	)
	if err != nil {
		return fmt.Errorf("gpu: upload atlas: %w", err)
	}
	return nil
}

func (p *Presenter) createAtlasTexture(size int) error {
	p.reclaim(true)
	p.destroyAtlas()
	d := p.dev.device
	s := uint32(size) //nolint:gosec // atlas sizes are small
	tex, err := d.CreateTexture(&hal.TextureDescriptor{
		Label:         "ggsurface_glyph_atlas",
		Size:          hal.Extent3D{Width: s, Height: s, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatR8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create atlas texture: %w", err)
	}
	p.atlasTex = tex
	view, err := d.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "ggsurface_glyph_atlas_view"})
	if err != nil {
		p.destroyAtlas()
		return fmt.Errorf("create atlas view: %w", err)
	}
	p.atlasView = view
	bind, err := d.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "ggsurface_glyph_bind",
		Layout: p.glyph.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: p.uniform.NativeHandle(), Offset: 0, Size: glyphUniformSize}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: p.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		p.destroyAtlas()
		return fmt.Errorf("create atlas bind group: %w", err)
	}
	p.atlasBind = bind
	p.atlasSize = size
	slogger().Debug("gpu: atlas texture created", "size", size)
	return nil
}

func (p *Presenter) writeUniforms() error {
	var buf [glyphUniformSize]byte
	put := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
	}
	put(0, float32(p.width))
	put(4, float32(p.height))
	put(8, float32(max(p.atlasSize, 1)))
	put(12, float32(max(p.atlasSize, 1)))
	if err := p.dev.queue.WriteBuffer(p.uniform, 0, buf[:]); err != nil {
		return fmt.Errorf("gpu: upload uniforms: %w", err)
	}
	return nil
}

func (p *Presenter) destroyFrame() {
	d := p.dev.device
	if d == nil {
		return
	}
	if p.frameBind != nil {
		d.DestroyBindGroup(p.frameBind)
		p.frameBind = nil
	}
	if p.frameView != nil {
		d.DestroyTextureView(p.frameView)
		p.frameView = nil
	}
	if p.frameTex != nil {
		d.DestroyTexture(p.frameTex)
		p.frameTex = nil
	}
	p.frameW, p.frameH = 0, 0
}

func (p *Presenter) destroyAtlas() {
	d := p.dev.device
	if d == nil {
		return
	}
	if p.atlasBind != nil {
		d.DestroyBindGroup(p.atlasBind)
		p.atlasBind = nil
	}
	if p.atlasView != nil {
		d.DestroyTextureView(p.atlasView)
		p.atlasView = nil
	}
	if p.atlasTex != nil {
		d.DestroyTexture(p.atlasTex)
		p.atlasTex = nil
	}
	p.atlasImg, p.atlasSize = nil, 0
}

// Release frees every GPU object of the presenter, its layers and its
// target. It is safe to call more than once.
func (p *Presenter) Release() {
	if p.released {
		return
	}
	p.released = true
	if p.dev.device != nil {
		p.reclaim(true)
	}
	for l := range p.layers {
		l.destroy()
	}
	clear(p.layers)
	p.destroyFrame()
	p.destroyAtlas()
	d := p.dev.device
	if d != nil {
		if p.uniform != nil {
			d.DestroyBuffer(p.uniform)
			p.uniform = nil
		}
		if p.sampler != nil {
			d.DestroySampler(p.sampler)
			p.sampler = nil
		}
		if p.glyph != nil {
			p.glyph.destroy(d)
		}
		if p.blit != nil {
			p.blit.destroy(d)
		}
	}
	if p.target != nil {
		p.target.Release()
	}
	slogger().Debug("gpu: presenter released", "frames", p.frames)
}

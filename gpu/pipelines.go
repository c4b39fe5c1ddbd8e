// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// glyphVertexStride is position, texel coordinate and color as float32.
const glyphVertexStride = 32

// glyphUniformSize is the viewport and atlas sizes as two vec2<f32>.
const glyphUniformSize = 16

// pipeline is a compiled shader with its layouts.
type pipeline struct {
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

func (p *pipeline) destroy(d hal.Device) {
	if p.pipeline != nil {
		d.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		d.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		d.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		d.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

func textureEntry(binding uint32) gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: gputypes.ShaderStageFragment,
		Texture: &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: gputypes.TextureViewDimension2D,
		},
	}
}

func samplerEntry(binding uint32) gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: gputypes.ShaderStageFragment,
		Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
	}
}

// newPipeline compiles source and builds a premultiplied-alpha pipeline
// writing to format.
func newPipeline(d hal.Device, label, source string, entries []gputypes.BindGroupLayoutEntry,
	buffers []gputypes.VertexBufferLayout, format gputypes.TextureFormat) (*pipeline, error) {
	p := &pipeline{}
	var err error

	p.shader, err = d.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label + "_shader",
		Source: hal.ShaderSource{WGSL: source},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", label, err)
	}

	p.bindLayout, err = d.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   label + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		p.destroy(d)
		return nil, fmt.Errorf("create %s bind group layout: %w", label, err)
	}

	p.pipeLayout, err = d.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		p.destroy(d)
		return nil, fmt.Errorf("create %s pipeline layout: %w", label, err)
	}

	blend := gputypes.BlendStatePremultiplied()
	p.pipeline, err = d.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label + "_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    buffers,
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    format,
				Blend:     &blend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		p.destroy(d)
		return nil, fmt.Errorf("create %s pipeline: %w", label, err)
	}
	return p, nil
}

func newBlitPipeline(d hal.Device, format gputypes.TextureFormat) (*pipeline, error) {
	return newPipeline(d, "ggsurface_blit", blitShaderSource,
		[]gputypes.BindGroupLayoutEntry{textureEntry(0), samplerEntry(1)},
		nil, format)
}

func newGlyphPipeline(d hal.Device, format gputypes.TextureFormat) (*pipeline, error) {
	uniform := gputypes.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}
	return newPipeline(d, "ggsurface_glyph", glyphShaderSource,
		[]gputypes.BindGroupLayoutEntry{uniform, textureEntry(1), samplerEntry(2)},
		glyphVertexLayout(), format)
}

func glyphVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{{
		ArrayStride: glyphVertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // position
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},  // atlas texel
			{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2}, // color
		},
	}}
}

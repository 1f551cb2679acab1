// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package program

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/fnv"
	"sync"

	"github.com/gogpu/drawstate/blend"
	"github.com/gogpu/drawstate/draw"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// HALCompiler builds programs on a wgpu HAL device. WGSL is compiled to
// SPIR-V with naga. Dual-source programs are rejected: the HAL backends
// have no dual-source blend factors and would blend them as One.
//
// Each program owns a pipeline sub-cache keyed by the fixed-function state
// (blend, stencil, faces, color writes, formats, vertex layout). The sub-cache is safe for
// concurrent use; CompileAndLink and DestroyProgram are not.
type HALCompiler struct {
	device        hal.Device
	colorFormat   gputypes.TextureFormat
	stencilFormat gputypes.TextureFormat
	sampleCount   uint32
}

// HALOption configures a HALCompiler.
type HALOption func(*HALCompiler)

// WithColorFormat sets the color format used when a draw's render target
// does not name one.
func WithColorFormat(f gputypes.TextureFormat) HALOption {
	return func(hc *HALCompiler) { hc.colorFormat = f }
}

// WithStencilFormat sets the depth-stencil attachment format.
func WithStencilFormat(f gputypes.TextureFormat) HALOption {
	return func(hc *HALCompiler) { hc.stencilFormat = f }
}

// WithSampleCount sets the default multisample count.
func WithSampleCount(n uint32) HALOption {
	return func(hc *HALCompiler) { hc.sampleCount = max(n, 1) }
}

// NewHALCompiler creates a compiler for device.
func NewHALCompiler(device hal.Device, opts ...HALOption) (*HALCompiler, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	hc := &HALCompiler{
		device:        device,
		colorFormat:   gputypes.TextureFormatBGRA8Unorm,
		stencilFormat: gputypes.TextureFormatDepth24PlusStencil8,
		sampleCount:   1,
	}
	for _, opt := range opts {
		opt(hc)
	}
	return hc, nil
}

// halProgram is the Handle of a HALCompiler program.
type halProgram struct {
	label      string
	module     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	layout     hal.PipelineLayout

	mu        sync.Mutex
	pipelines map[uint64]hal.RenderPipeline
}

// CompileAndLink creates the shader module and layouts of src.
func (hc *HALCompiler) CompileAndLink(src *Source) (Handle, error) {
	if src.DualSource {
		return nil, fmt.Errorf("%w: %s: dual-source blending is not supported by the HAL backends", ErrBuildFailed, src.Label)
	}
	code, err := CompileSPIRV(src)
	if err != nil {
		return nil, err
	}

	hp := &halProgram{
		label:     src.Label,
		pipelines: make(map[uint64]hal.RenderPipeline),
	}
	hp.module, err = hc.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  src.Label,
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", src.Label, err)
	}

	entries := []gputypes.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		},
	}
	if src.ReadsDst {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    1,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		})
	}
	hp.bindLayout, err = hc.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   src.Label + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		hc.DestroyProgram(hp)
		return nil, fmt.Errorf("create bind group layout %s: %w", src.Label, err)
	}

	hp.layout, err = hc.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            src.Label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{hp.bindLayout},
	})
	if err != nil {
		hc.DestroyProgram(hp)
		return nil, fmt.Errorf("create pipeline layout %s: %w", src.Label, err)
	}
	return hp, nil
}

// DestroyProgram releases every pipeline and layout of h in reverse
// creation order. Partially built programs are fine.
func (hc *HALCompiler) DestroyProgram(h Handle) {
	hp, ok := h.(*halProgram)
	if !ok || hp == nil {
		return
	}
	hp.mu.Lock()
	for key, p := range hp.pipelines {
		hc.device.DestroyRenderPipeline(p)
		delete(hp.pipelines, key)
	}
	hp.mu.Unlock()
	if hp.layout != nil {
		hc.device.DestroyPipelineLayout(hp.layout)
		hp.layout = nil
	}
	if hp.bindLayout != nil {
		hc.device.DestroyBindGroupLayout(hp.bindLayout)
		hp.bindLayout = nil
	}
	if hp.module != nil {
		hc.device.DestroyShaderModule(hp.module)
		hp.module = nil
	}
}

// BindGroupLayout returns the bind group layout of p, or nil if p was not
// built by a HALCompiler or is no longer valid.
func (hc *HALCompiler) BindGroupLayout(p *Program) hal.BindGroupLayout {
	hp, ok := p.Handle().(*halProgram)
	if !ok {
		return nil
	}
	return hp.bindLayout
}

// Pipeline returns the render pipeline of p for the fixed-function state of
// dc, creating it on first use, together with the stencil reference to set
// on the render pass. The blend constant to set on the pass comes from
// dc.GPUBlendConstant.
func (hc *HALCompiler) Pipeline(p *Program, dc *draw.Compiled) (hal.RenderPipeline, uint32, error) {
	hp, ok := p.Handle().(*halProgram)
	if !ok || !p.Valid() {
		return nil, 0, ErrInvalidated
	}
	if _, ok := dc.GPUBlendConstant(); !ok {
		return nil, 0, fmt.Errorf("%w: %s: %w", ErrBuildFailed, hp.label, blend.ErrConstantConflict)
	}
	vertex := dc.VertexBufferLayout()
	key := hc.pipelineKey(dc, &vertex)
	st := dc.Stencil()
	ds, ref := st.DepthStencilState(hc.stencilFormat)

	hp.mu.Lock()
	defer hp.mu.Unlock()
	if pl, ok := hp.pipelines[key]; ok {
		return pl, ref, nil
	}

	format, samples := hc.targetFormat(dc)
	src, dst := dc.BlendCoeffs()
	blendState := blend.GPUState(src, dst)
	writeMask := gputypes.ColorWriteMaskAll
	if dc.Flags()&draw.FlagNoColorWrites != 0 {
		writeMask = gputypes.ColorWriteMaskNone
	}
	pl, err := hc.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("%s_pipeline_%016x", hp.label, key),
		Layout: hp.layout,
		Vertex: hal.VertexState{
			Module:     hp.module,
			EntryPoint: VertexEntryPoint,
			Buffers:    []gputypes.VertexBufferLayout{vertex},
		},
		Fragment: &hal.FragmentState{
			Module:     hp.module,
			EntryPoint: FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     &blendState,
					WriteMask: writeMask,
				},
			},
		},
		DepthStencil: ds,
		Multisample: gputypes.MultisampleState{
			Count: samples,
			Mask:  0xFFFFFFFF,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: dc.DrawFace().CullMode(),
		},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("create pipeline %s: %w", hp.label, err)
	}
	hp.pipelines[key] = pl
	return pl, ref, nil
}

// PipelineCount returns the number of pipelines created for p.
func (hc *HALCompiler) PipelineCount(p *Program) int {
	hp, ok := p.Handle().(*halProgram)
	if !ok {
		return 0
	}
	hp.mu.Lock()
	defer hp.mu.Unlock()
	return len(hp.pipelines)
}

func (hc *HALCompiler) targetFormat(dc *draw.Compiled) (gputypes.TextureFormat, uint32) {
	format, samples := hc.colorFormat, hc.sampleCount
	if rt := dc.RenderTarget(); rt != nil {
		if rt.Format != gputypes.TextureFormatUndefined {
			format = rt.Format
		}
		if rt.SampleCount > 0 {
			samples = rt.SampleCount
		}
	}
	return format, samples
}

// pipelineKey hashes the state a pipeline bakes in besides the program.
// Programs are shared by draws whose pruned attributes differ, so the
// vertex layout is part of the key.
func (hc *HALCompiler) pipelineKey(dc *draw.Compiled, vertex *gputypes.VertexBufferLayout) uint64 {
	h := fnv.New64a()
	src, dst := dc.BlendCoeffs()
	_, _ = h.Write([]byte{byte(src), byte(dst), byte(dc.DrawFace())})
	hashWriteBool(h, dc.Flags()&draw.FlagNoColorWrites != 0)
	st := dc.Stencil()
	b := st.Bytes()
	_, _ = h.Write(b[:])
	format, samples := hc.targetFormat(dc)
	hashWriteUint32(h, uint32(format))
	hashWriteUint32(h, samples)
	hashWriteUint32(h, uint32(vertex.ArrayStride))
	for _, a := range vertex.Attributes {
		hashWriteUint32(h, uint32(a.Offset))
		hashWriteUint32(h, uint32(a.Format))
	}
	return h.Sum64()
}

func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}

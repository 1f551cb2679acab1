// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package draw holds the description of a single GPU draw and compiles it
// into an immutable, cache-keyed form.
//
// A State is the full, unoptimized description: target, transform, vertex
// layout, color and coverage stages, blend coefficients, stencil and flags.
// Optimize reduces it to a Compiled state by simplifying the blend, pruning
// stages that cannot affect the output and dropping vertex attributes the
// shader will never read. The Compiled state carries a Descriptor that keys
// the program cache.
//
// A State is owned by one goroutine. A Compiled state is immutable and may be
// shared freely.
package draw

import (
	"fmt"

	"golang.org/x/image/math/f64"

	"github.com/gogpu/drawstate/blend"
	"github.com/gogpu/drawstate/stencil"
	"github.com/gogpu/gputypes"
)

// RenderTarget is the surface a draw writes to.
type RenderTarget struct {
	Width, Height int
	Format        gputypes.TextureFormat
	StencilBits   int
	SampleCount   uint32
}

// Flags are boolean draw options.
type Flags uint16

const (
	// FlagDither perturbs output color to hide banding.
	FlagDither Flags = 1 << iota
	// FlagHWAntialias uses multisample coverage for edges.
	FlagHWAntialias
	// FlagClip restricts the draw to the stencil clip.
	FlagClip
	// FlagNoColorWrites disables writes to the color attachment.
	FlagNoColorWrites
	// FlagCoverageDrawing treats coverage as part of the color.
	FlagCoverageDrawing
)

// DrawFace selects which triangle faces are drawn.
type DrawFace uint8

const (
	DrawBoth DrawFace = iota
	DrawCCW           // counter-clockwise only
	DrawCW            // clockwise only
)

// CullMode returns the WebGPU cull mode for the face selection, assuming
// counter-clockwise front faces.
func (f DrawFace) CullMode() gputypes.CullMode {
	switch f {
	case DrawCCW:
		return gputypes.CullModeBack
	case DrawCW:
		return gputypes.CullModeFront
	}
	return gputypes.CullModeNone
}

// EdgeType is the kind of analytic antialiasing carried by the edge
// attribute.
type EdgeType uint8

const (
	EdgeNone EdgeType = iota
	EdgeHairLine
	EdgeQuad
	EdgeCircle
)

// IdentityMat3 is the identity view matrix.
var IdentityMat3 = f64.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}

// State describes one draw.
type State struct {
	target        *RenderTarget
	viewMatrix    f64.Mat3
	attribs       []VertexAttrib
	bindings      bindingTable
	colorStages   []Stage
	covStages     []Stage
	color         blend.Color
	coverage      float32
	src, dst      blend.Coeff
	blendConstant blend.Color
	filterMode    blend.Mode
	filterColor   blend.Color
	stencil       stencil.Settings
	flags         Flags
	face          DrawFace
	edgeType      EdgeType
	opaqueVertex  bool

	// blend plan for forceCoverage=false
	planValid bool
	plan      Plan
	planSrc   blend.Coeff
	planDst   blend.Coeff

	compiledValid  bool
	compiledCapsID uint64
	compiled       *Compiled
}

// NewState returns a state that draws opaque white with (One, Zero) blending
// and a single float2 position attribute.
func NewState(target *RenderTarget) *State {
	s := &State{
		target:     target,
		viewMatrix: IdentityMat3,
		attribs:    append([]VertexAttrib(nil), DefaultLayout...),
		color:      blend.White,
		coverage:   1,
		src:        blend.One,
		dst:        blend.Zero,
		filterMode: blend.ModeDst,
	}
	s.bindings = buildBindingTable(s.attribs)
	return s
}

// Reset restores the defaults of NewState, keeping the target.
func (s *State) Reset() {
	*s = *NewState(s.target)
}

// invalidate drops the cached blend plan and compiled state.
func (s *State) invalidate() {
	s.planValid = false
	s.invalidateCompiled()
}

func (s *State) invalidateCompiled() {
	s.compiledValid = false
	s.compiled = nil
}

// RenderTarget returns the target.
func (s *State) RenderTarget() *RenderTarget { return s.target }

// SetRenderTarget changes the target.
func (s *State) SetRenderTarget(t *RenderTarget) {
	s.target = t
	s.invalidateCompiled()
}

// ViewMatrix returns the transform applied to positions.
func (s *State) ViewMatrix() f64.Mat3 { return s.viewMatrix }

// SetViewMatrix sets the transform applied to positions.
func (s *State) SetViewMatrix(m f64.Mat3) {
	s.viewMatrix = m
	s.invalidateCompiled()
}

// VertexAttribs returns a copy of the vertex layout.
func (s *State) VertexAttribs() []VertexAttrib {
	return append([]VertexAttrib(nil), s.attribs...)
}

// SetVertexAttribs replaces the vertex layout after validating it. The
// slice is copied.
func (s *State) SetVertexAttribs(attribs []VertexAttrib) error {
	if err := ValidateLayout(attribs); err != nil {
		return err
	}
	s.attribs = append(s.attribs[:0:0], attribs...)
	s.bindings = buildBindingTable(s.attribs)
	s.invalidate()
	return nil
}

// HasBinding reports whether an attribute feeds the fixed binding b.
func (s *State) HasBinding(b Binding) bool {
	return b < BindingEffect && s.bindings.has(b)
}

// AddColorStage appends a color stage.
func (s *State) AddColorStage(st Stage) error {
	if err := s.checkStage(st); err != nil {
		return err
	}
	s.colorStages = append(s.colorStages, st)
	s.invalidate()
	return nil
}

// AddCoverageStage appends a coverage stage.
func (s *State) AddCoverageStage(st Stage) error {
	if err := s.checkStage(st); err != nil {
		return err
	}
	s.covStages = append(s.covStages, st)
	s.invalidate()
	return nil
}

func (s *State) checkStage(st Stage) error {
	if st.Effect == nil {
		return ErrNilEffect
	}
	if n := len(s.colorStages) + len(s.covStages); n >= MaxStages {
		debugAssert(false, "stage count exceeds MaxStages")
		return fmt.Errorf("%w: %d already set", ErrTooManyStages, n)
	}
	return nil
}

// ClearStages removes every color and coverage stage.
func (s *State) ClearStages() {
	s.colorStages = s.colorStages[:0]
	s.covStages = s.covStages[:0]
	s.invalidate()
}

// NumColorStages returns the number of color stages.
func (s *State) NumColorStages() int { return len(s.colorStages) }

// NumCoverageStages returns the number of coverage stages.
func (s *State) NumCoverageStages() int { return len(s.covStages) }

// ColorStage returns color stage i.
func (s *State) ColorStage(i int) Stage { return s.colorStages[i] }

// CoverageStage returns coverage stage i.
func (s *State) CoverageStage(i int) Stage { return s.covStages[i] }

// Color returns the input color used when there is no color attribute.
func (s *State) Color() blend.Color { return s.color }

// SetColor sets the input color.
func (s *State) SetColor(c blend.Color) {
	s.color = c
	s.invalidate()
}

// Coverage returns the input coverage used when there is no coverage
// attribute.
func (s *State) Coverage() float32 { return s.coverage }

// SetCoverage sets the input coverage.
func (s *State) SetCoverage(c float32) {
	s.coverage = c
	s.invalidate()
}

// BlendCoeffs returns the stated coefficients.
func (s *State) BlendCoeffs() (src, dst blend.Coeff) { return s.src, s.dst }

// SetBlendCoeffs sets the source and destination coefficients.
func (s *State) SetBlendCoeffs(src, dst blend.Coeff) {
	s.src, s.dst = src, dst
	s.invalidate()
}

// SetBlendMode sets the coefficients of a Porter-Duff mode.
func (s *State) SetBlendMode(m blend.Mode) {
	s.SetBlendCoeffs(m.Coeffs())
}

// BlendConstant returns the constant blend color.
func (s *State) BlendConstant() blend.Color { return s.blendConstant }

// SetBlendConstant sets the constant blend color.
func (s *State) SetBlendConstant(c blend.Color) {
	s.blendConstant = c
	s.invalidateCompiled()
}

// ColorFilter returns the color filter applied after the color stages.
func (s *State) ColorFilter() (blend.Color, blend.Mode) { return s.filterColor, s.filterMode }

// SetColorFilter blends c into the stage output with mode m. ModeDst
// disables the filter.
func (s *State) SetColorFilter(c blend.Color, m blend.Mode) {
	s.filterColor, s.filterMode = c, m
	s.invalidate()
}

// Stencil returns the stencil settings.
func (s *State) Stencil() stencil.Settings { return s.stencil }

// SetStencil sets the stencil settings.
func (s *State) SetStencil(st stencil.Settings) {
	s.stencil = st
	s.invalidate()
}

// DisableStencil turns the stencil test off.
func (s *State) DisableStencil() {
	s.SetStencil(stencil.Disabled)
}

// Flags returns the flag set.
func (s *State) Flags() Flags { return s.flags }

// HasFlag reports whether every flag in f is set.
func (s *State) HasFlag(f Flags) bool { return s.flags&f == f }

// EnableFlags sets flags.
func (s *State) EnableFlags(f Flags) {
	s.flags |= f
	s.invalidate()
}

// DisableFlags clears flags.
func (s *State) DisableFlags(f Flags) {
	s.flags &^= f
	s.invalidate()
}

// DrawFace returns the face selection.
func (s *State) DrawFace() DrawFace { return s.face }

// SetDrawFace sets the face selection.
func (s *State) SetDrawFace(f DrawFace) {
	s.face = f
	s.invalidateCompiled()
}

// EdgeType returns the analytic edge kind.
func (s *State) EdgeType() EdgeType { return s.edgeType }

// SetEdgeType sets the analytic edge kind carried by the edge attribute.
func (s *State) SetEdgeType(e EdgeType) {
	s.edgeType = e
	s.invalidate()
}

// SetVertexColorsAreOpaque declares that every per-vertex color has alpha
// one.
func (s *State) SetVertexColorsAreOpaque(opaque bool) {
	s.opaqueVertex = opaque
	s.invalidate()
}

// IsColorWriteDisabled reports whether color writes are off.
func (s *State) IsColorWriteDisabled() bool { return s.HasFlag(FlagNoColorWrites) }

// IsCoverageDrawing reports whether coverage is drawn as color.
func (s *State) IsCoverageDrawing() bool { return s.HasFlag(FlagCoverageDrawing) }

// IsStencilOnly reports whether the draw only updates the stencil buffer.
func (s *State) IsStencilOnly() bool {
	return s.IsColorWriteDisabled() && s.stencil.DoesWrite()
}

// hasEdgeCoverage reports whether analytic edges feed coverage.
func (s *State) hasEdgeCoverage() bool {
	return s.edgeType != EdgeNone && s.bindings.has(BindingEdge)
}

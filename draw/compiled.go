// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package draw

import (
	"slices"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/drawstate/blend"
	"github.com/gogpu/drawstate/stencil"
)

// ColorInput says where the color entering the first color stage comes
// from.
type ColorInput uint8

const (
	ColorInputAttribute ColorInput = iota
	ColorInputUniform
	ColorInputSolidWhite
	ColorInputTransparentBlack
)

var colorInputNames = [...]string{"Attribute", "Uniform", "SolidWhite", "TransparentBlack"}

func (c ColorInput) String() string {
	if int(c) < len(colorInputNames) {
		return colorInputNames[c]
	}
	return "ColorInput(?)"
}

// PrimaryOutput says how the shader forms its main output.
type PrimaryOutput uint8

const (
	// OutputModulate writes color times coverage.
	OutputModulate PrimaryOutput = iota
	// OutputCombineWithDst writes coverage*color + (1-coverage)*dst, for
	// (One, Zero) blending when the shader can read the destination.
	OutputCombineWithDst
)

// SecondaryOutput is the dual-source output kind.
type SecondaryOutput uint8

const (
	SecondaryNone SecondaryOutput = iota
	SecondaryCoverage
	SecondaryCoverageISA // coverage * (1 - source alpha)
	SecondaryCoverageISC // coverage * (1 - source color)
)

var secondaryNames = [...]string{"None", "Coverage", "CoverageISA", "CoverageISC"}

func (o SecondaryOutput) String() string {
	if int(o) < len(secondaryNames) {
		return secondaryNames[o]
	}
	return "SecondaryOutput(?)"
}

// Compiled is the optimized, immutable form of a State. It is safe for
// concurrent use once returned by Optimize.
type Compiled struct {
	target        *RenderTarget
	viewMatrix    f64.Mat3
	attribs       []VertexAttrib
	stride        int
	bindings      bindingTable
	colorStages   []Stage
	covStages     []Stage
	color         blend.Color
	coverage      float32
	colorInput    ColorInput
	coverageInput ColorInput
	src, dst      blend.Coeff
	blendConstant blend.Color
	filterMode    blend.Mode
	filterColor   blend.Color
	stencil       stencil.Settings
	flags         Flags
	face          DrawFace
	edgeType      EdgeType

	plan          Plan
	primary       PrimaryOutput
	secondary     SecondaryOutput
	coverageAlpha bool
	readsDst      bool
	readsFragPos  bool
	localCoords   bool

	capsID uint64
	desc   Descriptor
}

func (c *Compiled) RenderTarget() *RenderTarget      { return c.target }
func (c *Compiled) ViewMatrix() f64.Mat3             { return c.viewMatrix }
func (c *Compiled) Color() blend.Color               { return c.color }
func (c *Compiled) Coverage() float32                { return c.coverage }
func (c *Compiled) ColorInput() ColorInput           { return c.colorInput }
func (c *Compiled) CoverageInput() ColorInput        { return c.coverageInput }
func (c *Compiled) BlendConstant() blend.Color       { return c.blendConstant }
func (c *Compiled) Flags() Flags                     { return c.flags }
func (c *Compiled) DrawFace() DrawFace               { return c.face }
func (c *Compiled) EdgeType() EdgeType               { return c.edgeType }
func (c *Compiled) Plan() Plan                       { return c.plan }
func (c *Compiled) PrimaryOutput() PrimaryOutput     { return c.primary }
func (c *Compiled) SecondaryOutput() SecondaryOutput { return c.secondary }
func (c *Compiled) Descriptor() *Descriptor          { return &c.desc }
func (c *Compiled) CapsID() uint64                   { return c.capsID }

// BlendCoeffs returns the coefficients after optimization.
func (c *Compiled) BlendCoeffs() (src, dst blend.Coeff) { return c.src, c.dst }

// GPUBlendConstant returns the constant to upload for the final blend
// coefficients. It returns false if they read both the constant color and
// the constant alpha.
func (c *Compiled) GPUBlendConstant() (blend.Color, bool) {
	return blend.ConstantForGPU(c.src, c.dst, c.blendConstant)
}

// ReadsConstant reports whether the blend constant must be uploaded.
func (c *Compiled) ReadsConstant() bool { return ReadsConstant(c.src, c.dst) }

// ColorFilter returns the color filter.
func (c *Compiled) ColorFilter() (blend.Color, blend.Mode) { return c.filterColor, c.filterMode }

// Stencil returns the stencil settings.
func (c *Compiled) Stencil() stencil.Settings { return c.stencil }

// CoverageAsAlpha reports whether coverage is folded into alpha.
func (c *Compiled) CoverageAsAlpha() bool { return c.coverageAlpha }

// ReadsDst reports whether a surviving stage samples the destination.
func (c *Compiled) ReadsDst() bool { return c.readsDst }

// ReadsFragmentPosition reports whether a surviving stage reads the
// fragment position.
func (c *Compiled) ReadsFragmentPosition() bool { return c.readsFragPos }

// RequiresLocalCoords reports whether a surviving stage reads local
// coordinates.
func (c *Compiled) RequiresLocalCoords() bool { return c.localCoords }

// HasExplicitLocalCoords reports whether local coordinates come from a
// vertex attribute.
func (c *Compiled) HasExplicitLocalCoords() bool { return c.bindings.has(BindingLocalCoord) }

// HasBinding reports whether an attribute feeds the fixed binding b.
func (c *Compiled) HasBinding(b Binding) bool { return b < BindingEffect && c.bindings.has(b) }

// AttribIndex returns the index of the attribute bound to b, or -1.
func (c *Compiled) AttribIndex(b Binding) int {
	if b >= BindingEffect {
		return -1
	}
	return int(c.bindings[b])
}

// VertexAttribs returns a copy of the surviving vertex layout.
func (c *Compiled) VertexAttribs() []VertexAttrib { return slices.Clone(c.attribs) }

// VertexStride returns the size of one vertex as submitted by the client.
// Pruned attributes still occupy their bytes, so the stride is taken from
// the layout before pruning.
func (c *Compiled) VertexStride() int { return c.stride }

// VertexBufferLayout returns the buffer layout of the surviving attributes
// at the client's vertex stride.
func (c *Compiled) VertexBufferLayout() gputypes.VertexBufferLayout {
	return vertexBufferLayout(c.attribs, c.stride)
}

// NumColorStages returns the number of surviving color stages.
func (c *Compiled) NumColorStages() int { return len(c.colorStages) }

// NumCoverageStages returns the number of surviving coverage stages.
func (c *Compiled) NumCoverageStages() int { return len(c.covStages) }

// ColorStage returns surviving color stage i.
func (c *Compiled) ColorStage(i int) Stage { return c.colorStages[i] }

// CoverageStage returns surviving coverage stage i.
func (c *Compiled) CoverageStage(i int) Stage { return c.covStages[i] }

// IsEqual reports whether two compiled states draw identically: equal
// descriptors, equal scalar and vertex fields, equal stencil and pairwise
// compatible stages.
func (c *Compiled) IsEqual(o *Compiled) bool {
	if c == o {
		return true
	}
	if c == nil || o == nil {
		return false
	}
	if !c.desc.Equal(&o.desc) {
		return false
	}
	if c.target != o.target ||
		c.viewMatrix != o.viewMatrix ||
		c.color != o.color ||
		c.coverage != o.coverage ||
		c.src != o.src || c.dst != o.dst ||
		c.filterColor != o.filterColor ||
		c.flags != o.flags ||
		c.face != o.face {
		return false
	}
	if c.ReadsConstant() && c.blendConstant != o.blendConstant {
		return false
	}
	if c.stride != o.stride || !slices.Equal(c.attribs, o.attribs) {
		return false
	}
	if !c.stencil.Equal(&o.stencil) {
		return false
	}
	explicit := c.HasExplicitLocalCoords()
	return stagesCompatible(c.colorStages, o.colorStages, explicit) &&
		stagesCompatible(c.covStages, o.covStages, explicit)
}

func stagesCompatible(a, b []Stage, explicitLocalCoords bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].IsCompatible(b[i], explicitLocalCoords) {
			return false
		}
	}
	return true
}

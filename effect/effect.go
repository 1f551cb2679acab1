// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package effect defines the black-box interface the draw-state optimizer
// uses to reason about color and coverage stages.
//
// An Effect transforms an input color (or coverage, carried as a gray color)
// into an output. The optimizer never looks inside an effect; it only asks the
// four queries below, which must be pure and cheap because they are called per
// stage per draw.
package effect

import "github.com/gogpu/drawstate/blend"

// ComponentMask is a set of RGBA channels.
type ComponentMask uint8

// Channel bits.
const (
	ComponentR ComponentMask = 1 << iota
	ComponentG
	ComponentB
	ComponentA

	ComponentNone ComponentMask = 0
	ComponentRGB                = ComponentR | ComponentG | ComponentB
	ComponentRGBA               = ComponentRGB | ComponentA
)

// Has reports whether every channel in o is in m.
func (m ComponentMask) Has(o ComponentMask) bool {
	return m&o == o
}

// Class identifies an effect implementation. Classes below ClassUser are
// reserved for the effects in this package.
type Class uint16

const (
	ClassNone Class = iota
	ClassConstant
	ClassModulate
	ClassLinearGradient
	ClassDither
	ClassDstBlend
	ClassCoverage
	ClassEdgeRamp

	// ClassUser is the first class available to effects defined elsewhere.
	ClassUser Class = 0x100
)

// FetchMode says where a stage samples data from.
type FetchMode uint8

const (
	FetchNone FetchMode = iota
	FetchTexture
	FetchDst
)

// CoordMapping says which coordinate frame a stage reads.
type CoordMapping uint8

const (
	MappingNone CoordMapping = iota
	MappingLocal
	MappingFragPos
)

// Modulation says how a stage combines its result with its input.
type Modulation uint8

const (
	ModulateNone Modulation = iota
	ModulateInput
	ModulateInputAlpha
)

// Key names everything about an effect that changes generated shader text.
// Two effects with equal keys must emit identical code; any difference in
// their output must come from uniform parameters.
type Key struct {
	Class      Class
	Variant    uint8
	Fetch      FetchMode
	Mapping    CoordMapping
	Modulation Modulation
}

// Effect is one color or coverage transform.
type Effect interface {
	// Name is a human readable label used in logs.
	Name() string

	// Key returns the shader-affecting identity of the effect.
	Key() Key

	// WillUseInputColor reports whether the output depends on the input.
	// When false every stage before this one is irrelevant.
	WillUseInputColor() bool

	// ConstantOutput refines what is known about the output. On entry color
	// and valid describe the input; on return they describe the output:
	// each channel in valid holds the same value at every pixel.
	ConstantOutput(color *blend.Color, valid *ComponentMask)

	// WillReadDstColor reports whether the stage samples the destination.
	WillReadDstColor() bool

	// WillReadFragmentPosition reports whether the stage reads the
	// fragment's window position.
	WillReadFragmentPosition() bool

	// IsEqual reports whether other is the same class with the same
	// parameters.
	IsEqual(other Effect) bool
}

// Parameterized is implemented by effects with uniform parameters. A stage
// has two vec4 parameter slots.
type Parameterized interface {
	Params() [2]blend.Color
}

// Emitter is implemented by effects that generate their own WGSL.
type Emitter interface {
	// EmitWGSL returns statements that assign ctx.Out.
	EmitWGSL(ctx *EmitContext) string
}

// EmitContext names the WGSL expressions available to a stage body.
type EmitContext struct {
	In      string // vec4<f32> input
	Out     string // vec4<f32> variable to assign
	Param0  string // first vec4<f32> parameter
	Param1  string // second vec4<f32> parameter
	Local   string // vec2<f32> local coordinates, empty if unavailable
	FragPos string // vec4<f32> fragment position
	Dst     string // vec4<f32> destination color, empty if unavailable
}

// Params returns the parameters of e, or zero values when e has none.
func Params(e Effect) [2]blend.Color {
	if p, ok := e.(Parameterized); ok {
		return p.Params()
	}
	return [2]blend.Color{}
}

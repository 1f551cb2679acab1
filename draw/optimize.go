// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package draw

import (
	"slices"

	"github.com/gogpu/drawstate/blend"
	"github.com/gogpu/drawstate/effect"
)

// Optimize compiles s for a GPU with the given capabilities. It returns nil
// when the draw cannot change any pixel and must not be submitted.
//
// The result is cached on s and reused until s changes or a different
// capability identity is passed.
func Optimize(s *State, caps Capabilities) *Compiled {
	if s.compiledValid && s.compiledCapsID == caps.ID() {
		return s.compiled
	}
	c := optimize(s, caps)
	s.compiled = c
	s.compiledCapsID = caps.ID()
	s.compiledValid = true
	return c
}

// prefix is the outcome of walking one stage chain.
type prefix struct {
	first     int         // index of the first stage that affects output
	input     blend.Color // input to stage first
	inputUsed bool        // whether stage first reads its input
	dropAttr  bool        // whether the per-vertex input is unused
}

// effectivePrefix finds the first stage whose input matters. A stage that
// ignores its input makes every earlier stage irrelevant; a stage whose
// output is a known constant can be replaced, with everything before it,
// by that constant as input.
func effectivePrefix(stages []Stage, input blend.Color, valid effect.ComponentMask) prefix {
	p := prefix{input: input, inputUsed: true}
	color := input
	for i, st := range stages {
		if !st.Effect.WillUseInputColor() {
			p.first = i
			p.inputUsed = false
			p.dropAttr = true
		}
		st.Effect.ConstantOutput(&color, &valid)
		if valid == effect.ComponentRGBA {
			p.first = i + 1
			p.input = color
			p.inputUsed = true
			p.dropAttr = true
		}
	}
	return p
}

func optimize(s *State, caps Capabilities) *Compiled {
	plan, src, dst := s.BlendPlan(false)
	if plan == PlanSkipDraw && !s.IsStencilOnly() {
		return nil
	}

	c := &Compiled{
		target:        s.target,
		viewMatrix:    s.viewMatrix,
		src:           src,
		dst:           dst,
		blendConstant: s.blendConstant,
		filterMode:    s.filterMode,
		filterColor:   s.filterColor,
		stencil:       s.stencil,
		flags:         s.flags,
		face:          s.face,
		edgeType:      s.edgeType,
		plan:          plan,
		capsID:        caps.ID(),
	}

	hasColorAttr := s.bindings.has(BindingColor)
	hasCovAttr := s.bindings.has(BindingCoverage)
	hasEdge := s.hasEdgeCoverage()

	colorValid := effect.ComponentRGBA
	if hasColorAttr {
		colorValid = effect.ComponentNone
	}
	covInput, covValid := s.coverageInput()

	var colorP, covP prefix
	switch plan {
	case PlanEmitCoverage:
		colorP = prefix{first: len(s.colorStages), input: blend.White, inputUsed: true, dropAttr: true}
		covP = effectivePrefix(s.covStages, covInput, covValid)
	case PlanEmitTransparentBlack:
		colorP = prefix{first: len(s.colorStages), input: blend.Transparent, inputUsed: true, dropAttr: true}
		covP = prefix{first: len(s.covStages), input: blend.White, inputUsed: true, dropAttr: true}
	default:
		colorP = effectivePrefix(s.colorStages, s.color, colorValid)
		covP = effectivePrefix(s.covStages, covInput, covValid)
	}
	if plan == PlanCoverageAsAlpha {
		c.coverageAlpha = true
	}

	c.colorStages = slices.Clone(s.colorStages[colorP.first:])
	c.covStages = slices.Clone(s.covStages[covP.first:])
	debugAssert(len(c.colorStages)+len(c.covStages) <= MaxStages, "stage count exceeds MaxStages")

	// Input color.
	keepColorAttr := hasColorAttr && !colorP.dropAttr
	switch {
	case keepColorAttr:
		c.colorInput = ColorInputAttribute
	case !colorP.inputUsed:
		c.color, c.colorInput = blend.Transparent, ColorInputTransparentBlack
	default:
		c.color, c.colorInput = colorP.input, classifyColor(colorP.input)
	}

	// Input coverage. The edge attribute carries coverage too.
	keepCovAttr := hasCovAttr && !covP.dropAttr
	keepEdge := hasEdge && !covP.dropAttr
	switch {
	case keepCovAttr || keepEdge:
		// A coverage attribute replaces the uniform; edges scale it.
		c.coverage, c.coverageInput = s.coverage, ColorInputAttribute
		if keepCovAttr {
			c.coverage = 1
		}
	case !covP.inputUsed:
		c.coverage, c.coverageInput = 1, ColorInputSolidWhite
	default:
		c.coverage = covP.input.A
		c.coverageInput = classifyColor(covP.input)
		if c.coverageInput == ColorInputTransparentBlack {
			c.coverageInput = ColorInputUniform
		}
	}
	if !keepEdge {
		c.edgeType = EdgeNone
	}

	// Drop the attributes the shader will never read.
	c.stride = Stride(s.attribs)
	c.attribs = slices.DeleteFunc(slices.Clone(s.attribs), func(a VertexAttrib) bool {
		switch a.Binding {
		case BindingColor:
			return !keepColorAttr
		case BindingCoverage:
			return !keepCovAttr
		case BindingEdge:
			return !keepEdge
		}
		return false
	})
	c.bindings = buildBindingTable(c.attribs)

	if plan == PlanEmitCoverage || plan == PlanEmitTransparentBlack {
		// No color stage survives, so the filter has nothing to act on.
		c.filterMode, c.filterColor = blend.ModeDst, blend.Color{}
		c.flags &^= FlagDither
	}

	for _, st := range slices.Concat(c.colorStages, c.covStages) {
		c.readsDst = c.readsDst || st.Effect.WillReadDstColor()
		c.readsFragPos = c.readsFragPos || st.Effect.WillReadFragmentPosition()
		c.localCoords = c.localCoords || st.Effect.Key().Mapping == effect.MappingLocal
	}

	c.setOutputs(caps)

	// Settle the memoized stencil flags before the state is shared.
	c.stencil.IsDisabled()
	c.stencil.DoesWrite()

	c.desc = BuildDescriptor(c, caps)
	return c
}

func classifyColor(col blend.Color) ColorInput {
	switch col {
	case blend.White:
		return ColorInputSolidWhite
	case blend.Transparent:
		return ColorInputTransparentBlack
	}
	return ColorInputUniform
}

// hasSolidCoverage reports whether the compiled coverage is one at every
// pixel.
func (c *Compiled) hasSolidCoverage() bool {
	if c.flags&FlagCoverageDrawing != 0 {
		return true
	}
	if c.coverageInput == ColorInputAttribute {
		return false
	}
	cov, valid := blend.Gray(c.coverage), effect.ComponentRGBA
	for _, st := range c.covStages {
		st.Effect.ConstantOutput(&cov, &valid)
	}
	return valid == effect.ComponentRGBA && cov == blend.White
}

// setOutputs decides how fractional coverage leaves the shader. With
// dual-source blending the destination coefficient is folded into the
// secondary output; otherwise (One, Zero) with a readable destination lets
// the shader lerp against the destination itself.
func (c *Compiled) setOutputs(caps Capabilities) {
	c.primary, c.secondary = OutputModulate, SecondaryNone
	if c.plan == PlanEmitCoverage || c.plan == PlanCoverageAsAlpha || c.hasSolidCoverage() {
		return
	}
	if caps.SupportsDualSourceBlending() {
		switch c.dst {
		case blend.Zero:
			c.secondary = SecondaryCoverage
		case blend.SA:
			c.secondary = SecondaryCoverageISA
		case blend.SC:
			c.secondary = SecondaryCoverageISC
		}
		if c.secondary != SecondaryNone {
			c.dst = blend.IS2C
		}
		return
	}
	if c.readsDst && c.src == blend.One && c.dst == blend.Zero {
		c.primary = OutputCombineWithDst
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package draw

import (
	"github.com/gogpu/drawstate/blend"
	"github.com/gogpu/drawstate/effect"
)

// Plan is the blend simplification chosen for a draw.
type Plan uint8

const (
	// PlanNone draws with the (possibly canonicalized) coefficients.
	PlanNone Plan = iota
	// PlanSkipDraw means the draw cannot change any pixel.
	PlanSkipDraw
	// PlanEmitCoverage means only coverage matters; color is opaque white.
	PlanEmitCoverage
	// PlanEmitTransparentBlack writes transparent black with (One, Zero).
	PlanEmitTransparentBlack
	// PlanCoverageAsAlpha folds coverage into the output alpha.
	PlanCoverageAsAlpha
)

var planNames = [...]string{"None", "SkipDraw", "EmitCoverage", "EmitTransparentBlack", "CoverageAsAlpha"}

func (p Plan) String() string {
	if int(p) < len(planNames) {
		return planNames[p]
	}
	return "Plan(?)"
}

// BlendPlan decides how the draw can be blended and returns the
// coefficients to use with the plan. With forceCoverage the draw is assumed
// to carry fractional coverage regardless of its stages; that variant is
// not cached. The unforced result is cached until a blend-affecting field
// changes.
func (s *State) BlendPlan(forceCoverage bool) (plan Plan, src, dst blend.Coeff) {
	if forceCoverage {
		return s.computeBlendPlan(true)
	}
	if !s.planValid {
		s.plan, s.planSrc, s.planDst = s.computeBlendPlan(false)
		s.planValid = true
	}
	return s.plan, s.planSrc, s.planDst
}

func (s *State) computeBlendPlan(forceCoverage bool) (Plan, blend.Coeff, blend.Coeff) {
	src, dst := s.src, s.dst
	if s.IsColorWriteDisabled() {
		src, dst = blend.Zero, blend.One
	}

	srcAIsOne := s.SrcAlphaWillBeOne()
	dstIsOne := dst == blend.One || (dst == blend.SA && srcAIsOne)
	dstIsZero := dst == blend.Zero || (dst == blend.ISA && srcAIsOne)

	// (Zero, One) leaves the destination alone.
	if src == blend.Zero && dstIsOne {
		if s.stencil.DoesWrite() {
			return PlanEmitCoverage, src, dst
		}
		return PlanSkipDraw, src, blend.One
	}

	hasCoverage := forceCoverage || !s.HasSolidCoverage()
	switch {
	case !hasCoverage:
		if dstIsZero {
			switch src {
			case blend.One:
				// The source replaces the destination outright.
				return PlanNone, src, blend.Zero
			case blend.Zero:
				return PlanEmitTransparentBlack, blend.One, blend.Zero
			}
		}
	case s.IsCoverageDrawing():
		return PlanCoverageAsAlpha, src, dst
	default:
		if canTweakAlpha(dst) {
			return PlanCoverageAsAlpha, src, dst
		}
		if dstIsZero {
			if src == blend.Zero {
				// c*0 + (1-c)*D: only coverage reaches the blend.
				return PlanEmitCoverage, src, blend.ISA
			}
			if srcAIsOne {
				// c*S*src + (1-c)*D with Sa one: coverage becomes alpha.
				return PlanCoverageAsAlpha, src, blend.ISA
			}
		} else if dstIsOne {
			return PlanCoverageAsAlpha, src, blend.One
		}
	}
	return PlanNone, src, dst
}

func canTweakAlpha(dst blend.Coeff) bool {
	return dst == blend.One || dst == blend.ISA || dst == blend.ISC
}

// CanTweakAlphaForCoverage reports whether fractional coverage can be
// multiplied into the source color without changing the blend result.
func (s *State) CanTweakAlphaForCoverage() bool {
	return canTweakAlpha(s.dst) || s.IsCoverageDrawing()
}

// CanApplyCoverage reports whether a geometry producer may emit
// fractional coverage for this state on a GPU with the given capabilities.
func (s *State) CanApplyCoverage(caps Capabilities) bool {
	if caps.SupportsDualSourceBlending() {
		return true
	}
	plan, _, _ := s.BlendPlan(true)
	return plan != PlanNone
}

// SrcAlphaWillBeOne reports whether the color reaching the blend has alpha
// exactly one at every pixel.
func (s *State) SrcAlphaWillBeOne() bool {
	var color blend.Color
	valid := effect.ComponentNone
	switch {
	case !s.bindings.has(BindingColor):
		color, valid = s.color, effect.ComponentRGBA
	case s.opaqueVertex:
		color.A, valid = 1, effect.ComponentA
	}
	for _, st := range s.colorStages {
		st.Effect.ConstantOutput(&color, &valid)
	}

	if s.IsCoverageDrawing() {
		// The shader multiplies color by coverage, so both alphas must be one.
		cov, covValid := s.coverageInput()
		for _, st := range s.covStages {
			st.Effect.ConstantOutput(&cov, &covValid)
		}
		return valid&covValid&effect.ComponentA != 0 && color.A == 1 && cov.A == 1
	}
	return valid.Has(effect.ComponentA) && color.A == 1
}

// HasSolidCoverage reports whether coverage is one at every pixel.
func (s *State) HasSolidCoverage() bool {
	if s.IsCoverageDrawing() {
		return true
	}
	cov, valid := s.coverageInput()
	for _, st := range s.covStages {
		st.Effect.ConstantOutput(&cov, &valid)
	}
	return valid == effect.ComponentRGBA && cov == blend.White
}

// coverageInput returns what is known about coverage before the stages.
func (s *State) coverageInput() (blend.Color, effect.ComponentMask) {
	if s.bindings.has(BindingCoverage) || s.hasEdgeCoverage() {
		return blend.Color{}, effect.ComponentNone
	}
	return blend.Gray(s.coverage), effect.ComponentRGBA
}

// ReadsConstant reports whether the coefficients read the blend constant.
func ReadsConstant(src, dst blend.Coeff) bool {
	return src.ReadsConstant() || dst.ReadsConstant()
}

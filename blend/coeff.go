// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package blend describes fixed-function blending: the coefficients of the
// blend equation, the Porter-Duff transfer modes expressed through them, and a
// software evaluator of the equation used as a reference by the optimizer tests.
//
// The blend equation is
//
//	result = src*srcCoeff + dst*dstCoeff
//
// evaluated per channel on premultiplied colors.
package blend

import (
	"errors"

	"github.com/gogpu/gputypes"
)

// Dual-source blend factors. gputypes stops at the constant factors, so
// these carry the webgpu.h dual-source-blending numbering.
const (
	FactorSrc1              gputypes.BlendFactor = 0x0E
	FactorOneMinusSrc1      gputypes.BlendFactor = 0x0F
	FactorSrc1Alpha         gputypes.BlendFactor = 0x10
	FactorOneMinusSrc1Alpha gputypes.BlendFactor = 0x11
)

// ErrConstantConflict is returned when one coefficient of a pair reads the
// constant color and the other reads the constant alpha. A GPU has a single
// constant register, so no upload satisfies both.
var ErrConstantConflict = errors.New("blend: constant color and constant alpha in one equation")

// Coeff is a blend coefficient. The zero value is Zero.
type Coeff uint8

const (
	Zero      Coeff = iota // 0
	One                    // 1
	SC                     // source color
	ISC                    // 1 - source color
	DC                     // destination color
	IDC                    // 1 - destination color
	SA                     // source alpha
	ISA                    // 1 - source alpha
	DA                     // destination alpha
	IDA                    // 1 - destination alpha
	ConstC                 // constant color
	IConstC                // 1 - constant color
	ConstA                 // constant alpha
	IConstA                // 1 - constant alpha
	S2C                    // secondary source color (dual-source)
	IS2C                   // 1 - secondary source color
	S2A                    // secondary source alpha
	IS2A                   // 1 - secondary source alpha

	// CoeffCount is the number of defined coefficients.
	CoeffCount int = iota
)

var coeffNames = [...]string{
	Zero:    "Zero",
	One:     "One",
	SC:      "SC",
	ISC:     "ISC",
	DC:      "DC",
	IDC:     "IDC",
	SA:      "SA",
	ISA:     "ISA",
	DA:      "DA",
	IDA:     "IDA",
	ConstC:  "ConstC",
	IConstC: "IConstC",
	ConstA:  "ConstA",
	IConstA: "IConstA",
	S2C:     "S2C",
	IS2C:    "IS2C",
	S2A:     "S2A",
	IS2A:    "IS2A",
}

// String returns the short name of the coefficient.
func (c Coeff) String() string {
	if int(c) < len(coeffNames) {
		return coeffNames[c]
	}
	return "Coeff(?)"
}

// Valid reports whether c is one of the defined coefficients.
func (c Coeff) Valid() bool {
	return int(c) < CoeffCount
}

// ReadsDst reports whether the coefficient samples the destination.
func (c Coeff) ReadsDst() bool {
	switch c {
	case DC, IDC, DA, IDA:
		return true
	}
	return false
}

// ReadsSrc reports whether the coefficient samples the primary source.
func (c Coeff) ReadsSrc() bool {
	switch c {
	case SC, ISC, SA, ISA:
		return true
	}
	return false
}

// ReadsConstant reports whether the coefficient references the constant
// blend color, in which case the color must be uploaded with the draw.
func (c Coeff) ReadsConstant() bool {
	switch c {
	case ConstC, IConstC, ConstA, IConstA:
		return true
	}
	return false
}

// ReadsSecondary reports whether the coefficient needs the secondary
// (dual-source) shader output.
func (c Coeff) ReadsSecondary() bool {
	switch c {
	case S2C, IS2C, S2A, IS2A:
		return true
	}
	return false
}

// Factor converts the coefficient to its WebGPU blend factor.
// The constant-alpha variants map onto the constant factor; ConstantForGPU
// gives the constant to upload for them.
func (c Coeff) Factor() gputypes.BlendFactor {
	switch c {
	case One:
		return gputypes.BlendFactorOne
	case SC:
		return gputypes.BlendFactorSrc
	case ISC:
		return gputypes.BlendFactorOneMinusSrc
	case DC:
		return gputypes.BlendFactorDst
	case IDC:
		return gputypes.BlendFactorOneMinusDst
	case SA:
		return gputypes.BlendFactorSrcAlpha
	case ISA:
		return gputypes.BlendFactorOneMinusSrcAlpha
	case DA:
		return gputypes.BlendFactorDstAlpha
	case IDA:
		return gputypes.BlendFactorOneMinusDstAlpha
	case ConstC, ConstA:
		return gputypes.BlendFactorConstant
	case IConstC, IConstA:
		return gputypes.BlendFactorOneMinusConstant
	case S2C:
		return FactorSrc1
	case IS2C:
		return FactorOneMinusSrc1
	case S2A:
		return FactorSrc1Alpha
	case IS2A:
		return FactorOneMinusSrc1Alpha
	default:
		return gputypes.BlendFactorZero
	}
}

// GPUState returns the WebGPU blend state for the coefficient pair with an
// additive blend operation on both the color and alpha lanes.
func GPUState(src, dst Coeff) gputypes.BlendState {
	comp := gputypes.BlendComponent{
		SrcFactor: src.Factor(),
		DstFactor: dst.Factor(),
		Operation: gputypes.BlendOperationAdd,
	}
	return gputypes.BlendState{Color: comp, Alpha: comp}
}

// ConstantForGPU returns the blend constant to upload for the pair. When a
// constant-alpha coefficient is used, the alpha of k is copied into every
// channel. It returns false if the pair mixes constant color and constant
// alpha.
func ConstantForGPU(src, dst Coeff, k Color) (Color, bool) {
	var color, alpha bool
	for _, c := range [2]Coeff{src, dst} {
		switch c {
		case ConstC, IConstC:
			color = true
		case ConstA, IConstA:
			alpha = true
		}
	}
	switch {
	case color && alpha:
		return Color{}, false
	case alpha:
		return Color{R: k.A, G: k.A, B: k.A, A: k.A}, true
	}
	return k, true
}

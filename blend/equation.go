// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package blend

// Inputs carries the terms the blend equation may read besides the two
// coefficients.
type Inputs struct {
	Src       Color // primary shader output
	Secondary Color // secondary shader output (dual-source)
	Dst       Color // destination pixel
	Constant  Color // constant blend color
}

// Weight returns the per-channel weight that coefficient c contributes for
// the given inputs.
func (c Coeff) Weight(in *Inputs) Color {
	switch c {
	case Zero:
		return Transparent
	case One:
		return White
	case SC:
		return in.Src
	case ISC:
		return inverse(in.Src)
	case DC:
		return in.Dst
	case IDC:
		return inverse(in.Dst)
	case SA:
		return in.Src.Alpha()
	case ISA:
		return inverse(in.Src.Alpha())
	case DA:
		return in.Dst.Alpha()
	case IDA:
		return inverse(in.Dst.Alpha())
	case ConstC:
		return in.Constant
	case IConstC:
		return inverse(in.Constant)
	case ConstA:
		return in.Constant.Alpha()
	case IConstA:
		return inverse(in.Constant.Alpha())
	case S2C:
		return in.Secondary
	case IS2C:
		return inverse(in.Secondary)
	case S2A:
		return in.Secondary.Alpha()
	case IS2A:
		return inverse(in.Secondary.Alpha())
	}
	return Transparent
}

// Apply evaluates src*srcCoeff + dst*dstCoeff and clamps the result the way
// a fixed-point render target would.
func Apply(src, dst Coeff, in *Inputs) Color {
	s := in.Src.Mul(src.Weight(in))
	d := in.Dst.Mul(dst.Weight(in))
	return s.Add(d).Clamp()
}

// ApplyWithCoverage evaluates the blend of a partially covered pixel:
// coverage*blend(src, dst) + (1-coverage)*dst. It is the reference result
// every blend simplification must reproduce.
func ApplyWithCoverage(src, dst Coeff, in *Inputs, coverage float32) Color {
	full := Apply(src, dst, in)
	return in.Dst.Lerp(full, coverage).Clamp()
}

func inverse(c Color) Color {
	return Color{R: 1 - c.R, G: 1 - c.G, B: 1 - c.B, A: 1 - c.A}
}

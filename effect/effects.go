// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package effect

import (
	"fmt"

	"github.com/gogpu/drawstate/blend"
)

// Constant outputs a fixed color and ignores its input.
type Constant struct {
	Color blend.Color
}

func (c Constant) Name() string            { return "Constant" }
func (c Constant) Key() Key                { return Key{Class: ClassConstant} }
func (c Constant) WillUseInputColor() bool { return false }
func (c Constant) WillReadDstColor() bool  { return false }
func (c Constant) Params() [2]blend.Color  { return [2]blend.Color{c.Color} }

func (c Constant) WillReadFragmentPosition() bool { return false }

func (c Constant) ConstantOutput(color *blend.Color, valid *ComponentMask) {
	*color = c.Color
	*valid = ComponentRGBA
}

func (c Constant) IsEqual(other Effect) bool {
	o, ok := other.(Constant)
	return ok && o == c
}

func (c Constant) EmitWGSL(ctx *EmitContext) string {
	return fmt.Sprintf("%s = %s;", ctx.Out, ctx.Param0)
}

// Modulate multiplies its input by a fixed color.
type Modulate struct {
	Color blend.Color
}

func (m Modulate) Name() string            { return "Modulate" }
func (m Modulate) WillUseInputColor() bool { return true }
func (m Modulate) WillReadDstColor() bool  { return false }
func (m Modulate) Params() [2]blend.Color  { return [2]blend.Color{m.Color} }

func (m Modulate) WillReadFragmentPosition() bool { return false }

func (m Modulate) Key() Key {
	return Key{Class: ClassModulate, Modulation: ModulateInput}
}

// ConstantOutput keeps known channels known and makes any channel scaled by
// zero known.
func (m Modulate) ConstantOutput(color *blend.Color, valid *ComponentMask) {
	modulateKnown(color, valid, m.Color)
}

func (m Modulate) IsEqual(other Effect) bool {
	o, ok := other.(Modulate)
	return ok && o == m
}

func (m Modulate) EmitWGSL(ctx *EmitContext) string {
	return fmt.Sprintf("%s = %s * %s;", ctx.Out, ctx.In, ctx.Param0)
}

// Coverage scales input coverage by a fixed factor. A factor of one leaves
// coverage solid.
type Coverage struct {
	Value float32
}

func (c Coverage) Name() string            { return "Coverage" }
func (c Coverage) WillUseInputColor() bool { return true }
func (c Coverage) WillReadDstColor() bool  { return false }
func (c Coverage) Params() [2]blend.Color  { return [2]blend.Color{blend.Gray(c.Value)} }

func (c Coverage) WillReadFragmentPosition() bool { return false }

func (c Coverage) Key() Key {
	return Key{Class: ClassCoverage, Modulation: ModulateInput}
}

func (c Coverage) ConstantOutput(color *blend.Color, valid *ComponentMask) {
	modulateKnown(color, valid, blend.Gray(c.Value))
}

func (c Coverage) IsEqual(other Effect) bool {
	o, ok := other.(Coverage)
	return ok && o == c
}

func (c Coverage) EmitWGSL(ctx *EmitContext) string {
	return fmt.Sprintf("%s = %s * %s.a;", ctx.Out, ctx.In, ctx.Param0)
}

// EdgeRamp derives fractional coverage from the local y coordinate, the way
// an analytic edge shader fades across a one-pixel band.
type EdgeRamp struct{}

func (EdgeRamp) Name() string                   { return "EdgeRamp" }
func (EdgeRamp) WillUseInputColor() bool        { return true }
func (EdgeRamp) WillReadDstColor() bool         { return false }
func (EdgeRamp) WillReadFragmentPosition() bool { return false }

func (EdgeRamp) Key() Key {
	return Key{Class: ClassEdgeRamp, Mapping: MappingLocal, Modulation: ModulateInput}
}

func (EdgeRamp) ConstantOutput(color *blend.Color, valid *ComponentMask) {
	*valid = ComponentNone
}

func (EdgeRamp) IsEqual(other Effect) bool {
	_, ok := other.(EdgeRamp)
	return ok
}

func (EdgeRamp) EmitWGSL(ctx *EmitContext) string {
	return fmt.Sprintf("%s = %s * clamp(%s.y, 0.0, 1.0);", ctx.Out, ctx.In, ctx.Local)
}

// LinearGradient interpolates between two colors along the local x axis and
// scales the result by the input alpha.
type LinearGradient struct {
	Start, End blend.Color
}

func (g LinearGradient) Name() string                   { return "LinearGradient" }
func (g LinearGradient) WillUseInputColor() bool        { return true }
func (g LinearGradient) WillReadDstColor() bool         { return false }
func (g LinearGradient) WillReadFragmentPosition() bool { return false }
func (g LinearGradient) Params() [2]blend.Color         { return [2]blend.Color{g.Start, g.End} }

func (g LinearGradient) Key() Key {
	return Key{Class: ClassLinearGradient, Mapping: MappingLocal, Modulation: ModulateInputAlpha}
}

func (g LinearGradient) ConstantOutput(color *blend.Color, valid *ComponentMask) {
	inAlphaKnown := valid.Has(ComponentA)
	inAlpha := color.A
	*valid = ComponentNone
	if !inAlphaKnown {
		return
	}
	if g.Start == g.End {
		*color = g.Start.Scale(inAlpha)
		*valid = ComponentRGBA
		return
	}
	if g.Start.A == g.End.A {
		color.A = g.Start.A * inAlpha
		*valid = ComponentA
	}
}

func (g LinearGradient) IsEqual(other Effect) bool {
	o, ok := other.(LinearGradient)
	return ok && o == g
}

func (g LinearGradient) EmitWGSL(ctx *EmitContext) string {
	return fmt.Sprintf("%s = mix(%s, %s, clamp(%s.x, 0.0, 1.0)) * %s.a;",
		ctx.Out, ctx.Param0, ctx.Param1, ctx.Local, ctx.In)
}

// Dither perturbs color channels by a position-dependent amount.
type Dither struct {
	Amount float32
}

func (d Dither) Name() string                   { return "Dither" }
func (d Dither) WillUseInputColor() bool        { return true }
func (d Dither) WillReadDstColor() bool         { return false }
func (d Dither) WillReadFragmentPosition() bool { return true }
func (d Dither) Params() [2]blend.Color         { return [2]blend.Color{blend.Gray(d.Amount)} }

func (d Dither) Key() Key {
	return Key{Class: ClassDither, Mapping: MappingFragPos, Modulation: ModulateInput}
}

// ConstantOutput leaves alpha untouched; color channels become unknown.
func (d Dither) ConstantOutput(color *blend.Color, valid *ComponentMask) {
	*valid &= ComponentA
}

func (d Dither) IsEqual(other Effect) bool {
	o, ok := other.(Dither)
	return ok && o == d
}

func (d Dither) EmitWGSL(ctx *EmitContext) string {
	return fmt.Sprintf(
		"%s = vec4<f32>(%s.rgb + (fract(sin(dot(%s.xy, vec2<f32>(12.9898, 78.233))) * 43758.5453) - 0.5) * %s.x, %s.a);",
		ctx.Out, ctx.In, ctx.FragPos, ctx.Param0, ctx.In)
}

// DstBlend composites its input over the destination with a transfer mode
// evaluated in the shader.
type DstBlend struct {
	Mode blend.Mode
}

func (b DstBlend) Name() string                   { return "DstBlend(" + b.Mode.String() + ")" }
func (b DstBlend) WillUseInputColor() bool        { return true }
func (b DstBlend) WillReadDstColor() bool         { return true }
func (b DstBlend) WillReadFragmentPosition() bool { return false }

func (b DstBlend) Key() Key {
	return Key{Class: ClassDstBlend, Variant: uint8(b.Mode), Fetch: FetchDst}
}

func (b DstBlend) ConstantOutput(color *blend.Color, valid *ComponentMask) {
	*valid = ComponentNone
}

func (b DstBlend) IsEqual(other Effect) bool {
	o, ok := other.(DstBlend)
	return ok && o == b
}

func (b DstBlend) EmitWGSL(ctx *EmitContext) string {
	src, dst := b.Mode.Coeffs()
	return fmt.Sprintf("%s = %s * %s + %s * %s;", ctx.Out,
		ctx.In, WGSLCoeff(src, ctx.In, ctx.Dst),
		ctx.Dst, WGSLCoeff(dst, ctx.In, ctx.Dst))
}

// WGSLCoeff returns a WGSL expression for a source or destination blend
// weight. Coefficients that read constants or secondary outputs have no
// in-shader meaning and evaluate to zero.
func WGSLCoeff(c blend.Coeff, src, dst string) string {
	switch c {
	case blend.One:
		return "vec4<f32>(1.0)"
	case blend.SC:
		return src
	case blend.ISC:
		return "(vec4<f32>(1.0) - " + src + ")"
	case blend.DC:
		return dst
	case blend.IDC:
		return "(vec4<f32>(1.0) - " + dst + ")"
	case blend.SA:
		return "vec4<f32>(" + src + ".a)"
	case blend.ISA:
		return "vec4<f32>(1.0 - " + src + ".a)"
	case blend.DA:
		return "vec4<f32>(" + dst + ".a)"
	case blend.IDA:
		return "vec4<f32>(1.0 - " + dst + ".a)"
	}
	return "vec4<f32>(0.0)"
}

// modulateKnown applies out = in * m to the known channels of color. A
// channel multiplied by zero is known regardless of the input.
func modulateKnown(color *blend.Color, valid *ComponentMask, m blend.Color) {
	ch := [4]*float32{&color.R, &color.G, &color.B, &color.A}
	mv := [4]float32{m.R, m.G, m.B, m.A}
	for i := range ch {
		bit := ComponentMask(1) << i
		switch {
		case mv[i] == 0:
			*ch[i] = 0
			*valid |= bit
		case *valid&bit != 0:
			*ch[i] *= mv[i]
		}
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package program

import (
	"fmt"
	"strings"

	"github.com/gogpu/drawstate/blend"
	"github.com/gogpu/drawstate/draw"
	"github.com/gogpu/drawstate/effect"
)

const uniformDecl = `struct Uniforms {
    view0: vec4<f32>,
    view1: vec4<f32>,
    view2: vec4<f32>,
    viewport: vec4<f32>,
    color: vec4<f32>,
    coverage: vec4<f32>,
    filter_color: vec4<f32>,
    dst_origin: vec4<f32>,
    params: array<vec4<f32>, %d>,
    coords: array<vec4<f32>, %d>,
}

@group(0) @binding(0) var<uniform> u: Uniforms;
`

// attribute names by binding
var attribNames = [...]string{"position", "local", "color", "coverage", "edge"}

type generator struct {
	c *draw.Compiled
	d *draw.Descriptor
	b strings.Builder

	hasLocalAttr bool
	needLocal    bool
	hasColorAttr bool
	hasCovAttr   bool
	hasEdge      bool
}

func newGenerator(c *draw.Compiled) *generator {
	d := c.Descriptor()
	return &generator{
		c:            c,
		d:            d,
		hasLocalAttr: c.HasBinding(draw.BindingLocalCoord),
		needLocal:    d.RequiresLocalCoords(),
		hasColorAttr: c.HasBinding(draw.BindingColor),
		hasCovAttr:   c.HasBinding(draw.BindingCoverage),
		hasEdge:      c.HasBinding(draw.BindingEdge),
	}
}

func (g *generator) line(format string, args ...any) {
	fmt.Fprintf(&g.b, format, args...)
	g.b.WriteByte('\n')
}

func (g *generator) generate() (string, error) {
	g.line("// program %08x", g.d.Checksum())
	if g.d.SecondaryOutput() != draw.SecondaryNone {
		g.line("enable dual_source_blending;")
		g.line("")
	}
	fmt.Fprintf(&g.b, uniformDecl, 2*draw.MaxStages, 2*draw.MaxStages)
	if g.d.ReadsDst() {
		g.line("@group(0) @binding(1) var dst_tex: texture_2d<f32>;")
	}
	g.line("")
	g.vertexStructs()
	g.vertexMain()
	if err := g.fragmentMain(); err != nil {
		return "", err
	}
	return g.b.String(), nil
}

func (g *generator) vertexStructs() {
	g.line("struct VertexInput {")
	effectN := 0
	for i, a := range g.c.VertexAttribs() {
		name := ""
		if a.Binding == draw.BindingEffect {
			name = fmt.Sprintf("effect%d", effectN)
			effectN++
		} else {
			name = attribNames[a.Binding]
		}
		g.line("    @location(%d) %s: %s,", i, name, a.Type.WGSLType())
	}
	g.line("}")
	g.line("")

	g.line("struct VertexOutput {")
	g.line("    @builtin(position) clip: vec4<f32>,")
	if g.needLocal {
		g.line("    @location(0) local: vec2<f32>,")
	}
	if g.hasColorAttr {
		g.line("    @location(1) color: vec4<f32>,")
	}
	if g.hasCovAttr {
		g.line("    @location(2) coverage: f32,")
	}
	if g.hasEdge {
		g.line("    @location(3) edge: vec4<f32>,")
	}
	g.line("}")
	g.line("")
}

func (g *generator) attribType(b draw.Binding) draw.VertexAttribType {
	return g.c.VertexAttribs()[g.c.AttribIndex(b)].Type
}

func (g *generator) vertexMain() {
	g.line("@vertex")
	g.line("fn %s(in: VertexInput) -> VertexOutput {", VertexEntryPoint)
	g.line("    var out: VertexOutput;")
	if g.attribType(draw.BindingPosition) == draw.Float3 {
		g.line("    let p = in.position;")
	} else {
		g.line("    let p = vec3<f32>(in.position, 1.0);")
	}
	g.line("    let d = vec3<f32>(dot(u.view0.xyz, p), dot(u.view1.xyz, p), dot(u.view2.xyz, p));")
	g.line("    out.clip = vec4<f32>(d.xy / d.z * u.viewport.xy + vec2<f32>(-1.0, 1.0), 0.0, 1.0);")
	if g.needLocal {
		switch {
		case g.hasLocalAttr && g.attribType(draw.BindingLocalCoord) == draw.Float3:
			g.line("    out.local = in.local.xy / in.local.z;")
		case g.hasLocalAttr:
			g.line("    out.local = in.local;")
		default:
			g.line("    out.local = p.xy / p.z;")
		}
	}
	if g.hasColorAttr {
		g.line("    out.color = in.color;")
	}
	if g.hasCovAttr {
		if g.attribType(draw.BindingCoverage) == draw.UByte4 {
			g.line("    out.coverage = in.coverage.x;")
		} else {
			g.line("    out.coverage = in.coverage;")
		}
	}
	if g.hasEdge {
		g.line("    out.edge = in.edge;")
	}
	g.line("    return out;")
	g.line("}")
	g.line("")
}

func inputExpr(in draw.ColorInput, attr, uniform string) string {
	switch in {
	case draw.ColorInputAttribute:
		return attr
	case draw.ColorInputUniform:
		return uniform
	case draw.ColorInputSolidWhite:
		return "vec4<f32>(1.0)"
	}
	return "vec4<f32>(0.0)"
}

func (g *generator) coverageAttrExpr() string {
	terms := []string{"u.coverage.x"}
	if g.hasCovAttr {
		terms = append(terms, "in.coverage")
	}
	if g.hasEdge {
		switch g.d.EdgeType() {
		case draw.EdgeHairLine:
			terms = append(terms, "max(1.0 - abs(dot(in.edge.xyz, vec3<f32>(in.clip.xy, 1.0))), 0.0)")
		case draw.EdgeQuad:
			terms = append(terms, "clamp(0.5 - (in.edge.x * in.edge.x - in.edge.y), 0.0, 1.0)")
		case draw.EdgeCircle:
			terms = append(terms, "clamp(in.edge.z - length(in.edge.xy), 0.0, 1.0) * clamp(length(in.edge.xy) - in.edge.w, 0.0, 1.0)")
		}
	}
	return "vec4<f32>(" + strings.Join(terms, " * ") + ")"
}

// stages emits a chain of stages starting at descriptor index first and
// returns the variable holding the result.
func (g *generator) stages(prefix, in string, stages []draw.Stage, first int) (string, error) {
	cur := in
	for j, st := range stages {
		idx := first + j
		em, ok := st.Effect.(effect.Emitter)
		if !ok {
			return "", fmt.Errorf("%w: effect %s cannot emit WGSL", ErrBuildFailed, st.Effect.Name())
		}
		out := fmt.Sprintf("%s%d", prefix, j+1)
		key, moved := g.d.StageKey(idx)
		local := "vec2<f32>(0.0)"
		if key.Mapping == effect.MappingLocal {
			local = "in.local"
			if moved {
				local = fmt.Sprintf("l%d", idx)
				g.line("    let %s = vec2<f32>(dot(u.coords[%d].xyz, vec3<f32>(in.local, 1.0)), dot(u.coords[%d].xyz, vec3<f32>(in.local, 1.0)));",
					local, 2*idx, 2*idx+1)
			}
		}
		g.line("    var %s: vec4<f32>;", out)
		g.line("    %s", em.EmitWGSL(&effect.EmitContext{
			In:      cur,
			Out:     out,
			Param0:  fmt.Sprintf("u.params[%d]", 2*idx),
			Param1:  fmt.Sprintf("u.params[%d]", 2*idx+1),
			Local:   local,
			FragPos: "in.clip",
			Dst:     "dst",
		}))
		cur = out
	}
	return cur, nil
}

func (g *generator) fragmentMain() error {
	dual := g.d.SecondaryOutput() != draw.SecondaryNone
	if dual {
		g.line("struct FragmentOutput {")
		g.line("    @location(0) @blend_src(0) color: vec4<f32>,")
		g.line("    @location(0) @blend_src(1) secondary: vec4<f32>,")
		g.line("}")
		g.line("")
	}

	g.line("@fragment")
	if dual {
		g.line("fn %s(in: VertexOutput) -> FragmentOutput {", FragmentEntryPoint)
	} else {
		g.line("fn %s(in: VertexOutput) -> @location(0) vec4<f32> {", FragmentEntryPoint)
	}
	if g.d.ReadsDst() {
		if g.d.DstFetch() {
			g.line("    let dst = textureLoad(dst_tex, vec2<i32>(in.clip.xy), 0);")
		} else {
			g.line("    let dst = textureLoad(dst_tex, vec2<i32>(in.clip.xy - u.dst_origin.xy), 0);")
		}
	}

	g.line("    let c0 = %s;", inputExpr(g.d.ColorInput(), "in.color", "u.color"))
	nColor := g.c.NumColorStages()
	colorStages := make([]draw.Stage, nColor)
	for i := range colorStages {
		colorStages[i] = g.c.ColorStage(i)
	}
	col, err := g.stages("c", "c0", colorStages, 0)
	if err != nil {
		return err
	}

	if mode := g.d.ColorFilterMode(); mode != blend.ModeDst {
		src, dst := mode.Coeffs()
		g.line("    let filtered = u.filter_color * %s + %s * %s;",
			effect.WGSLCoeff(src, "u.filter_color", col), col, effect.WGSLCoeff(dst, "u.filter_color", col))
		col = "filtered"
	}
	if g.d.Dither() {
		g.line("    let noise = fract(sin(dot(in.clip.xy, vec2<f32>(12.9898, 78.233))) * 43758.5453) - 0.5;")
		g.line("    let dithered = vec4<f32>(%s.rgb + noise / 255.0, %s.a);", col, col)
		col = "dithered"
	}

	g.line("    let k0 = %s;", inputExpr(g.d.CoverageInput(), g.coverageAttrExpr(), "u.coverage"))
	covStages := make([]draw.Stage, g.c.NumCoverageStages())
	for i := range covStages {
		covStages[i] = g.c.CoverageStage(i)
	}
	cov, err := g.stages("k", "k0", covStages, nColor)
	if err != nil {
		return err
	}

	primary := col + " * " + cov
	if g.d.PrimaryOutput() == draw.OutputCombineWithDst {
		primary = fmt.Sprintf("mix(dst, %s, %s)", col, cov)
	}
	if !dual {
		g.line("    return %s;", primary)
		g.line("}")
		return nil
	}

	g.line("    var out: FragmentOutput;")
	g.line("    out.color = %s;", primary)
	switch g.d.SecondaryOutput() {
	case draw.SecondaryCoverage:
		g.line("    out.secondary = %s;", cov)
	case draw.SecondaryCoverageISA:
		g.line("    out.secondary = %s * (1.0 - %s.a);", cov, col)
	case draw.SecondaryCoverageISC:
		g.line("    out.secondary = %s * (vec4<f32>(1.0) - %s);", cov, col)
	}
	g.line("    return out;")
	g.line("}")
	return nil
}

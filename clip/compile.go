// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package clip

import (
	"fmt"
	"image"
	"strings"

	"github.com/gogpu/drawstate/stencil"
)

// Geometry says what a pass draws.
type Geometry uint8

const (
	// DrawElement draws the element's shape: one fragment per winding
	// crossing, front faces for positive winding, back faces for negative.
	DrawElement Geometry = iota
	// DrawBounds draws the clip bounds rectangle once.
	DrawBounds
)

func (g Geometry) String() string {
	if g == DrawBounds {
		return "bounds"
	}
	return "element"
}

// Pass is one stencil draw of a plan. Every pass is scissored to the plan
// bounds, drawn with color writes off and culling disabled.
type Pass struct {
	Element  int // index into the compiled elements
	Shape    Shape
	Geometry Geometry
	Stencil  stencil.Settings

	// UserBits marks the pass that rasterizes the element's fill into
	// the scratch bits.
	UserBits bool
	AA       bool
}

// Plan renders a clip into the stencil buffer.
type Plan struct {
	// Bounds scissors the clear and every pass. Draws that respect the
	// clip must be scissored to it too.
	Bounds image.Rectangle
	// Initial is the state the clear writes inside Bounds.
	Initial InitialState
	ClipBit uint16
	Passes  []Pass
	// Skipped counts leading elements overridden by a later Replace.
	Skipped int
}

// Empty reports whether the clip excludes every pixel.
func (p *Plan) Empty() bool { return p.Bounds.Empty() }

// DirectPasses returns how many passes write the clip bit with the
// element's own geometry.
func (p *Plan) DirectPasses() int {
	n := 0
	for i := range p.Passes {
		if !p.Passes[i].UserBits && p.Passes[i].Geometry == DrawElement {
			n++
		}
	}
	return n
}

func (p *Plan) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "clear %v to %v (clip bit %#x)", p.Bounds, p.Initial, p.ClipBit)
	for i := range p.Passes {
		ps := &p.Passes[i]
		kind := "clip"
		if ps.UserBits {
			kind = "user"
		}
		fmt.Fprintf(&b, "\n  [%d] element %d %s %v: %v", i, ps.Element, kind, ps.Geometry, ps.Stencil.String())
	}
	return b.String()
}

// Compile builds the plan that renders elements, applied to initial, into
// the top bit of a stencil buffer with the given depth. bounds must be
// conservative: the clip is empty outside it.
//
// Elements before the last Replace cannot affect the result and are
// skipped; the clear then writes AllOut. Only that first Replace is drawn
// straight into the clip bit, since the direct Replace pass leaves pixels
// outside the element untouched. Other elements take the direct path when
// their shape is simple.
//
// Non-zero fills count winding in the user bits modulo their range, so
// windings of 2^(bits-1) or more read as outside.
func Compile(elements []Element, bounds image.Rectangle, initial InitialState, bits int) (*Plan, error) {
	if bits == 0 {
		return nil, ErrNoStencil
	}
	if err := stencil.CheckBits(bits); err != nil {
		return nil, err
	}
	for i := range elements {
		if err := elements[i].validate(); err != nil {
			return nil, fmt.Errorf("clip: element %d: %w", i, err)
		}
	}

	first := 0
	for i := len(elements) - 1; i >= 0; i-- {
		if elements[i].Op == stencil.OpReplace {
			first, initial = i, AllOut
			break
		}
	}
	p := &Plan{
		Bounds:  bounds,
		Initial: initial,
		ClipBit: stencil.ClipBit(bits),
		Skipped: first,
	}
	if bounds.Empty() {
		return p, nil
	}

	userBits := stencil.UserBits(bits)
	cover := Rect(bounds)
	for i := first; i < len(elements); i++ {
		e := &elements[i]
		canBeDirect := e.Shape.Simple() && (e.Op != stencil.OpReplace || i == first)
		passes, direct := stencil.ClipPasses(e.Op, canBeDirect, p.ClipBit, e.Inverted)
		if !direct {
			p.Passes = append(p.Passes, Pass{
				Element:  i,
				Shape:    e.Shape,
				Geometry: DrawElement,
				Stencil:  stencil.UserPass(e.Fill, userBits),
				UserBits: true,
				AA:       e.AA,
			})
		}
		for _, s := range passes {
			ps := Pass{Element: i, Shape: cover, Geometry: DrawBounds, Stencil: s, AA: e.AA}
			if direct {
				ps.Shape, ps.Geometry = e.Shape, DrawElement
			}
			p.Passes = append(p.Passes, ps)
		}
	}
	return p, nil
}

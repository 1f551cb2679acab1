// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package clip

import (
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/gogpu/drawstate/stencil"
)

// reducedContains evaluates r at pixel (x, y).
func reducedContains(r *Reduced, x, y int) bool {
	if !image.Pt(x, y).In(r.Bounds) {
		return false
	}
	in := r.Initial == AllIn
	for i := range r.Elements {
		e := &r.Elements[i]
		in = e.Op.Eval(in, e.Contains(x, y))
	}
	return in
}

func TestReduce(t *testing.T) {
	rect := func(x0, y0, x1, y1 int) Shape { return Rect(image.Rect(x0, y0, x1, y1)) }
	tests := []struct {
		name         string
		elements     []Element
		wantBounds   image.Rectangle
		wantElements int
	}{
		{
			name:       "lone rect",
			elements:   []Element{{Op: stencil.OpIntersect, Shape: rect(2, 3, 9, 11)}},
			wantBounds: image.Rect(2, 3, 9, 11),
		},
		{
			name: "nested rects",
			elements: []Element{
				{Op: stencil.OpIntersect, Shape: rect(2, 2, 12, 12)},
				{Op: stencil.OpIntersect, Shape: rect(6, 0, 16, 9)},
			},
			wantBounds: image.Rect(6, 2, 12, 9),
		},
		{
			name: "translated rect",
			elements: []Element{
				{Op: stencil.OpIntersect, Shape: Translate(rect(0, 0, 4, 4), image.Pt(3, 5))},
			},
			wantBounds: image.Rect(3, 5, 7, 9),
		},
		{
			name: "disjoint rects",
			elements: []Element{
				{Op: stencil.OpIntersect, Shape: rect(0, 0, 4, 4)},
				{Op: stencil.OpIntersect, Shape: rect(8, 8, 12, 12)},
			},
		},
		{
			name: "rect minus star",
			elements: []Element{
				{Op: stencil.OpIntersect, Shape: rect(1, 1, 15, 15)},
				{Op: stencil.OpDifference, Shape: star},
			},
			wantBounds:   image.Rect(1, 1, 15, 15),
			wantElements: 1,
		},
		{
			name: "replace hides earlier elements",
			elements: []Element{
				{Op: stencil.OpIntersect, Shape: star},
				{Op: stencil.OpXor, Shape: square},
				{Op: stencil.OpReplace, Shape: rect(1, 1, 7, 7)},
			},
			wantBounds: image.Rect(1, 1, 7, 7),
		},
		{
			name: "covering union",
			elements: []Element{
				{Op: stencil.OpIntersect, Shape: star},
				{Op: stencil.OpUnion, Shape: Rect(device)},
			},
			wantBounds: device,
		},
		{
			name: "difference outside clip",
			elements: []Element{
				{Op: stencil.OpIntersect, Shape: square},
				{Op: stencil.OpDifference, Shape: rect(12, 12, 14, 14)},
			},
			wantBounds:   square.Bounds(),
			wantElements: 1,
		},
		{
			name: "covering difference",
			elements: []Element{
				{Op: stencil.OpIntersect, Shape: square},
				{Op: stencil.OpDifference, Shape: rect(0, 0, 12, 12)},
			},
		},
		{
			name: "inverted rect stays",
			elements: []Element{
				{Op: stencil.OpIntersect, Shape: rect(4, 4, 12, 12), Inverted: true},
			},
			wantBounds:   device,
			wantElements: 1,
		},
		{
			name: "union after rect keeps stencil",
			elements: []Element{
				{Op: stencil.OpIntersect, Shape: rect(2, 2, 8, 8)},
				{Op: stencil.OpUnion, Shape: rect(6, 6, 12, 12)},
			},
			wantBounds:   image.Rect(2, 2, 12, 12),
			wantElements: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStack(device)
			for _, e := range tt.elements {
				mustPush(t, s, e)
			}
			r, err := Reduce(s.Elements(), s.Bounds(), s.InitialState())
			if err != nil {
				t.Fatalf("Reduce: %v", err)
			}
			if tt.wantBounds.Empty() {
				if !r.Empty() {
					t.Fatalf("Reduce = %+v, want empty", r)
				}
				return
			}
			if r.Bounds != tt.wantBounds {
				t.Errorf("Bounds = %v, want %v", r.Bounds, tt.wantBounds)
			}
			if len(r.Elements) != tt.wantElements {
				t.Errorf("kept %d elements, want %d", len(r.Elements), tt.wantElements)
			}
			if got, want := r.ScissorOnly(), tt.wantElements == 0; got != want {
				t.Errorf("ScissorOnly() = %v, want %v", got, want)
			}
			checkReduced(t, s, &r)
		})
	}
}

// checkReduced compares r with the stack evaluated per pixel.
func checkReduced(t *testing.T, s *Stack, r *Reduced) {
	t.Helper()
	for y := 0; y < device.Dy(); y++ {
		for x := 0; x < device.Dx(); x++ {
			if got, want := reducedContains(r, x, y), s.Contains(x, y); got != want {
				t.Fatalf("reduced clip at (%d, %d) = %v, want %v (%d elements in %v)",
					x, y, got, want, len(r.Elements), r.Bounds)
			}
		}
	}
}

func TestReduceMatchesStack(t *testing.T) {
	for _, prefix := range testPrefixes {
		for _, op := range allOps {
			for _, sh := range testShapes {
				for _, inverted := range []bool{false, true} {
					name := fmt.Sprintf("%s/%v/%s/inverted=%v", prefix.name, op, sh.name, inverted)
					t.Run(name, func(t *testing.T) {
						s := NewStack(device)
						for _, e := range prefix.elements {
							mustPush(t, s, e)
						}
						mustPush(t, s, Element{Op: op, Shape: sh.shape, Fill: sh.fill, Inverted: inverted})
						r, err := Reduce(s.Elements(), s.Bounds(), s.InitialState())
						if err != nil {
							t.Fatalf("Reduce: %v", err)
						}
						if len(r.Elements) > s.Depth() {
							t.Errorf("kept %d of %d elements", len(r.Elements), s.Depth())
						}
						checkReduced(t, s, &r)
					})
				}
			}
		}
	}
}

func TestReduceRejectsInvalidElements(t *testing.T) {
	_, err := Reduce([]Element{{Op: stencil.OpIntersect}}, device, AllIn)
	if !errors.Is(err, ErrNilShape) {
		t.Fatalf("Reduce = %v, want ErrNilShape", err)
	}
}

func TestManagerSetup(t *testing.T) {
	tests := []struct {
		name        string
		elements    []Element
		bits        int
		wantScissor image.Rectangle
		wantStencil bool
		wantErr     error
	}{
		{
			name:        "rect",
			elements:    []Element{{Op: stencil.OpIntersect, Shape: Rect(image.Rect(2, 3, 9, 11))}},
			bits:        4,
			wantScissor: image.Rect(2, 3, 9, 11),
		},
		{
			name:        "rect without stencil",
			elements:    []Element{{Op: stencil.OpIntersect, Shape: Rect(image.Rect(2, 3, 9, 11))}},
			wantScissor: image.Rect(2, 3, 9, 11),
		},
		{
			name: "empty",
			elements: []Element{
				{Op: stencil.OpIntersect, Shape: Rect(image.Rect(0, 0, 4, 4))},
				{Op: stencil.OpIntersect, Shape: Rect(image.Rect(8, 8, 12, 12))},
			},
			bits: 4,
		},
		{
			name:        "star",
			elements:    []Element{{Op: stencil.OpIntersect, Shape: star}},
			bits:        4,
			wantScissor: star.Bounds(),
			wantStencil: true,
		},
		{
			name:     "star without stencil",
			elements: []Element{{Op: stencil.OpIntersect, Shape: star}},
			wantErr:  ErrNoStencil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStack(device)
			for _, e := range tt.elements {
				mustPush(t, s, e)
			}
			var tgt Target
			bt := newTarget(t, 4)
			tgt = bt
			if tt.bits == 0 {
				tgt = &noStencilTarget{*bt}
			}
			m := NewManager()
			st, err := m.Setup(s, tgt)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Setup = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Setup: %v", err)
			}
			if st.Scissor != tt.wantScissor || st.Stencil != tt.wantStencil {
				t.Errorf("Setup = %v stencil=%v, want %v stencil=%v",
					st.Scissor, st.Stencil, tt.wantScissor, tt.wantStencil)
			}
			wantRenders := 0
			if tt.wantStencil {
				wantRenders = 1
				checkClip(t, s, bt, st.Plan)
			}
			if _, err := m.Setup(s, tgt); err != nil {
				t.Fatal(err)
			}
			if m.Renders != wantRenders {
				t.Errorf("Renders = %d after two setups, want %d", m.Renders, wantRenders)
			}
		})
	}
}

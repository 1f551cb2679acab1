// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package clip

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/drawstate/stencil"
)

func TestManagerSkipsUnchangedClip(t *testing.T) {
	s := NewStack(device)
	mustPush(t, s, Element{Op: stencil.OpIntersect, Shape: star})
	tgt := newTarget(t, 4)
	m := NewManager()

	steps := []struct {
		name   string
		mutate func()
		drawn  bool
	}{
		{"first", func() {}, true},
		{"unchanged", func() {}, false},
		{"push", func() { mustPush(t, s, Element{Op: stencil.OpDifference, Shape: Rect(image.Rect(6, 6, 10, 10))}) }, true},
		{"unchanged after push", func() {}, false},
		{"pop", s.Pop, true},
		{"invalidate", m.Invalidate, true},
	}
	renders := 0
	for _, st := range steps {
		st.mutate()
		plan, drawn, err := m.Apply(s, tgt)
		if err != nil {
			t.Fatalf("%s: %v", st.name, err)
		}
		if drawn != st.drawn {
			t.Errorf("%s: drawn = %v, want %v", st.name, drawn, st.drawn)
		}
		if drawn {
			renders++
		}
		checkClip(t, s, tgt, plan)
	}
	if m.Renders != renders {
		t.Errorf("Renders = %d, want %d", m.Renders, renders)
	}
}

func TestManagerOffset(t *testing.T) {
	s := NewStack(image.Rect(0, 0, 8, 8))
	mustPush(t, s, Element{Op: stencil.OpIntersect, Shape: Polygon{{1, 1}, {7, 1}, {4, 7}}})
	tgt := newTarget(t, 4)
	m := NewManager()
	off := image.Pt(5, 3)

	if _, drawn, err := m.ApplyOffset(s, tgt, off); err != nil || !drawn {
		t.Fatalf("ApplyOffset = %v, %v", drawn, err)
	}
	buf := tgt.Buffer()
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got, want := buf.InClip(x+off.X, y+off.Y), s.Contains(x, y); got != want {
				t.Fatalf("clip at (%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
	if !m.MustRender(s.GenID(), s.Bounds(), image.Point{}) {
		t.Error("a different offset must re-render")
	}
	if _, drawn, _ := m.ApplyOffset(s, tgt, off); drawn {
		t.Error("same offset re-rendered")
	}
}

type noStencilTarget struct{ BufferTarget }

func (noStencilTarget) StencilBits() int { return 0 }

func TestManagerNoStencil(t *testing.T) {
	tgt := &noStencilTarget{*newTarget(t, 4)}
	if _, _, err := NewManager().Apply(NewStack(device), tgt); !errors.Is(err, ErrNoStencil) {
		t.Errorf("Apply = %v, want ErrNoStencil", err)
	}
}

func TestExecuteCountsCalls(t *testing.T) {
	plan, err := Compile([]Element{
		{Op: stencil.OpReplace, Shape: Rect(image.Rect(1, 1, 5, 5))},
		{Op: stencil.OpUnion, Shape: square},
	}, device, AllIn, 4)
	if err != nil {
		t.Fatal(err)
	}
	tgt := newTarget(t, 4)
	Execute(plan, tgt)
	if tgt.Clears != 1 || tgt.Draws != len(plan.Passes) {
		t.Errorf("Clears = %d, Draws = %d; want 1, %d", tgt.Clears, tgt.Draws, len(plan.Passes))
	}
}

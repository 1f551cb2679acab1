// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package clip

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/drawstate/stencil"
)

var device = image.Rect(0, 0, 16, 16)

func TestNewStack(t *testing.T) {
	s := NewStack(device)
	if s.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0", s.Depth())
	}
	if s.GenID() != WideOpenGenID || !s.IsWideOpen() {
		t.Errorf("GenID() = %d, want wide open", s.GenID())
	}
	if s.Bounds() != device {
		t.Errorf("Bounds() = %v, want %v", s.Bounds(), device)
	}
	if !s.Contains(0, 0) || s.Contains(16, 0) {
		t.Error("wide open stack must contain exactly the device")
	}
}

func TestStackGenIDs(t *testing.T) {
	s := NewStack(device)
	if err := s.PushRect(image.Rect(0, 0, 8, 8), stencil.OpIntersect); err != nil {
		t.Fatal(err)
	}
	first := s.GenID()
	if err := s.PushRect(image.Rect(4, 4, 12, 12), stencil.OpUnion); err != nil {
		t.Fatal(err)
	}
	second := s.GenID()
	if first == second || first == WideOpenGenID {
		t.Fatalf("gen IDs not unique: %d, %d", first, second)
	}

	s.Pop()
	if s.GenID() != first {
		t.Errorf("GenID() after Pop = %d, want %d", s.GenID(), first)
	}
	s.Pop()
	s.Pop() // no-op on empty stack
	if s.GenID() != WideOpenGenID || s.Depth() != 0 {
		t.Errorf("GenID() = %d, Depth() = %d after popping everything", s.GenID(), s.Depth())
	}

	other := NewStack(device)
	other.PushRect(image.Rect(0, 0, 8, 8), stencil.OpIntersect)
	if other.GenID() == first {
		t.Error("gen IDs repeat across stacks")
	}
}

func TestStackBounds(t *testing.T) {
	a := image.Rect(2, 2, 8, 8)
	b := image.Rect(6, 6, 12, 12)
	tests := []struct {
		name     string
		op       stencil.SetOp
		inverted bool
		want     image.Rectangle
	}{
		{"replace", stencil.OpReplace, false, b},
		{"replace inverted", stencil.OpReplace, true, device},
		{"intersect", stencil.OpIntersect, false, image.Rect(6, 6, 8, 8)},
		{"intersect inverted", stencil.OpIntersect, true, a},
		{"union", stencil.OpUnion, false, image.Rect(2, 2, 12, 12)},
		{"xor", stencil.OpXor, false, image.Rect(2, 2, 12, 12)},
		{"xor inverted", stencil.OpXor, true, device},
		{"difference", stencil.OpDifference, false, a},
		{"reverse difference", stencil.OpReverseDifference, false, b},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStack(device)
			mustPush(t, s, Element{Op: stencil.OpIntersect, Shape: Rect(a)})
			mustPush(t, s, Element{Op: tt.op, Shape: Rect(b), Inverted: tt.inverted})
			if got := s.Bounds(); got != tt.want {
				t.Errorf("Bounds() = %v, want %v", got, tt.want)
			}
			assertConservative(t, s)
		})
	}
}

func TestStackBoundsClampToDevice(t *testing.T) {
	s := NewStack(device)
	mustPush(t, s, Element{Op: stencil.OpReplace, Shape: Rect(image.Rect(-10, -10, 40, 4))})
	if got := s.Bounds(); got != image.Rect(0, 0, 16, 4) {
		t.Errorf("Bounds() = %v", got)
	}
}

func TestStackPushRejects(t *testing.T) {
	s := NewStack(device)
	if err := s.Push(Element{Op: stencil.OpUnion}); !errors.Is(err, ErrNilShape) {
		t.Errorf("Push(nil shape) = %v, want ErrNilShape", err)
	}
	if err := s.Push(Element{Op: stencil.SetOp(42), Shape: square}); !errors.Is(err, stencil.ErrUnknownSetOp) {
		t.Errorf("Push(bad op) = %v, want ErrUnknownSetOp", err)
	}
	if s.Depth() != 0 {
		t.Error("rejected elements were pushed")
	}
}

func TestStackContains(t *testing.T) {
	s := NewStack(device)
	mustPush(t, s, Element{Op: stencil.OpReplace, Shape: star, Fill: stencil.EvenOdd})
	if s.Contains(8, 8) {
		t.Error("even-odd star contains its center")
	}
	if !s.Contains(8, 3) {
		t.Error("even-odd star misses its tip")
	}
	s.Pop()
	mustPush(t, s, Element{Op: stencil.OpReplace, Shape: star, Fill: stencil.NonZero})
	if !s.Contains(8, 8) {
		t.Error("non-zero star misses its center")
	}
}

func TestStackReset(t *testing.T) {
	s := NewStack(device)
	mustPush(t, s, Element{Op: stencil.OpIntersect, Shape: square})
	s.Reset(image.Rect(0, 0, 4, 4))
	if s.Depth() != 0 || s.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Errorf("after Reset: Depth() = %d, Bounds() = %v", s.Depth(), s.Bounds())
	}
}

func mustPush(t *testing.T, s *Stack, e Element) {
	t.Helper()
	if err := s.Push(e); err != nil {
		t.Fatalf("Push: %v", err)
	}
}

// assertConservative checks that the clip is empty outside Bounds.
func assertConservative(t *testing.T, s *Stack) {
	t.Helper()
	b := s.Bounds()
	for y := -1; y <= device.Max.Y; y++ {
		for x := -1; x <= device.Max.X; x++ {
			if s.Contains(x, y) && !image.Pt(x, y).In(b) {
				t.Fatalf("pixel (%d, %d) in clip but outside bounds %v", x, y, b)
			}
		}
	}
}

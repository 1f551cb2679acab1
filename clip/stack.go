// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package clip

import (
	"image"
	"sync/atomic"

	"github.com/gogpu/drawstate/stencil"
)

// WideOpenGenID is the generation ID of a stack without elements.
const WideOpenGenID uint32 = 1

// genIDs hands out generation IDs shared by every Stack, so equal IDs mean
// equal clips even across stacks.
var genIDs atomic.Uint32

func init() {
	genIDs.Store(WideOpenGenID)
}

func nextGenID() uint32 {
	for {
		id := genIDs.Add(1)
		if id > WideOpenGenID {
			return id
		}
	}
}

// Stack manages clip elements with push/pop operations. Each push gets a
// fresh generation ID; popping restores the ID of the element below.
type Stack struct {
	entries []stackEntry
	device  image.Rectangle
	initial InitialState
}

type stackEntry struct {
	elem   Element
	genID  uint32
	bounds image.Rectangle // conservative bounds after this element
}

// NewStack creates an empty stack that is wide open within device.
func NewStack(device image.Rectangle) *Stack {
	return &Stack{
		entries: make([]stackEntry, 0, 8),
		device:  device,
		initial: AllIn,
	}
}

// Push appends an element.
func (s *Stack) Push(e Element) error {
	if err := e.validate(); err != nil {
		return err
	}
	s.entries = append(s.entries, stackEntry{
		elem:   e,
		genID:  nextGenID(),
		bounds: s.nextBounds(&e),
	})
	return nil
}

// PushRect appends a rectangle combined with op.
func (s *Stack) PushRect(r image.Rectangle, op stencil.SetOp) error {
	return s.Push(Element{Op: op, Shape: Rect(r)})
}

// Pop removes the most recent element. Popping an empty stack is a no-op.
func (s *Stack) Pop() {
	if len(s.entries) == 0 {
		return
	}
	s.entries = s.entries[:len(s.entries)-1]
}

// Reset removes every element and sets new device bounds.
func (s *Stack) Reset(device image.Rectangle) {
	s.entries = s.entries[:0]
	s.device = device
}

// Depth returns the number of elements.
func (s *Stack) Depth() int { return len(s.entries) }

// GenID identifies the current clip.
func (s *Stack) GenID() uint32 {
	if len(s.entries) == 0 {
		return WideOpenGenID
	}
	return s.entries[len(s.entries)-1].genID
}

// IsWideOpen reports whether the stack clips nothing within the device.
func (s *Stack) IsWideOpen() bool { return len(s.entries) == 0 }

// DeviceBounds returns the device rectangle.
func (s *Stack) DeviceBounds() image.Rectangle { return s.device }

// InitialState returns the clip state before the first element.
func (s *Stack) InitialState() InitialState { return s.initial }

// Elements returns a copy of the elements, oldest first.
func (s *Stack) Elements() []Element {
	out := make([]Element, len(s.entries))
	for i := range s.entries {
		out[i] = s.entries[i].elem
	}
	return out
}

// Bounds returns a conservative rectangle outside which the clip is
// empty. It is always within the device bounds.
func (s *Stack) Bounds() image.Rectangle {
	if len(s.entries) == 0 {
		return s.device
	}
	return s.entries[len(s.entries)-1].bounds
}

func (s *Stack) nextBounds(e *Element) image.Rectangle {
	b := s.Bounds()
	shape := s.device
	if !e.Inverted {
		shape = e.Shape.Bounds().Intersect(s.device)
	}
	return combineBounds(e.Op, b, shape).Intersect(s.device)
}

// Contains evaluates the clip at pixel (x, y) directly from the elements.
func (s *Stack) Contains(x, y int) bool {
	if !image.Pt(x, y).In(s.device) {
		return false
	}
	in := s.initial == AllIn
	for i := range s.entries {
		e := &s.entries[i].elem
		in = e.Op.Eval(in, e.Contains(x, y))
	}
	return in
}

// combineBounds returns conservative bounds of op applied to a clip within
// clip and an element within shape.
func combineBounds(op stencil.SetOp, clip, shape image.Rectangle) image.Rectangle {
	switch op {
	case stencil.OpReplace, stencil.OpReverseDifference:
		return shape
	case stencil.OpIntersect:
		return clip.Intersect(shape)
	case stencil.OpUnion, stencil.OpXor:
		return clip.Union(shape)
	}
	return clip
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package clip

import (
	"github.com/gogpu/drawstate/stencil"
)

// InitialState is the clip before the first element is applied.
type InitialState uint8

const (
	AllOut InitialState = iota
	AllIn
)

func (s InitialState) String() string {
	if s == AllIn {
		return "AllIn"
	}
	return "AllOut"
}

// Element is one entry of a clip stack.
type Element struct {
	Op    stencil.SetOp
	Shape Shape
	Fill  stencil.FillRule

	// Inverted selects the outside of the shape.
	Inverted bool

	// AA requests multisampled rasterization of the element on
	// multisampled targets.
	AA bool
}

// Contains reports whether pixel (x, y) is inside the element, honoring
// the fill rule and inversion.
func (e *Element) Contains(x, y int) bool {
	n := e.Shape.Winding(x, y)
	in := n != 0
	if e.Fill == stencil.EvenOdd {
		in = n%2 != 0
	}
	return in != e.Inverted
}

func (e *Element) validate() error {
	if e.Shape == nil {
		return ErrNilShape
	}
	if !e.Op.Valid() {
		return stencil.ErrUnknownSetOp
	}
	return nil
}

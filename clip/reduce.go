// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package clip

import (
	"image"

	"github.com/gogpu/drawstate/stencil"
)

// Reduced is a clip stack simplified for one query rectangle. Inside
// Bounds it selects the same pixels as the stack it came from; outside
// Bounds nothing is in the clip.
type Reduced struct {
	Elements []Element
	Bounds   image.Rectangle
	Initial  InitialState
}

// Empty reports whether the clip excludes every pixel.
func (r *Reduced) Empty() bool { return r.Bounds.Empty() }

// ScissorOnly reports whether the clip is exactly Bounds, so a scissor
// alone enforces it.
func (r *Reduced) ScissorOnly() bool { return !r.Empty() && len(r.Elements) == 0 }

// coverage classifies an element against the query rectangle.
type coverage uint8

const (
	coversSome coverage = iota
	coversNone
	coversAll
)

func elementCoverage(e *Element, bounds image.Rectangle) coverage {
	c := coversSome
	if !e.Shape.Bounds().Overlaps(bounds) {
		c = coversNone
	} else if r, ok := rectOf(e.Shape); ok && bounds.In(r) {
		c = coversAll
	}
	if e.Inverted {
		switch c {
		case coversNone:
			c = coversAll
		case coversAll:
			c = coversNone
		}
	}
	return c
}

// rectOf returns the rectangle s fills exactly, if it is one.
func rectOf(s Shape) (image.Rectangle, bool) {
	switch s := s.(type) {
	case Rect:
		return s.Bounds(), true
	case translated:
		r, ok := rectOf(s.Shape)
		return r.Add(s.d), ok
	}
	return image.Rectangle{}, false
}

// Reduce simplifies elements over initial for the query rectangle bounds.
// Elements that cannot change any pixel in bounds are dropped, an element
// that decides every pixel in bounds replaces everything below it, and
// rectangles that only narrow the clip are folded into the bounds.
//
// A result without elements needs no stencil: it is either empty or the
// rectangle Bounds.
func Reduce(elements []Element, bounds image.Rectangle, initial InitialState) (Reduced, error) {
	for i := range elements {
		if err := elements[i].validate(); err != nil {
			return Reduced{}, err
		}
	}
	return reduce(elements, bounds, initial), nil
}

func reduce(elements []Element, bounds image.Rectangle, initial InitialState) Reduced {
	r := Reduced{Bounds: bounds, Initial: initial}
	if bounds.Empty() {
		return Reduced{}
	}

	// Walk down from the top, collecting the elements that matter until
	// one decides the result by itself.
	var kept []Element
scan:
	for i := len(elements) - 1; i >= 0; i-- {
		e := elements[i]
		c := elementCoverage(&e, bounds)
		switch e.Op {
		case stencil.OpReplace:
			switch c {
			case coversNone:
				r.Initial = AllOut
			case coversAll:
				r.Initial = AllIn
			default:
				kept = append(kept, e)
				r.Initial = AllOut
			}
			break scan
		case stencil.OpIntersect:
			if c == coversNone {
				r.Initial = AllOut
				break scan
			}
			if c == coversAll {
				continue
			}
		case stencil.OpUnion:
			if c == coversAll {
				r.Initial = AllIn
				break scan
			}
			if c == coversNone {
				continue
			}
		case stencil.OpXor:
			if c == coversNone {
				continue
			}
		case stencil.OpDifference:
			if c == coversAll {
				r.Initial = AllOut
				break scan
			}
			if c == coversNone {
				continue
			}
		case stencil.OpReverseDifference:
			if c == coversNone {
				r.Initial = AllOut
				break scan
			}
		}
		kept = append(kept, e)
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}

	// Settle the leading elements against the uniform initial state.
	for len(kept) > 0 {
		e := &kept[0]
		switch {
		case r.Initial == AllOut && (e.Op == stencil.OpIntersect || e.Op == stencil.OpDifference):
			kept = kept[1:]
			continue
		case r.Initial == AllIn && e.Op == stencil.OpUnion:
			kept = kept[1:]
			continue
		case r.Initial == AllIn && e.Op == stencil.OpReverseDifference:
			kept, r.Initial = kept[1:], AllOut
			continue
		case r.Initial == AllOut && (e.Op == stencil.OpUnion || e.Op == stencil.OpXor || e.Op == stencil.OpReverseDifference),
			r.Initial == AllIn && e.Op == stencil.OpIntersect:
			// The result is the element itself.
			e.Op, r.Initial = stencil.OpReplace, AllOut
		}
		break
	}

	// A leading rectangle that later elements only cut into is a scissor.
	if len(kept) > 0 && kept[0].Op == stencil.OpReplace && !kept[0].Inverted && onlyRemoves(kept[1:]) {
		if rect, ok := rectOf(kept[0].Shape); ok {
			return reduce(kept[1:], bounds.Intersect(rect), AllIn)
		}
	}

	if len(kept) == 0 && r.Initial == AllOut {
		return Reduced{}
	}
	r.Elements = kept
	return r
}

// onlyRemoves reports whether every element can only take pixels out of
// the clip.
func onlyRemoves(elements []Element) bool {
	for i := range elements {
		if op := elements[i].Op; op != stencil.OpIntersect && op != stencil.OpDifference {
			return false
		}
	}
	return true
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package clip

import "image"

// Shape is clip geometry in stencil space. Pixels are sampled at their
// centers.
type Shape interface {
	// Bounds returns a rectangle holding every pixel with non-zero winding.
	Bounds() image.Rectangle

	// Simple reports whether every pixel of the shape is covered exactly
	// once with positive winding, so the shape can be drawn straight into
	// the clip bit.
	Simple() bool

	// Winding returns the signed winding number at the center of pixel
	// (x, y).
	Winding(x, y int) int
}

// Rect is an axis-aligned rectangle.
type Rect image.Rectangle

func (r Rect) Bounds() image.Rectangle { return image.Rectangle(r).Canon() }
func (r Rect) Simple() bool            { return true }

func (r Rect) Winding(x, y int) int {
	if image.Pt(x, y).In(r.Bounds()) {
		return 1
	}
	return 0
}

// Polygon is a closed polygon with integer vertices. It may self-intersect;
// clockwise loops in y-down space wind positively.
type Polygon []image.Point

func (p Polygon) Bounds() image.Rectangle {
	if len(p) == 0 {
		return image.Rectangle{}
	}
	b := image.Rectangle{Min: p[0], Max: p[0]}
	for _, v := range p[1:] {
		b.Min.X, b.Min.Y = min(b.Min.X, v.X), min(b.Min.Y, v.Y)
		b.Max.X, b.Max.Y = max(b.Max.X, v.X), max(b.Max.Y, v.Y)
	}
	return b
}

// Simple is false: a polygon is always stenciled through the user bits.
func (p Polygon) Simple() bool { return false }

// Winding counts signed crossings of a ray from the pixel center towards
// +x. Coordinates are doubled so the center is integral.
func (p Polygon) Winding(x, y int) int {
	px, py := 2*x+1, 2*y+1
	n := 0
	for i := range p {
		a, b := p[i], p[(i+1)%len(p)]
		ax, ay, bx, by := 2*a.X, 2*a.Y, 2*b.X, 2*b.Y
		switch {
		case ay <= py && by > py:
			if cross(ax, ay, bx, by, px, py) > 0 {
				n++
			}
		case ay > py && by <= py:
			if cross(ax, ay, bx, by, px, py) < 0 {
				n--
			}
		}
	}
	return n
}

// cross returns the z component of (b-a) × (p-a).
func cross(ax, ay, bx, by, px, py int) int {
	return (bx-ax)*(py-ay) - (px-ax)*(by-ay)
}

type translated struct {
	Shape
	d image.Point
}

func (t translated) Bounds() image.Rectangle { return t.Shape.Bounds().Add(t.d) }

func (t translated) Winding(x, y int) int { return t.Shape.Winding(x-t.d.X, y-t.d.Y) }

// Translate returns s moved by d.
func Translate(s Shape, d image.Point) Shape {
	if d == (image.Point{}) {
		return s
	}
	if t, ok := s.(translated); ok {
		return translated{t.Shape, t.d.Add(d)}
	}
	return translated{s, d}
}

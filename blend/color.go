// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package blend

// Color is a premultiplied RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Common colors.
var (
	Transparent = Color{}
	White       = Color{R: 1, G: 1, B: 1, A: 1}
	Black       = Color{A: 1}
)

// Gray returns a color with all four channels set to v.
// Coverage values are carried this way.
func Gray(v float32) Color {
	return Color{R: v, G: v, B: v, A: v}
}

// Mul returns the component-wise product of c and o.
func (c Color) Mul(o Color) Color {
	return Color{R: c.R * o.R, G: c.G * o.G, B: c.B * o.B, A: c.A * o.A}
}

// Add returns the component-wise sum of c and o.
func (c Color) Add(o Color) Color {
	return Color{R: c.R + o.R, G: c.G + o.G, B: c.B + o.B, A: c.A + o.A}
}

// Scale returns c with every component multiplied by s.
func (c Color) Scale(s float32) Color {
	return Color{R: c.R * s, G: c.G * s, B: c.B * s, A: c.A * s}
}

// Lerp interpolates between c (t=0) and o (t=1).
func (c Color) Lerp(o Color, t float32) Color {
	return c.Scale(1 - t).Add(o.Scale(t))
}

// Clamp limits every component to [0, 1].
func (c Color) Clamp() Color {
	return Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B), A: clamp01(c.A)}
}

// IsOpaque reports whether alpha is exactly one.
func (c Color) IsOpaque() bool {
	return c.A == 1
}

// Alpha returns the color with every channel set to c's alpha.
func (c Color) Alpha() Color {
	return Gray(c.A)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package clip

import (
	"image"

	"github.com/gogpu/drawstate/stencil"
)

// BufferTarget renders clips into a software stencil buffer.
type BufferTarget struct {
	buf *stencil.Buffer

	// Clears and Draws count the calls made by plans.
	Clears, Draws int
}

// NewBufferTarget wraps buf.
func NewBufferTarget(buf *stencil.Buffer) *BufferTarget {
	return &BufferTarget{buf: buf}
}

// Buffer returns the underlying buffer.
func (t *BufferTarget) Buffer() *stencil.Buffer { return t.buf }

func (t *BufferTarget) Bounds() image.Rectangle { return t.buf.Bounds() }

func (t *BufferTarget) StencilBits() int { return t.buf.Bits() }

// ClearStencilClip clears every bit inside r, leaving only the clip bit
// set when inside is true.
func (t *BufferTarget) ClearStencilClip(r image.Rectangle, inside bool) {
	t.Clears++
	var v uint16
	if inside {
		v = stencil.ClipBit(t.buf.Bits())
	}
	t.buf.Clear(r, 0xffff, v)
}

// DrawStencil rasterizes shape at pixel centers. A pixel with winding n
// receives |n| fragments of the face matching the sign of n. Antialiasing
// is ignored.
func (t *BufferTarget) DrawStencil(shape Shape, scissor image.Rectangle, s *stencil.Settings, _ bool) {
	t.Draws++
	r := shape.Bounds().Intersect(scissor).Intersect(t.buf.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			n := shape.Winding(x, y)
			face := stencil.Front
			if n < 0 {
				face, n = stencil.Back, -n
			}
			for ; n > 0; n-- {
				t.buf.Fragment(s, face, x, y)
			}
		}
	}
}

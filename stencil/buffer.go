// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package stencil

import "image"

// Buffer is a software stencil buffer. It executes Settings exactly the way
// the GPU stencil stage does and serves as the reference target for clip
// compositing.
type Buffer struct {
	width, height int
	bits          int
	max           uint16
	values        []uint16
}

// NewBuffer allocates a zeroed buffer.
func NewBuffer(width, height, bits int) (*Buffer, error) {
	if err := CheckBits(bits); err != nil {
		return nil, err
	}
	return &Buffer{
		width:  width,
		height: height,
		bits:   bits,
		max:    uint16(uint32(1)<<bits - 1),
		values: make([]uint16, width*height),
	}, nil
}

// Bounds returns the buffer rectangle.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// Bits returns the depth of the buffer.
func (b *Buffer) Bits() int { return b.bits }

// At returns the value at (x, y). Out of range reads return zero.
func (b *Buffer) At(x, y int) uint16 {
	if !image.Pt(x, y).In(b.Bounds()) {
		return 0
	}
	return b.values[y*b.width+x]
}

// Set stores v at (x, y), truncated to the buffer depth.
func (b *Buffer) Set(x, y int, v uint16) {
	if !image.Pt(x, y).In(b.Bounds()) {
		return
	}
	b.values[y*b.width+x] = v & b.max
}

// InClip reports whether the clip bit is set at (x, y).
func (b *Buffer) InClip(x, y int) bool {
	return b.At(x, y)&ClipBit(b.bits) != 0
}

// Clear writes value through mask for every pixel of r clipped to the
// buffer, like a scissored stencil clear.
func (b *Buffer) Clear(r image.Rectangle, mask, value uint16) {
	r = r.Intersect(b.Bounds())
	mask &= b.max
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := b.values[y*b.width : (y+1)*b.width]
		for x := r.Min.X; x < r.Max.X; x++ {
			row[x] = row[x]&^mask | value&mask
		}
	}
}

// Fragment runs the stencil stage for one fragment of the given face.
// Clip functions must have been resolved with AdjustForClip; unresolved ones
// fail the test.
func (b *Buffer) Fragment(s *Settings, face Face, x, y int) {
	if !image.Pt(x, y).In(b.Bounds()) {
		return
	}
	i := y*b.width + x
	f := s.faces[face]
	v := b.values[i]
	op := f.FailOp
	if f.Func.Test(f.Ref&f.Mask, v&f.Mask) {
		op = f.PassOp
	}
	nv := b.apply(op, v, f.Ref)
	wm := f.WriteMask & b.max
	b.values[i] = v&^wm | nv&wm
}

// Passes reports whether a fragment at (x, y) passes the stencil test of
// the front face, without modifying the buffer.
func (b *Buffer) Passes(s *Settings, x, y int) bool {
	f := s.faces[Front]
	return f.Func.Test(f.Ref&f.Mask, b.At(x, y)&f.Mask)
}

func (b *Buffer) apply(op Op, v, ref uint16) uint16 {
	switch op {
	case Replace:
		return ref & b.max
	case IncWrap:
		if v == b.max {
			return 0
		}
		return v + 1
	case IncClamp:
		if v == b.max {
			return v
		}
		return v + 1
	case DecWrap:
		if v == 0 {
			return b.max
		}
		return v - 1
	case DecClamp:
		if v == 0 {
			return 0
		}
		return v - 1
	case Zero:
		return 0
	case Invert:
		return ^v & b.max
	}
	return v
}

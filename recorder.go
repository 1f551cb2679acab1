// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package drawstate

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/drawstate/blend"
	"github.com/gogpu/drawstate/clip"
	"github.com/gogpu/drawstate/draw"
	"github.com/gogpu/drawstate/stencil"
)

// Recorder is a software Backend. It renders clips into a stencil buffer
// and rasterizes draw geometry into a coverage mask, honoring each
// submission's stencil test and scissor. Shading is not evaluated.
//
// Geometry passed to Draw must be a clip.Shape.
type Recorder struct {
	*clip.BufferTarget

	mask *image.Alpha
	// Submissions records a summary of every draw in order.
	Submissions []Record
}

// Record summarizes one submission.
type Record struct {
	Descriptor uint32 // descriptor checksum
	Stencil    stencil.Settings
	Scissor    image.Rectangle
	Scissored  bool
	// BlendConstant is the constant the draw would set on the pass.
	BlendConstant blend.Color
	Pixels        int // pixels that passed the stencil test
}

// NewRecorder creates a width x height recorder with a stencil buffer of
// the given depth.
func NewRecorder(width, height, stencilBits int) (*Recorder, error) {
	buf, err := stencil.NewBuffer(width, height, stencilBits)
	if err != nil {
		return nil, fmt.Errorf("drawstate: recorder: %w", err)
	}
	return &Recorder{
		BufferTarget: clip.NewBufferTarget(buf),
		mask:         image.NewAlpha(buf.Bounds()),
	}, nil
}

// Mask returns the pixels covered by draws so far.
func (r *Recorder) Mask() *image.Alpha { return r.mask }

// ClipMask returns the pixels whose clip bit is set.
func (r *Recorder) ClipMask() *image.Alpha {
	buf := r.Buffer()
	m := image.NewAlpha(buf.Bounds())
	b := buf.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if buf.InClip(x, y) {
				m.SetAlpha(x, y, color.Alpha{A: 0xff})
			}
		}
	}
	return m
}

// Reset clears the coverage mask and the recorded submissions.
func (r *Recorder) Reset() {
	clear(r.mask.Pix)
	r.Submissions = r.Submissions[:0]
}

// IssueDraw implements Backend.
func (r *Recorder) IssueDraw(sub *Submission) error {
	shape, ok := sub.Geometry.(clip.Shape)
	if !ok {
		return fmt.Errorf("drawstate: recorder: geometry %T is not a clip.Shape", sub.Geometry)
	}
	buf := r.Buffer()
	area := shape.Bounds().Intersect(buf.Bounds())
	if sub.Scissored {
		area = area.Intersect(sub.Scissor)
	}
	st := sub.Stencil
	test := !st.IsDisabled()
	write := test && st.DoesWrite()
	colorWrites := sub.State.Flags()&draw.FlagNoColorWrites == 0

	rec := Record{
		Descriptor: sub.State.Descriptor().Checksum(),
		Stencil:    st,
		Scissor:    sub.Scissor,
		Scissored:  sub.Scissored,

		BlendConstant: sub.BlendConstant,
	}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			n := shape.Winding(x, y)
			if n == 0 {
				continue
			}
			face := stencil.Front
			if n < 0 {
				face = stencil.Back
			}
			pass := !test || buf.Passes(&st, x, y)
			if write {
				buf.Fragment(&st, face, x, y)
			}
			if !pass {
				continue
			}
			rec.Pixels++
			if colorWrites {
				r.mask.SetAlpha(x, y, color.Alpha{A: 0xff})
			}
		}
	}
	r.Submissions = append(r.Submissions, rec)
	return nil
}

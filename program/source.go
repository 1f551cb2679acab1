// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package program

import (
	"fmt"

	"github.com/gogpu/drawstate/draw"
)

// Entry points of every synthesized program.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// Source is a synthesized program, ready for a Compiler.
type Source struct {
	// Label names the program in driver debug output.
	Label string
	// WGSL holds both entry points.
	WGSL string
	// Descriptor is the key the source was generated for.
	Descriptor draw.Descriptor
	// Attribs is the vertex layout, in shader location order. Offsets are
	// those of the draw that built the program; pipelines take the layout
	// of each draw from draw.Compiled.VertexBufferLayout.
	Attribs []draw.VertexAttrib
	// ReadsDst reports whether binding 1 holds a destination texture.
	ReadsDst bool
	// DualSource reports whether the fragment shader writes a second
	// blend source.
	DualSource bool
}

// Synthesize generates the program source for c. Every stage effect must
// implement effect.Emitter, and its emitted text must depend only on its
// key, since sources are shared between states with equal descriptors.
func Synthesize(c *draw.Compiled) (*Source, error) {
	d := c.Descriptor()
	g := newGenerator(c)
	text, err := g.generate()
	if err != nil {
		return nil, err
	}
	return &Source{
		Label:      fmt.Sprintf("drawstate_%08x", d.Checksum()),
		WGSL:       text,
		Descriptor: *d,
		Attribs:    c.VertexAttribs(),
		ReadsDst:   d.ReadsDst(),
		DualSource: d.SecondaryOutput() != draw.SecondaryNone,
	}, nil
}

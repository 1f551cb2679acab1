// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package program

import (
	"golang.org/x/image/math/f64"

	"github.com/gogpu/drawstate/draw"
)

// Handle is a compiler-specific program object.
type Handle any

// Compiler builds and releases GPU programs.
type Compiler interface {
	// CompileAndLink builds a program from source.
	CompileAndLink(src *Source) (Handle, error)
	// DestroyProgram releases a program built by CompileAndLink.
	DestroyProgram(h Handle)
}

// Program is a cached, compiled program. It stays owned by the Cache that
// returned it and becomes invalid when the cache evicts, destroys or
// abandons it.
type Program struct {
	handle Handle
	source *Source
	valid  bool

	// view matrix last uploaded for this program
	lastView  f64.Mat3
	viewValid bool
}

// Handle returns the compiler's program object.
func (p *Program) Handle() Handle { return p.handle }

// Source returns the source the program was built from.
func (p *Program) Source() *Source { return p.source }

// Descriptor returns the key of the program.
func (p *Program) Descriptor() *draw.Descriptor { return &p.source.Descriptor }

// Valid reports whether the program may still be used.
func (p *Program) Valid() bool { return p.valid }

// Uniforms packs the uniform block for c, which must have this program's
// descriptor, and reports whether the view matrix differs from the one
// packed last time.
func (p *Program) Uniforms(c *draw.Compiled) (u Uniforms, viewChanged bool, err error) {
	if !p.valid {
		return u, false, ErrInvalidated
	}
	u.fill(c)
	m := c.ViewMatrix()
	viewChanged = !p.viewValid || p.lastView != m
	p.lastView, p.viewValid = m, true
	return u, viewChanged, nil
}

// InvalidateViewMatrix forgets the last view matrix, forcing the next
// Uniforms call to report a change.
func (p *Program) InvalidateViewMatrix() { p.viewValid = false }

func (p *Program) invalidate() {
	p.valid = false
	p.handle = nil
}

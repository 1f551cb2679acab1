// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package program

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/drawstate/blend"
	"github.com/gogpu/drawstate/draw"
	"github.com/gogpu/drawstate/effect"
)

// Uniform block layout, in bytes. Every field is a vec4<f32>.
const (
	uniformView     = 0
	uniformViewport = 48
	uniformColor    = 64
	uniformCoverage = 80
	uniformFilter   = 96
	uniformDst      = 112
	uniformParams   = 128
	uniformCoords   = uniformParams + 2*draw.MaxStages*16

	// UniformSize is the byte size of the uniform block at group 0,
	// binding 0.
	UniformSize = uniformCoords + 2*draw.MaxStages*16
)

// Uniforms is the uniform block of one draw.
type Uniforms [UniformSize]byte

func (u *Uniforms) putVec4(off int, x, y, z, w float32) {
	binary.LittleEndian.PutUint32(u[off:], math.Float32bits(x))
	binary.LittleEndian.PutUint32(u[off+4:], math.Float32bits(y))
	binary.LittleEndian.PutUint32(u[off+8:], math.Float32bits(z))
	binary.LittleEndian.PutUint32(u[off+12:], math.Float32bits(w))
}

func (u *Uniforms) putColor(off int, c blend.Color) {
	u.putVec4(off, c.R, c.G, c.B, c.A)
}

// Vec4 returns the four floats at byte offset off.
func (u *Uniforms) Vec4(off int) [4]float32 {
	var v [4]float32
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(u[off+4*i:]))
	}
	return v
}

// fill packs every uniform c needs. The dst origin is left zero; the
// backend sets it when it binds a destination copy.
func (u *Uniforms) fill(c *draw.Compiled) {
	m := c.ViewMatrix()
	for r := 0; r < 3; r++ {
		u.putVec4(uniformView+16*r, float32(m[3*r]), float32(m[3*r+1]), float32(m[3*r+2]), 0)
	}
	w, h := 1, 1
	if rt := c.RenderTarget(); rt != nil && rt.Width > 0 && rt.Height > 0 {
		w, h = rt.Width, rt.Height
	}
	u.putVec4(uniformViewport, 2/float32(w), -2/float32(h), float32(w), float32(h))
	u.putColor(uniformColor, c.Color())
	cov := c.Coverage()
	u.putVec4(uniformCoverage, cov, cov, cov, cov)
	fc, _ := c.ColorFilter()
	u.putColor(uniformFilter, fc)

	idx := 0
	put := func(st draw.Stage) {
		p := effect.Params(st.Effect)
		u.putColor(uniformParams+32*idx, p[0])
		u.putColor(uniformParams+32*idx+16, p[1])
		a := st.CoordChange
		u.putVec4(uniformCoords+32*idx, float32(a[0]), float32(a[1]), float32(a[2]), 0)
		u.putVec4(uniformCoords+32*idx+16, float32(a[3]), float32(a[4]), float32(a[5]), 0)
		idx++
	}
	for i := 0; i < c.NumColorStages(); i++ {
		put(c.ColorStage(i))
	}
	for i := 0; i < c.NumCoverageStages(); i++ {
		put(c.CoverageStage(i))
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package clip

import (
	"image"

	"github.com/gogpu/drawstate/stencil"
)

// Target is a stencil buffer that clip plans can be rendered into.
type Target interface {
	// Bounds returns the target rectangle in stencil space.
	Bounds() image.Rectangle

	// StencilBits returns the stencil depth, or zero without a stencil
	// buffer.
	StencilBits() int

	// ClearStencilClip writes the clip bit inside r to inside and zeroes the
	// user bits there.
	ClearStencilClip(r image.Rectangle, inside bool)

	// DrawStencil draws shape scissored to scissor with the given stencil
	// settings and no color writes.
	DrawStencil(shape Shape, scissor image.Rectangle, s *stencil.Settings, aa bool)
}

// lastClip identifies the clip a target holds.
type lastClip struct {
	genID  uint32
	bounds image.Rectangle
	offset image.Point
	valid  bool
}

// Manager renders clip stacks into one target and skips the work when
// the target already holds the requested clip.
type Manager struct {
	last lastClip
	plan *Plan

	setupKey lastClip
	setup    Setup

	// Renders counts plans executed.
	Renders int
}

// Setup is how a draw enforces a clip.
type Setup struct {
	// Scissor bounds the clip. Draws must be scissored to it.
	Scissor image.Rectangle
	// Stencil reports whether the draw must also test the clip bit.
	Stencil bool
	// Plan is the plan held by the target when Stencil is set.
	Plan *Plan
}

// Empty reports whether the clip excludes every pixel.
func (s *Setup) Empty() bool { return s.Scissor.Empty() }

// NewManager creates a manager that assumes nothing about the target.
func NewManager() *Manager {
	return &Manager{}
}

// MustRender reports whether the target holds a different clip than the one
// identified by genID, bounds and offset.
func (m *Manager) MustRender(genID uint32, bounds image.Rectangle, offset image.Point) bool {
	return !m.last.valid || m.last.genID != genID || m.last.bounds != bounds || m.last.offset != offset
}

// Invalidate forgets the last clip, for example after the stencil buffer
// was cleared or the context lost.
func (m *Manager) Invalidate() {
	m.last = lastClip{}
	m.plan = nil
	m.setupKey = lastClip{}
	m.setup = Setup{}
}

// Setup decides how a draw is clipped by s. See SetupOffset.
func (m *Manager) Setup(s *Stack, t Target) (Setup, error) {
	return m.SetupOffset(s, t, image.Point{})
}

// SetupOffset decides how a draw is clipped by s in a space offset from
// stencil space. Clips that reduce to a rectangle are enforced by the
// scissor alone and leave the stencil untouched; the rest are rendered as
// by ApplyOffset. A target without stencil only fails for the latter.
func (m *Manager) SetupOffset(s *Stack, t Target, offset image.Point) (Setup, error) {
	bounds := s.Bounds().Add(offset).Intersect(t.Bounds())
	key := lastClip{genID: s.GenID(), bounds: bounds, offset: offset, valid: true}
	if m.setupKey == key && (!m.setup.Stencil || !m.MustRender(key.genID, bounds, offset)) {
		return m.setup, nil
	}

	red, err := m.reduce(s, bounds, offset)
	if err != nil {
		return Setup{}, err
	}
	var st Setup
	switch {
	case red.Empty():
	case red.ScissorOnly():
		st.Scissor = red.Bounds
		slogger().Debug("clip: scissor only", "genID", key.genID, "bounds", red.Bounds)
	default:
		if t.StencilBits() == 0 {
			return Setup{}, ErrNoStencil
		}
		plan := m.plan
		if m.MustRender(key.genID, bounds, offset) || plan == nil {
			if plan, err = m.render(key.genID, bounds, offset, &red, t); err != nil {
				return Setup{}, err
			}
		}
		st = Setup{Scissor: plan.Bounds, Stencil: !plan.Empty(), Plan: plan}
	}
	m.setupKey, m.setup = key, st
	return st, nil
}

func (m *Manager) reduce(s *Stack, bounds image.Rectangle, offset image.Point) (Reduced, error) {
	elements := s.Elements()
	for i := range elements {
		elements[i].Shape = Translate(elements[i].Shape, offset)
	}
	return Reduce(elements, bounds, s.InitialState())
}

// Apply makes t hold the clip of s and returns the plan that produced it.
// The bool result reports whether anything was drawn.
func (m *Manager) Apply(s *Stack, t Target) (*Plan, bool, error) {
	return m.ApplyOffset(s, t, image.Point{})
}

// ApplyOffset is Apply for a stack in a space offset from stencil space.
func (m *Manager) ApplyOffset(s *Stack, t Target, offset image.Point) (*Plan, bool, error) {
	bits := t.StencilBits()
	if bits == 0 {
		return nil, false, ErrNoStencil
	}
	bounds := s.Bounds().Add(offset).Intersect(t.Bounds())
	genID := s.GenID()
	if !m.MustRender(genID, bounds, offset) && m.plan != nil {
		slogger().Debug("clip: reused", "genID", genID, "bounds", bounds)
		return m.plan, false, nil
	}

	red, err := m.reduce(s, bounds, offset)
	if err != nil {
		m.Invalidate()
		return nil, false, err
	}
	plan, err := m.render(genID, bounds, offset, &red, t)
	if err != nil {
		return nil, false, err
	}
	return plan, true, nil
}

// render compiles red and executes it on t, which must have a stencil.
func (m *Manager) render(genID uint32, bounds image.Rectangle, offset image.Point, red *Reduced, t Target) (*Plan, error) {
	plan, err := Compile(red.Elements, red.Bounds, red.Initial, t.StencilBits())
	if err != nil {
		m.Invalidate()
		return nil, err
	}
	Execute(plan, t)
	m.last = lastClip{genID: genID, bounds: bounds, offset: offset, valid: true}
	m.plan = plan
	m.Renders++
	slogger().Debug("clip: rendered",
		"genID", genID, "bounds", bounds, "passes", len(plan.Passes), "skipped", plan.Skipped)
	return plan, nil
}

// Execute runs plan on t: the scissored clear, then every pass in order.
func Execute(plan *Plan, t Target) {
	if plan.Empty() {
		return
	}
	t.ClearStencilClip(plan.Bounds, plan.Initial == AllIn)
	for i := range plan.Passes {
		ps := &plan.Passes[i]
		t.DrawStencil(ps.Shape, plan.Bounds, &ps.Stencil, ps.AA)
	}
}

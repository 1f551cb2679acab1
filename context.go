// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package drawstate

import (
	"fmt"
	"image"

	"github.com/gogpu/drawstate/blend"
	"github.com/gogpu/drawstate/clip"
	"github.com/gogpu/drawstate/draw"
	"github.com/gogpu/drawstate/program"
	"github.com/gogpu/drawstate/stencil"
)

// Backend executes draws. It is also the stencil target clips are rendered
// into.
type Backend interface {
	clip.Target

	// IssueDraw submits one draw. The submission is only valid for the
	// duration of the call.
	IssueDraw(sub *Submission) error
}

// Submission is everything a backend needs for one draw.
type Submission struct {
	// State is the optimized draw state.
	State *draw.Compiled
	// Program renders State.
	Program *program.Program
	// Stencil is the per-draw stencil state with the clip folded in.
	Stencil stencil.Settings
	// Scissor confines the draw when Scissored is set.
	Scissor   image.Rectangle
	Scissored bool
	// BlendConstant is the constant to set on the pass when the state
	// reads it, with constant-alpha factors already splatted.
	BlendConstant blend.Color
	// Uniforms is the packed uniform block for Program.
	Uniforms program.Uniforms
	// ViewChanged reports whether the view matrix differs from the last
	// draw with Program.
	ViewChanged bool
	// Geometry is passed through from Draw.
	Geometry any
}

// Stats are cumulative Context counters.
type Stats struct {
	Draws        uint64 // submitted to the backend
	Skipped      uint64 // optimized away
	ClippedOut   uint64 // dropped because the clip is empty
	ClipRenders  int    // clip plans executed into the stencil buffer
	ProgramStats program.Stats
}

// Context compiles draw states into backend submissions. It owns the
// program cache and the clip stack.
//
// Context is not safe for concurrent use.
type Context struct {
	backend     Backend
	caps        draw.Capabilities
	cache       *program.Cache
	compiler    program.Compiler
	clips       *clip.Manager
	stack       *clip.Stack
	stencilBits int

	draws, skipped, clippedOut uint64
}

// New creates a Context that submits to backend.
func New(backend Backend, opts ...Option) (*Context, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.caps == nil {
		o.caps = draw.NewCaps(false, false)
	}
	if o.compiler == nil {
		o.compiler = program.SPIRVCompiler{}
	}
	if o.stencilBits < 0 {
		o.stencilBits = backend.StencilBits()
	}
	if o.stencilBits != 0 {
		if err := stencil.CheckBits(o.stencilBits); err != nil {
			return nil, fmt.Errorf("drawstate: %w", err)
		}
		if o.stencilBits != backend.StencilBits() {
			return nil, fmt.Errorf("drawstate: %w: %d, backend has %d",
				stencil.ErrInvalidStencilBits, o.stencilBits, backend.StencilBits())
		}
	}

	cache, err := program.NewCache(o.compiler,
		program.WithCapacity(o.cacheCapacity),
		program.WithHashBits(o.hashBits))
	if err != nil {
		return nil, err
	}

	c := &Context{
		backend:     backend,
		caps:        o.caps,
		cache:       cache,
		compiler:    o.compiler,
		clips:       clip.NewManager(),
		stack:       clip.NewStack(backend.Bounds()),
		stencilBits: o.stencilBits,
	}
	Logger().Info("drawstate: context created",
		"bounds", backend.Bounds(), "stencilBits", c.stencilBits, "capacity", cache.Capacity())
	return c, nil
}

// Caps returns the capabilities draws are optimized for.
func (c *Context) Caps() draw.Capabilities { return c.caps }

// Cache returns the program cache.
func (c *Context) Cache() *program.Cache { return c.cache }

// Compiler returns the program compiler.
func (c *Context) Compiler() program.Compiler { return c.compiler }

// StencilBits returns the stencil depth clips are rendered with.
func (c *Context) StencilBits() int { return c.stencilBits }

// ClipStack returns the current clip stack. Changes to it take effect on
// the next clipped draw.
func (c *Context) ClipStack() *clip.Stack { return c.stack }

// SetClip replaces the clip stack. A nil stack restores a wide-open one.
func (c *Context) SetClip(s *clip.Stack) {
	if s == nil {
		s = clip.NewStack(c.backend.Bounds())
	}
	c.stack = s
}

// ApplyClip renders the current clip into the backend's stencil buffer if
// it is not already there, and returns its plan.
func (c *Context) ApplyClip() (*clip.Plan, error) {
	if c.stencilBits == 0 {
		return nil, clip.ErrNoStencil
	}
	plan, _, err := c.clips.Apply(c.stack, c.backend)
	return plan, err
}

// clipTarget is the backend as seen by the clip manager.
func (c *Context) clipTarget() clip.Target {
	if c.stencilBits == 0 {
		return stencilless{c.backend}
	}
	return c.backend
}

// stencilless hides the stencil buffer of a Context created without one.
type stencilless struct{ Backend }

func (stencilless) StencilBits() int { return 0 }

// Draw optimizes s and submits it with geometry. It reports whether the
// draw reached the backend: a draw that cannot change any pixel, or that is
// clipped away entirely, is dropped without error.
func (c *Context) Draw(s *draw.State, geometry any) (bool, error) {
	if s == nil {
		return false, ErrNilState
	}
	dc := draw.Optimize(s, c.caps)
	if dc == nil {
		c.skipped++
		Logger().Debug("drawstate: draw skipped")
		return false, nil
	}

	sub := Submission{State: dc, Stencil: dc.Stencil(), Geometry: geometry}
	mode := stencil.IgnoreClip
	if dc.Flags()&draw.FlagClip != 0 && !c.stack.IsWideOpen() {
		cs, err := c.clips.Setup(c.stack, c.clipTarget())
		if err != nil {
			return false, err
		}
		if cs.Empty() {
			c.clippedOut++
			Logger().Debug("drawstate: draw clipped out", "genID", c.stack.GenID())
			return false, nil
		}
		if cs.Stencil {
			mode = stencil.RespectClip
		}
		sub.Scissor, sub.Scissored = cs.Scissor, true
	}
	if dc.ReadsConstant() {
		k, ok := dc.GPUBlendConstant()
		if !ok {
			return false, fmt.Errorf("drawstate: %w", blend.ErrConstantConflict)
		}
		sub.BlendConstant = k
	}
	if c.stencilBits > 0 {
		if mode == stencil.RespectClip && sub.Stencil.IsDisabled() {
			sub.Stencil = stencil.New(stencil.Keep, stencil.Keep, stencil.AlwaysIfInClip, 0, 0, 0)
		}
		if !sub.Stencil.IsDisabled() {
			sub.Stencil.AdjustForClip(mode, c.stencilBits, true)
		}
	}

	p, err := c.cache.Program(dc)
	if err != nil {
		return false, err
	}
	sub.Program = p
	if sub.Uniforms, sub.ViewChanged, err = p.Uniforms(dc); err != nil {
		return false, err
	}
	if err := c.backend.IssueDraw(&sub); err != nil {
		return false, fmt.Errorf("drawstate: issue draw: %w", err)
	}
	c.draws++
	return true, nil
}

// Stats returns the cumulative counters.
func (c *Context) Stats() Stats {
	return Stats{
		Draws:        c.draws,
		Skipped:      c.skipped,
		ClippedOut:   c.clippedOut,
		ClipRenders:  c.clips.Renders,
		ProgramStats: c.cache.Stats(),
	}
}

// Abandon drops every GPU object without releasing it, for use after the
// device is lost. Held programs become invalid. The Context stays usable
// and rebuilds what it needs on the next draw.
func (c *Context) Abandon() {
	c.cache.Abandon()
	c.clips.Invalidate()
	Logger().Info("drawstate: context abandoned")
}

// Destroy releases every program. The Context stays usable.
func (c *Context) Destroy() {
	c.cache.Destroy()
	c.clips.Invalidate()
}

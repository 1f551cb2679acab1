// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package drawstate

import (
	"errors"
	"testing"

	"github.com/gogpu/drawstate/draw"
	"github.com/gogpu/drawstate/program"
	"github.com/gogpu/drawstate/stencil"
)

// mockCompiler is a test compiler for DI testing.
type mockCompiler struct {
	compiled  int
	destroyed int
}

func (m *mockCompiler) CompileAndLink(src *program.Source) (program.Handle, error) {
	m.compiled++
	return m.compiled, nil
}

func (m *mockCompiler) DestroyProgram(program.Handle) { m.destroyed++ }

func TestNewDefaults(t *testing.T) {
	ctx, rec := newTestContext(t)

	if got := ctx.Cache().Capacity(); got != program.DefaultCapacity {
		t.Errorf("Capacity() = %d, want %d", got, program.DefaultCapacity)
	}
	if _, ok := ctx.Compiler().(program.SPIRVCompiler); !ok {
		t.Errorf("Compiler() = %T, want program.SPIRVCompiler", ctx.Compiler())
	}
	if got := ctx.StencilBits(); got != rec.StencilBits() {
		t.Errorf("StencilBits() = %d, want %d", got, rec.StencilBits())
	}
	caps := ctx.Caps()
	if caps.SupportsDualSourceBlending() || caps.SupportsDestinationRead() {
		t.Error("default caps claim optional features")
	}
	if !ctx.ClipStack().IsWideOpen() {
		t.Error("default clip stack is not wide open")
	}
}

func TestWithCompiler(t *testing.T) {
	mock := &mockCompiler{}
	ctx, _ := newTestContext(t, WithCompiler(mock))

	mustDraw(t, ctx, testState(), fullScreen)
	mustDraw(t, ctx, testState(), fullScreen)
	if mock.compiled != 1 {
		t.Errorf("compiled = %d, want 1", mock.compiled)
	}
	ctx.Destroy()
	if mock.destroyed != 1 {
		t.Errorf("destroyed = %d, want 1", mock.destroyed)
	}
}

func TestWithCacheCapacity(t *testing.T) {
	ctx, _ := newTestContext(t, WithCacheCapacity(4), WithHashBits(2))
	if got := ctx.Cache().Capacity(); got != 4 {
		t.Errorf("Capacity() = %d, want 4", got)
	}
}

func TestWithCaps(t *testing.T) {
	caps := draw.NewCaps(true, true)
	ctx, _ := newTestContext(t, WithCaps(caps))
	if ctx.Caps().ID() != caps.ID() {
		t.Errorf("Caps().ID() = %d, want %d", ctx.Caps().ID(), caps.ID())
	}
}

func TestWithStencilBits(t *testing.T) {
	ctx, _ := newTestContext(t, WithStencilBits(0))
	if got := ctx.StencilBits(); got != 0 {
		t.Errorf("StencilBits() = %d, want 0", got)
	}

	rec, err := NewRecorder(4, 4, 8)
	if err != nil {
		t.Fatalf("NewRecorder() = %v", err)
	}
	if _, err := New(rec, WithStencilBits(4)); !errors.Is(err, stencil.ErrInvalidStencilBits) {
		t.Errorf("New(WithStencilBits(4)) error = %v, want ErrInvalidStencilBits", err)
	}
}

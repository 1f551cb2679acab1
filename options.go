// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package drawstate

import (
	"github.com/gogpu/drawstate/draw"
	"github.com/gogpu/drawstate/program"
)

// Option configures a Context during creation.
//
// Example:
//
//	ctx, err := drawstate.New(backend,
//	    drawstate.WithCacheCapacity(64),
//	    drawstate.WithCaps(draw.NewCaps(true, false)))
type Option func(*options)

// options holds optional configuration for Context creation.
type options struct {
	cacheCapacity int
	hashBits      uint
	caps          draw.Capabilities
	compiler      program.Compiler
	stencilBits   int // negative: ask the backend
}

// defaultOptions returns the default context options.
func defaultOptions() options {
	return options{
		cacheCapacity: program.DefaultCapacity,
		hashBits:      program.DefaultHashBits,
		caps:          nil, // NewCaps(false, false) if nil
		compiler:      nil, // program.SPIRVCompiler if nil
		stencilBits:   -1,
	}
}

// WithCacheCapacity sets how many programs the cache keeps before evicting
// the least recently used one.
func WithCacheCapacity(n int) Option {
	return func(o *options) {
		o.cacheCapacity = n
	}
}

// WithHashBits sets the size of the program hash table to 1<<bits.
func WithHashBits(bits uint) Option {
	return func(o *options) {
		o.hashBits = bits
	}
}

// WithCaps sets the GPU capabilities the optimizer may rely on.
func WithCaps(c draw.Capabilities) Option {
	return func(o *options) {
		o.caps = c
	}
}

// WithCompiler sets the program compiler. Use this for dependency
// injection of GPU or custom compilers.
//
// Example:
//
//	hc, _ := program.NewHALCompiler(device)
//	ctx, _ := drawstate.New(backend, drawstate.WithCompiler(hc))
func WithCompiler(c program.Compiler) Option {
	return func(o *options) {
		o.compiler = c
	}
}

// WithStencilBits sets the stencil depth clips are rendered with. Zero
// disables stencil clipping; any other value must match the backend.
func WithStencilBits(bits int) Option {
	return func(o *options) {
		o.stencilBits = bits
	}
}

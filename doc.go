// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package drawstate turns high-level draw states into GPU submissions.
//
// # Overview
//
// A draw is described by a [draw.State]: render target, view matrix, vertex
// layout, color and coverage effect stages, blending, stencil and flags.
// Before submission the state is optimized for the GPU's capabilities,
// which may drop stages that cannot affect the result, fold coverage into
// the blend function or skip the draw entirely. The optimized state names a
// shader program through a fixed-size descriptor, and programs are compiled
// once and kept in an LRU cache. Clip stacks of rectangles and paths are
// compiled into stencil passes and rendered only when the clip changes.
//
// # Quick Start
//
//	rec, _ := drawstate.NewRecorder(256, 256, 8)
//	ctx, _ := drawstate.New(rec)
//
//	ctx.ClipStack().PushRect(image.Rect(16, 16, 240, 240), stencil.OpIntersect)
//
//	s := draw.NewState(&draw.RenderTarget{Width: 256, Height: 256, StencilBits: 8})
//	s.SetColor(blend.Color{R: 1, A: 1})
//	s.EnableFlags(draw.FlagClip)
//	ctx.Draw(s, clip.Rect(image.Rect(0, 0, 256, 256)))
//
// # Packages
//
//   - blend: blend coefficients, modes and the coefficient optimizer
//   - effect: shader effect stages and their keys
//   - stencil: stencil settings, clip-aware adjustment and a software buffer
//   - draw: draw state, optimizer, compiled state and program descriptor
//   - program: WGSL synthesis, compilers and the program cache
//   - clip: clip stacks and the stencil clip compiler
//
// # GPU Integration
//
// [NewFromProvider] accepts a host [DeviceHandle] and compiles programs
// on its HAL device. Without a device, programs are compiled to SPIR-V
// only, which is enough for software backends such as [Recorder].
//
// # Logging
//
// drawstate is silent by default. See [SetLogger].
package drawstate

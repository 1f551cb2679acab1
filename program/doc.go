// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package program turns compiled draw states into GPU programs and caches
// them.
//
// A Cache maps a draw.Descriptor to a Program. Lookups first probe a small
// hash table indexed by the descriptor checksum, then binary-search the
// entries, which are kept sorted by descriptor bytes. On a full miss the
// cache synthesizes WGSL for the descriptor, hands it to a Compiler and,
// when it is full, evicts the least recently used entry.
//
// HALCompiler compiles through naga and a wgpu hal.Device. Tests and
// software backends supply their own Compiler.
//
// A Cache is owned by one goroutine.
package program

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package clip renders clip stacks into the stencil buffer.
//
// A Stack is a list of elements, each a shape combined with the clip so far
// by a boolean set operation. Compile turns the elements into a Plan: a
// scissored clear of the clip bit followed by stencil passes from
// stencil.ClipPasses. Passes use the top stencil bit for the clip and the
// bits below it as scratch, and leave the scratch bits zero inside the clip
// bounds.
//
// A Manager remembers the last clip it rendered into a Target and skips
// the work when the stack, bounds and offset are unchanged. BufferTarget
// executes plans on a software stencil.Buffer.
package clip

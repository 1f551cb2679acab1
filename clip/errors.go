// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package clip

import "errors"

var (
	// ErrNoStencil is returned when the target has no stencil buffer.
	ErrNoStencil = errors.New("clip: target has no stencil buffer")

	// ErrNilShape is returned for an element without geometry.
	ErrNilShape = errors.New("clip: element has no shape")
)

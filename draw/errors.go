// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package draw

import "errors"

var (
	// ErrInvalidLayout is returned when a vertex layout breaks an attribute
	// invariant (count, position, binding type or overlap).
	ErrInvalidLayout = errors.New("draw: invalid vertex layout")

	// ErrTooManyStages is returned when a stage would exceed MaxStages.
	ErrTooManyStages = errors.New("draw: too many stages")

	// ErrNilEffect is returned when a stage has no effect.
	ErrNilEffect = errors.New("draw: stage effect is nil")
)

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package stencil

import "errors"

var (
	// ErrInvalidStencilBits is returned when a buffer has too few bits to
	// hold a clip bit and at least one user bit, or more bits than a
	// stencil value can carry.
	ErrInvalidStencilBits = errors.New("stencil: stencil bit count must be between 2 and 16")

	// ErrUnknownSetOp is returned for a set operation outside the defined range.
	ErrUnknownSetOp = errors.New("stencil: unknown clip set operation")
)

// MaxBits is the widest stencil value supported.
const MaxBits = 16

// ClipBit returns the reserved clip bit for a buffer with the given depth.
func ClipBit(bits int) uint16 {
	return 1 << (bits - 1)
}

// UserBits returns the mask of the bits below the clip bit.
func UserBits(bits int) uint16 {
	return ClipBit(bits) - 1
}

// CheckBits validates a stencil depth for clip use.
func CheckBits(bits int) error {
	if bits < 2 || bits > MaxBits {
		return ErrInvalidStencilBits
	}
	return nil
}

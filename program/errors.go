// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package program

import "errors"

var (
	// ErrBuildFailed wraps every shader compile or link failure. Nothing is
	// cached for the failing descriptor and the draw is dropped.
	ErrBuildFailed = errors.New("program: build failed")

	// ErrNilDevice is returned when a HAL compiler is created without a
	// device.
	ErrNilDevice = errors.New("program: device is nil")

	// ErrNilCompiler is returned when a cache is created without a compiler.
	ErrNilCompiler = errors.New("program: compiler is nil")

	// ErrInvalidated is returned by Program methods after the owning cache
	// evicted, destroyed or abandoned it.
	ErrInvalidated = errors.New("program: program is no longer valid")

	// ErrUnknownLanguage is returned by Translate for an unsupported target.
	ErrUnknownLanguage = errors.New("program: unknown shading language")
)

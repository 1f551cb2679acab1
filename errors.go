// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package drawstate

import "errors"

var (
	// ErrNilBackend is returned when a Context is created without a backend.
	ErrNilBackend = errors.New("drawstate: backend is nil")

	// ErrNilProvider is returned when NewFromProvider gets a nil provider.
	ErrNilProvider = errors.New("drawstate: nil DeviceProvider")

	// ErrNoHALDevice is returned when a provider does not expose a
	// hal.Device through HalDevice.
	ErrNoHALDevice = errors.New("drawstate: provider does not expose a HAL device")

	// ErrNilState is returned by Draw for a nil state.
	ErrNilState = errors.New("drawstate: draw state is nil")
)

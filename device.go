// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package drawstate

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/drawstate/program"
)

// DeviceHandle provides GPU device access from the host application.
//
// Key principle: drawstate RECEIVES the device from the host, it does NOT
// create one. DeviceHandle is an alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider

// halProvider is implemented by providers that expose the wgpu HAL device.
type halProvider interface {
	HalDevice() any
}

// NewFromProvider creates a Context whose programs are compiled on the
// host's device. The provider must implement HalDevice() any returning a
// hal.Device. A WithCompiler option is ignored.
func NewFromProvider(provider DeviceHandle, backend Backend, opts ...Option) (*Context, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALDevice
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, ErrNoHALDevice
	}
	hc, err := program.NewHALCompiler(device, program.WithColorFormat(provider.SurfaceFormat()))
	if err != nil {
		return nil, err
	}
	Logger().Debug("drawstate: using host device", "adapter", provider.AdapterInfo().Name)
	return New(backend, append(opts, WithCompiler(hc))...)
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package drawstate

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/drawstate/draw"
	"github.com/gogpu/drawstate/program"
)

// mockDevice implements gpucontext.Device for testing.
type mockDevice struct{}

func (m *mockDevice) Poll(wait bool) {}
func (m *mockDevice) Destroy()       {}

// mockQueue implements gpucontext.Queue for testing.
type mockQueue struct{}

// mockAdapter implements gpucontext.Adapter for testing.
type mockAdapter struct{}

// mockProvider implements gpucontext.DeviceProvider for testing.
type mockProvider struct {
	device gpucontext.Device
	format gputypes.TextureFormat
}

var (
	_ gpucontext.DeviceProvider = (*mockProvider)(nil)
	_ gpucontext.DeviceProvider = (*halMockProvider)(nil)
)

func newMockProvider() *mockProvider {
	return &mockProvider{device: &mockDevice{}, format: gputypes.TextureFormatBGRA8Unorm}
}

func (m *mockProvider) Device() gpucontext.Device             { return m.device }
func (m *mockProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return m.format }
func (m *mockProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "mock"}
}

// halMockProvider also exposes a HAL device.
type halMockProvider struct {
	*mockProvider
	hal any
}

func (m *halMockProvider) HalDevice() any { return m.hal }

func createNoopDevice(t *testing.T) hal.Device {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device
}

func TestNewFromProviderErrors(t *testing.T) {
	rec, err := NewRecorder(8, 8, 8)
	if err != nil {
		t.Fatalf("NewRecorder() = %v", err)
	}
	tests := []struct {
		name     string
		provider DeviceHandle
		want     error
	}{
		{"nil", nil, ErrNilProvider},
		{"no HalDevice", newMockProvider(), ErrNoHALDevice},
		{"wrong type", &halMockProvider{newMockProvider(), "device"}, ErrNoHALDevice},
		{"nil device", &halMockProvider{newMockProvider(), nil}, ErrNoHALDevice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFromProvider(tt.provider, rec); !errors.Is(err, tt.want) {
				t.Errorf("NewFromProvider() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewFromProviderCompilesOnDevice(t *testing.T) {
	device := createNoopDevice(t)
	rec, err := NewRecorder(testSize, testSize, 8)
	if err != nil {
		t.Fatalf("NewRecorder() = %v", err)
	}
	ctx, err := NewFromProvider(&halMockProvider{newMockProvider(), device}, rec)
	if err != nil {
		t.Fatalf("NewFromProvider() = %v", err)
	}
	defer ctx.Destroy()

	hc, ok := ctx.Compiler().(*program.HALCompiler)
	if !ok {
		t.Fatalf("Compiler() = %T, want *program.HALCompiler", ctx.Compiler())
	}

	var programs []*program.Program
	ctx.backend = &captureBackend{Recorder: rec, programs: &programs}
	s := testState()
	mustDraw(t, ctx, s, fullScreen)

	pipeline, _, err := hc.Pipeline(programs[0], draw.Optimize(s, ctx.Caps()))
	if err != nil {
		t.Fatalf("Pipeline() = %v", err)
	}
	if pipeline == nil {
		t.Error("Pipeline() returned nil")
	}
}

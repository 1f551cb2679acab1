// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package draw

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestValidateLayout(t *testing.T) {
	pos := VertexAttrib{Type: Float2, Offset: 0, Binding: BindingPosition}
	tests := []struct {
		name    string
		attribs []VertexAttrib
		ok      bool
	}{
		{"default", DefaultLayout, true},
		{"empty", nil, false},
		{"no position", []VertexAttrib{{Type: Float4, Binding: BindingColor}}, false},
		{"color and coverage", []VertexAttrib{
			pos,
			{Type: UByte4, Offset: 8, Binding: BindingColor},
			{Type: Float1, Offset: 12, Binding: BindingCoverage},
		}, true},
		{"position twice", []VertexAttrib{pos, {Type: Float2, Offset: 8, Binding: BindingPosition}}, false},
		{"two effect attribs", []VertexAttrib{
			pos,
			{Type: Float4, Offset: 8, Binding: BindingEffect},
			{Type: Float2, Offset: 24, Binding: BindingEffect},
		}, true},
		{"overlap", []VertexAttrib{pos, {Type: Float4, Offset: 4, Binding: BindingColor}}, false},
		{"float1 position", []VertexAttrib{{Type: Float1, Binding: BindingPosition}}, false},
		{"float2 edge", []VertexAttrib{pos, {Type: Float2, Offset: 8, Binding: BindingEdge}}, false},
		{"negative offset", []VertexAttrib{{Type: Float2, Offset: -8, Binding: BindingPosition}}, false},
		{"too many", make([]VertexAttrib, MaxVertexAttribs+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLayout(tt.attribs)
			if tt.ok && err != nil {
				t.Fatalf("ValidateLayout() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidLayout) {
				t.Fatalf("ValidateLayout() = %v, want ErrInvalidLayout", err)
			}
		})
	}
}

func TestSetVertexAttribsRejectsBadLayout(t *testing.T) {
	s := NewState(nil)
	err := s.SetVertexAttribs([]VertexAttrib{{Type: Float4, Binding: BindingColor}})
	if !errors.Is(err, ErrInvalidLayout) {
		t.Fatalf("SetVertexAttribs() = %v, want ErrInvalidLayout", err)
	}
	if got := s.VertexAttribs(); len(got) != 1 || got[0] != DefaultLayout[0] {
		t.Errorf("layout changed after rejected update: %v", got)
	}
}

func TestVertexBufferLayout(t *testing.T) {
	attribs := []VertexAttrib{
		{Type: Float2, Offset: 0, Binding: BindingPosition},
		{Type: UByte4, Offset: 8, Binding: BindingColor},
		{Type: Float3, Offset: 12, Binding: BindingLocalCoord},
	}
	l := VertexBufferLayout(attribs)
	if l.ArrayStride != 24 {
		t.Errorf("ArrayStride = %d, want 24", l.ArrayStride)
	}
	want := []gputypes.VertexFormat{
		gputypes.VertexFormatFloat32x2,
		gputypes.VertexFormatUnorm8x4,
		gputypes.VertexFormatFloat32x3,
	}
	for i, a := range l.Attributes {
		if a.Format != want[i] {
			t.Errorf("attribute %d format = %v, want %v", i, a.Format, want[i])
		}
		if a.ShaderLocation != uint32(i) {
			t.Errorf("attribute %d location = %d", i, a.ShaderLocation)
		}
	}
}

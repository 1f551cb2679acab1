// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package draw

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// MaxVertexAttribs is the largest number of attributes one layout may have.
const MaxVertexAttribs = 8

// VertexAttribType is the wire type of one vertex attribute.
type VertexAttribType uint8

const (
	Float1 VertexAttribType = iota
	Float2
	Float3
	Float4
	UByte4 // four normalized bytes
)

// Size returns the byte size of the type.
func (t VertexAttribType) Size() int {
	switch t {
	case Float1:
		return 4
	case Float2:
		return 8
	case Float3:
		return 12
	case Float4:
		return 16
	case UByte4:
		return 4
	}
	return 0
}

// Format returns the WebGPU vertex format of the type.
func (t VertexAttribType) Format() gputypes.VertexFormat {
	switch t {
	case Float1:
		return gputypes.VertexFormatFloat32
	case Float3:
		return gputypes.VertexFormatFloat32x3
	case Float4:
		return gputypes.VertexFormatFloat32x4
	case UByte4:
		return gputypes.VertexFormatUnorm8x4
	default:
		return gputypes.VertexFormatFloat32x2
	}
}

// WGSLType returns the shader-side type the attribute is read as.
func (t VertexAttribType) WGSLType() string {
	switch t {
	case Float1:
		return "f32"
	case Float2:
		return "vec2<f32>"
	case Float3:
		return "vec3<f32>"
	default:
		return "vec4<f32>"
	}
}

func (t VertexAttribType) String() string {
	switch t {
	case Float1:
		return "Float1"
	case Float2:
		return "Float2"
	case Float3:
		return "Float3"
	case Float4:
		return "Float4"
	case UByte4:
		return "UByte4"
	}
	return fmt.Sprintf("VertexAttribType(%d)", uint8(t))
}

// Binding is the semantic an attribute feeds.
type Binding uint8

const (
	BindingPosition Binding = iota
	BindingLocalCoord
	BindingColor
	BindingCoverage
	BindingEdge
	// BindingEffect attributes are consumed by stage effects. A layout may
	// have several.
	BindingEffect

	fixedBindingCount = int(BindingEffect)
)

var bindingNames = [...]string{"Position", "LocalCoord", "Color", "Coverage", "Edge", "Effect"}

func (b Binding) String() string {
	if int(b) < len(bindingNames) {
		return bindingNames[b]
	}
	return fmt.Sprintf("Binding(%d)", uint8(b))
}

// VertexAttrib describes one attribute of an interleaved vertex.
type VertexAttrib struct {
	Type    VertexAttribType
	Offset  int
	Binding Binding
}

// end returns the first byte past the attribute.
func (a VertexAttrib) end() int { return a.Offset + a.Type.Size() }

// DefaultLayout is a single float2 position.
var DefaultLayout = []VertexAttrib{{Type: Float2, Offset: 0, Binding: BindingPosition}}

// ValidateLayout checks the attribute invariants: at most MaxVertexAttribs
// entries, exactly one position, at most one attribute per fixed binding,
// types that suit their binding and no overlapping byte ranges.
func ValidateLayout(attribs []VertexAttrib) error {
	if len(attribs) == 0 || len(attribs) > MaxVertexAttribs {
		return fmt.Errorf("%w: %d attributes", ErrInvalidLayout, len(attribs))
	}
	var seen [fixedBindingCount]bool
	for i, a := range attribs {
		if a.Type > UByte4 || a.Offset < 0 || a.Binding > BindingEffect {
			return fmt.Errorf("%w: attribute %d is malformed", ErrInvalidLayout, i)
		}
		if a.Binding < BindingEffect {
			if seen[a.Binding] {
				return fmt.Errorf("%w: %v bound twice", ErrInvalidLayout, a.Binding)
			}
			seen[a.Binding] = true
		}
		if err := checkType(a); err != nil {
			return err
		}
		for j := 0; j < i; j++ {
			b := attribs[j]
			if a.Offset < b.end() && b.Offset < a.end() {
				return fmt.Errorf("%w: attributes %d and %d overlap", ErrInvalidLayout, j, i)
			}
		}
	}
	if !seen[BindingPosition] {
		return fmt.Errorf("%w: no position attribute", ErrInvalidLayout)
	}
	return nil
}

func checkType(a VertexAttrib) error {
	ok := true
	switch a.Binding {
	case BindingPosition, BindingLocalCoord:
		ok = a.Type == Float2 || a.Type == Float3
	case BindingColor:
		ok = a.Type == Float4 || a.Type == UByte4
	case BindingCoverage:
		ok = a.Type == Float1 || a.Type == UByte4
	case BindingEdge:
		ok = a.Type == Float4
	}
	if !ok {
		return fmt.Errorf("%w: %v cannot bind %v", ErrInvalidLayout, a.Type, a.Binding)
	}
	return nil
}

// Stride returns the vertex size implied by the layout.
func Stride(attribs []VertexAttrib) int {
	n := 0
	for _, a := range attribs {
		n = max(n, a.end())
	}
	return n
}

// bindingTable maps each fixed binding to its index in attribs, or -1.
type bindingTable [fixedBindingCount]int8

func buildBindingTable(attribs []VertexAttrib) bindingTable {
	var t bindingTable
	for i := range t {
		t[i] = -1
	}
	for i, a := range attribs {
		if a.Binding < BindingEffect {
			t[a.Binding] = int8(i)
		}
	}
	return t
}

func (t *bindingTable) has(b Binding) bool { return t[b] >= 0 }

// VertexBufferLayout returns the WebGPU buffer layout of the attributes.
// Shader locations follow attribute order.
func VertexBufferLayout(attribs []VertexAttrib) gputypes.VertexBufferLayout {
	return vertexBufferLayout(attribs, Stride(attribs))
}

func vertexBufferLayout(attribs []VertexAttrib, stride int) gputypes.VertexBufferLayout {
	ga := make([]gputypes.VertexAttribute, len(attribs))
	for i, a := range attribs {
		ga[i] = gputypes.VertexAttribute{
			Format:         a.Type.Format(),
			Offset:         uint64(a.Offset),
			ShaderLocation: uint32(i),
		}
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: uint64(stride),
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  ga,
	}
}

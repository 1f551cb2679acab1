// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package stencil

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// CompareFunction converts a basic function to its WebGPU equivalent.
// Clip functions must be resolved first; they convert to Always.
func (f Func) CompareFunction() gputypes.CompareFunction {
	switch f {
	case Never:
		return gputypes.CompareFunctionNever
	case Greater:
		return gputypes.CompareFunctionGreater
	case GEqual:
		return gputypes.CompareFunctionGreaterEqual
	case Less:
		return gputypes.CompareFunctionLess
	case LEqual:
		return gputypes.CompareFunctionLessEqual
	case Equal:
		return gputypes.CompareFunctionEqual
	case NotEqual:
		return gputypes.CompareFunctionNotEqual
	default:
		return gputypes.CompareFunctionAlways
	}
}

// Operation converts the op to its WebGPU equivalent.
func (o Op) Operation() hal.StencilOperation {
	switch o {
	case Replace:
		return hal.StencilOperationReplace
	case IncWrap:
		return hal.StencilOperationIncrementWrap
	case IncClamp:
		return hal.StencilOperationIncrementClamp
	case DecWrap:
		return hal.StencilOperationDecrementWrap
	case DecClamp:
		return hal.StencilOperationDecrementClamp
	case Zero:
		return hal.StencilOperationZero
	case Invert:
		return hal.StencilOperationInvert
	default:
		return hal.StencilOperationKeep
	}
}

func (f FaceSettings) faceState() hal.StencilFaceState {
	return hal.StencilFaceState{
		Compare:     f.Func.CompareFunction(),
		FailOp:      f.FailOp.Operation(),
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      f.PassOp.Operation(),
	}
}

// DepthStencilState returns the pipeline stencil state and the dynamic
// reference value to set with the render pass.
//
// WebGPU has one compare mask, write mask and reference for both faces; the
// front face supplies them. Settings produced by this package only differ
// between faces in their ops.
func (s *Settings) DepthStencilState(format gputypes.TextureFormat) (*hal.DepthStencilState, uint32) {
	front := s.faces[Front]
	return &hal.DepthStencilState{
		Format:            format,
		DepthWriteEnabled: false,
		DepthCompare:      gputypes.CompareFunctionAlways,
		StencilFront:      front.faceState(),
		StencilBack:       s.faces[Back].faceState(),
		StencilReadMask:   uint32(front.Mask),
		StencilWriteMask:  uint32(front.WriteMask),
	}, uint32(front.Ref)
}

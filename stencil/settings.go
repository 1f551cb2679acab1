// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package stencil describes stencil test and write state, and compiles clip
// set operations into stencil passes that keep the clip in the highest bit
// of the stencil buffer.
//
// Semantics follow the GPU stencil test: a pixel passes when
// func(ref&mask, value&mask) holds, after which the pass or fail op computes
// a new value that is written through the write mask.
package stencil

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
)

// Op is a stencil update operation.
type Op uint8

const (
	Keep     Op = iota // leave the value unchanged
	Replace            // write the reference value
	IncWrap            // increment, wrapping at the maximum
	IncClamp           // increment, saturating at the maximum
	DecWrap            // decrement, wrapping at zero
	DecClamp           // decrement, saturating at zero
	Zero               // write zero
	Invert             // bitwise not
)

var opNames = [...]string{"Keep", "Replace", "IncWrap", "IncClamp", "DecWrap", "DecClamp", "Zero", "Invert"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Func is a stencil compare function. The basic functions compare the masked
// reference against the masked buffer value; the clip functions additionally
// test the clip bit and are resolved to basic functions by AdjustForClip.
type Func uint8

const (
	Always   Func = iota
	Never
	Greater  // ref > value
	GEqual   // ref >= value
	Less     // ref < value
	LEqual   // ref <= value
	Equal    // ref == value
	NotEqual // ref != value

	AlwaysIfInClip
	EqualIfInClip
	LessIfInClip
	LEqualIfInClip
	NonZeroIfInClip
)

const (
	basicFuncCount = int(AlwaysIfInClip)
	funcCount      = int(NonZeroIfInClip) + 1
)

var funcNames = [...]string{
	"Always", "Never", "Greater", "GEqual", "Less", "LEqual", "Equal", "NotEqual",
	"AlwaysIfInClip", "EqualIfInClip", "LessIfInClip", "LEqualIfInClip", "NonZeroIfInClip",
}

func (f Func) String() string {
	if int(f) < len(funcNames) {
		return funcNames[f]
	}
	return fmt.Sprintf("Func(%d)", uint8(f))
}

// IsClipFunc reports whether f depends on the clip bit.
func (f Func) IsClipFunc() bool {
	return int(f) >= basicFuncCount && int(f) < funcCount
}

// Test evaluates a basic compare function on already masked operands.
// Clip functions report false.
func (f Func) Test(ref, value uint16) bool {
	switch f {
	case Always:
		return true
	case Greater:
		return ref > value
	case GEqual:
		return ref >= value
	case Less:
		return ref < value
	case LEqual:
		return ref <= value
	case Equal:
		return ref == value
	case NotEqual:
		return ref != value
	}
	return false
}

// Face selects the front or back face settings.
type Face int

const (
	Front Face = iota
	Back
)

// FaceSettings is the stencil state applied to one face.
type FaceSettings struct {
	PassOp    Op
	FailOp    Op
	Func      Func
	Mask      uint16 // compare mask
	Ref       uint16 // compare reference
	WriteMask uint16
}

// memoized flag bits
const (
	flagDisabledKnown uint32 = 1 << iota
	flagDisabled
	flagWriteKnown
	flagWrites
)

// Settings holds front and back stencil state.
//
// The derived IsDisabled and DoesWrite answers are computed once and cached
// in an atomically accessed word, so a Settings value shared by several
// readers stays race free. Mutators reset the cache. Equal ignores it.
//
// The zero value is disabled.
type Settings struct {
	faces [2]FaceSettings
	flags uint32
}

// Disabled is the stencil state of draws that neither test nor write.
var Disabled = Settings{}

// New returns settings that apply the same state to both faces.
func New(pass, fail Op, fn Func, mask, ref, writeMask uint16) Settings {
	f := FaceSettings{PassOp: pass, FailOp: fail, Func: fn, Mask: mask, Ref: ref, WriteMask: writeMask}
	return Settings{faces: [2]FaceSettings{f, f}}
}

// NewTwoSided returns settings with distinct front and back state.
func NewTwoSided(front, back FaceSettings) Settings {
	return Settings{faces: [2]FaceSettings{front, back}}
}

// Face returns the state of one face.
func (s *Settings) Face(f Face) FaceSettings {
	return s.faces[f]
}

// SetFace replaces the state of one face.
func (s *Settings) SetFace(f Face, fs FaceSettings) {
	s.faces[f] = fs
	s.invalidate()
}

// SetBoth replaces the state of both faces.
func (s *Settings) SetBoth(fs FaceSettings) {
	s.faces = [2]FaceSettings{fs, fs}
	s.invalidate()
}

// CopyFrontToBack mirrors the front face onto the back face.
func (s *Settings) CopyFrontToBack() {
	s.faces[Back] = s.faces[Front]
	s.invalidate()
}

// IsTwoSided reports whether the faces differ.
func (s *Settings) IsTwoSided() bool {
	return s.faces[Front] != s.faces[Back]
}

// IsDisabled reports whether the settings neither test nor modify the
// buffer for either face.
func (s *Settings) IsDisabled() bool {
	flags := atomic.LoadUint32(&s.flags)
	if flags&flagDisabledKnown != 0 {
		return flags&flagDisabled != 0
	}
	disabled := true
	for _, f := range s.faces {
		if f.PassOp != Keep || f.FailOp != Keep || f.Func != Always {
			disabled = false
		}
	}
	bits := flagDisabledKnown
	if disabled {
		bits |= flagDisabled
	}
	s.memo(bits)
	return disabled
}

// DoesWrite reports whether any face can change a stencil value.
func (s *Settings) DoesWrite() bool {
	flags := atomic.LoadUint32(&s.flags)
	if flags&flagWriteKnown != 0 {
		return flags&flagWrites != 0
	}
	writes := false
	for _, f := range s.faces {
		if f.WriteMask == 0 {
			continue
		}
		passWrites := f.Func != Never && f.PassOp != Keep
		failWrites := f.Func != Always && f.FailOp != Keep
		if passWrites || failWrites {
			writes = true
		}
	}
	bits := flagWriteKnown
	if writes {
		bits |= flagWrites
	}
	s.memo(bits)
	return writes
}

// Equal compares the face state of two settings.
func (s *Settings) Equal(o *Settings) bool {
	return s.faces == o.faces
}

// Size is the length of the byte form returned by Bytes.
const Size = 20

// Bytes returns a fixed, zero-padded encoding suitable for hashing and
// byte comparison. Per face i: pass op [i], fail op [2+i], func [4+i],
// compare mask [8+2i:], ref [12+2i:], write mask [16+2i:], little endian.
// Bytes 6 and 7 are always zero.
func (s *Settings) Bytes() [Size]byte {
	var b [Size]byte
	for i, f := range s.faces {
		b[0+i] = byte(f.PassOp)
		b[2+i] = byte(f.FailOp)
		b[4+i] = byte(f.Func)
		binary.LittleEndian.PutUint16(b[8+2*i:], f.Mask)
		binary.LittleEndian.PutUint16(b[12+2*i:], f.Ref)
		binary.LittleEndian.PutUint16(b[16+2*i:], f.WriteMask)
	}
	return b
}

func (s *Settings) String() string {
	f := s.faces[Front]
	str := fmt.Sprintf("{%v pass=%v fail=%v ref=%#x mask=%#x write=%#x}",
		f.Func, f.PassOp, f.FailOp, f.Ref, f.Mask, f.WriteMask)
	if s.IsTwoSided() {
		b := s.faces[Back]
		str += fmt.Sprintf(" back{%v pass=%v fail=%v ref=%#x mask=%#x write=%#x}",
			b.Func, b.PassOp, b.FailOp, b.Ref, b.Mask, b.WriteMask)
	}
	return str
}

func (s *Settings) invalidate() {
	atomic.StoreUint32(&s.flags, 0)
}

func (s *Settings) memo(bits uint32) {
	for {
		old := atomic.LoadUint32(&s.flags)
		if atomic.CompareAndSwapUint32(&s.flags, old, old|bits) {
			return
		}
	}
}

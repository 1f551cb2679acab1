// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package stencil

// ClipMode says how a draw's stencil settings interact with the clip bit.
type ClipMode uint8

const (
	// IgnoreClip draws as if the clip were wide open. Clip functions
	// behave as their basic counterparts.
	IgnoreClip ClipMode = iota
	// RespectClip confines the draw to pixels whose clip bit is set.
	RespectClip
	// ModifyClip is used while compositing the clip itself; settings are
	// taken as they are.
	ModifyClip
)

func (m ClipMode) String() string {
	switch m {
	case IgnoreClip:
		return "IgnoreClip"
	case RespectClip:
		return "RespectClip"
	case ModifyClip:
		return "ModifyClip"
	}
	return "ClipMode(?)"
}

// specialToBasic maps clip functions to basic ones, indexed by whether the
// clip is respected.
var specialToBasic = [2][funcCount - basicFuncCount]Func{
	// clip ignored: every pixel counts as inside
	{
		Always,   // AlwaysIfInClip
		Equal,    // EqualIfInClip
		Less,     // LessIfInClip
		LEqual,   // LEqualIfInClip
		NotEqual, // NonZeroIfInClip: ref forced to 0
	},
	// clip respected: the clip bit joins the comparison
	{
		Equal,  // AlwaysIfInClip: value & clip == clip
		Equal,  // EqualIfInClip
		Less,   // LessIfInClip
		LEqual, // LEqualIfInClip
		Less,   // NonZeroIfInClip: clip < (value & (user|clip))
	},
}

// AdjustForClip rewrites client stencil settings so they coexist with the
// clip bit of a buffer with the given depth: client write masks and compare
// operands are confined to the user bits and clip functions are resolved to
// basic functions. With twoSided false the result has identical faces.
// ModifyClip leaves s unchanged.
func (s *Settings) AdjustForClip(mode ClipMode, bits int, twoSided bool) {
	if mode == ModifyClip {
		return
	}
	clipBit := ClipBit(bits)
	userBits := clipBit - 1
	respect := 0
	if mode == RespectClip {
		respect = 1
	}

	faces := 1
	if twoSided {
		faces = 2
	}
	for i := 0; i < faces; i++ {
		f := s.faces[i]
		f.WriteMask &= userBits
		if f.Func.IsClipFunc() {
			if respect == 1 {
				switch f.Func {
				case AlwaysIfInClip:
					f.Mask = clipBit
					f.Ref = clipBit
				case EqualIfInClip, LessIfInClip, LEqualIfInClip:
					f.Mask = f.Mask&userBits | clipBit
					f.Ref = f.Ref&userBits | clipBit
				case NonZeroIfInClip:
					f.Mask = f.Mask&userBits | clipBit
					f.Ref = clipBit
				}
			} else {
				f.Mask &= userBits
				f.Ref &= userBits
				if f.Func == NonZeroIfInClip {
					f.Ref = 0
				}
			}
			f.Func = specialToBasic[respect][int(f.Func)-basicFuncCount]
		} else {
			f.Mask &= userBits
			f.Ref &= userBits
		}
		s.faces[i] = f
	}
	if !twoSided {
		s.faces[Back] = s.faces[Front]
	}
	s.invalidate()
}

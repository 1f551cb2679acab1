// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package stencil

// SetOp is a boolean operation combining a clip element with the clip
// accumulated so far.
type SetOp uint8

const (
	OpReplace           SetOp = iota // element
	OpIntersect                      // clip ∧ element
	OpUnion                          // clip ∨ element
	OpXor                            // clip ⊕ element
	OpDifference                     // clip ∧ ¬element
	OpReverseDifference              // element ∧ ¬clip

	setOpCount
)

var setOpNames = [...]string{"Replace", "Intersect", "Union", "Xor", "Difference", "ReverseDifference"}

func (op SetOp) String() string {
	if op < setOpCount {
		return setOpNames[op]
	}
	return "SetOp(?)"
}

// Valid reports whether op is a defined operation.
func (op SetOp) Valid() bool {
	return op < setOpCount
}

// Eval applies op to one pixel: clip is the current clip bit, in whether
// the pixel lies inside the element.
func (op SetOp) Eval(clip, in bool) bool {
	switch op {
	case OpReplace:
		return in
	case OpIntersect:
		return clip && in
	case OpUnion:
		return clip || in
	case OpXor:
		return clip != in
	case OpDifference:
		return clip && !in
	case OpReverseDifference:
		return in && !clip
	}
	return clip
}

// MaxClipPasses is the largest number of passes ClipPasses returns.
const MaxClipPasses = 2

// FillRule selects how winding counts map to inside.
type FillRule uint8

const (
	NonZero FillRule = iota
	EvenOdd
)

func (r FillRule) String() string {
	if r == EvenOdd {
		return "EvenOdd"
	}
	return "NonZero"
}

// UserPass returns the settings that rasterize an element's winding into
// the user bits before the clip passes run. It relies on the user bits
// being zero inside the clip bounds.
func UserPass(rule FillRule, userBits uint16) Settings {
	if rule == EvenOdd {
		return New(Invert, Invert, Always, 0xffff, 0, userBits)
	}
	front := FaceSettings{PassOp: IncWrap, FailOp: IncWrap, Func: Always, Mask: 0xffff, WriteMask: userBits}
	back := front
	back.PassOp, back.FailOp = DecWrap, DecWrap
	return NewTwoSided(front, back)
}

// ClipPasses returns the stencil passes that fold one element into the clip
// bit. When direct is true the single pass must be drawn with the element's
// own geometry and no user pass precedes it; otherwise the element is first
// drawn with UserPass and every returned pass is drawn over the clip bounds.
//
// The direct path requires canBeDirect, a non-inverted fill and an op that
// can be written against the clip bit alone. Direct Replace assumes the clip
// bit was cleared immediately before.
//
// After the passes run, the user bits inside the clip bounds are zero again.
func ClipPasses(op SetOp, canBeDirect bool, clipBit uint16, invertedFill bool) (passes []Settings, direct bool) {
	const all = 0xffff
	userBits := clipBit - 1

	if canBeDirect && !invertedFill {
		var s Settings
		switch op {
		case OpReplace, OpUnion:
			s = New(Replace, Keep, Always, all, clipBit, clipBit)
		case OpXor:
			s = New(Invert, Keep, Always, all, 0, clipBit)
		case OpDifference:
			s = New(Zero, Keep, Always, all, 0, clipBit)
		}
		if op == OpReplace || op == OpUnion || op == OpXor || op == OpDifference {
			return []Settings{s}, true
		}
	}

	// Inside an element the user bits are non-zero for a normal fill and
	// zero for an inverted one. A ref of clipBit compared under the user
	// mask is zero, so Less selects non-zero user bits and Equal zero ones.
	insideFunc := Less
	if invertedFill {
		insideFunc = Equal
	}
	// Full-mask tests against clipBit: Less passes where the clip bit and
	// some user bit are set, Equal where only the clip bit is.
	clipAndUserNonZero := New(Replace, Zero, Less, all, clipBit, all)
	clipAndUserZero := New(Replace, Zero, Equal, all, clipBit, all)

	switch op {
	case OpReplace:
		return []Settings{New(Replace, Zero, insideFunc, userBits, clipBit, all)}, false

	case OpIntersect:
		if invertedFill {
			return []Settings{clipAndUserZero}, false
		}
		return []Settings{clipAndUserNonZero}, false

	case OpDifference:
		if invertedFill {
			return []Settings{clipAndUserNonZero}, false
		}
		return []Settings{clipAndUserZero}, false

	case OpUnion:
		if invertedFill {
			return []Settings{
				// Set the clip bit where the user bits are zero.
				New(Replace, Keep, Equal, userBits, clipBit, clipBit),
				// Scrub the user bits.
				New(Zero, Zero, Always, all, 0, userBits),
			}, false
		}
		return []Settings{
			// Inside becomes clip|1 so the second pass sees the clip bit.
			New(Replace, Keep, LEqual, userBits, clipBit|1, all),
			// Anything holding the clip bit collapses to exactly the clip bit.
			New(Replace, Zero, LEqual, all, clipBit, all),
		}, false

	case OpXor:
		// Flip every bit where the user bits are zero. Afterwards the user
		// bits are non-zero everywhere.
		first := New(Invert, Keep, Equal, userBits, clipBit, all)
		if invertedFill {
			return []Settings{first, clipAndUserNonZero}, false
		}
		return []Settings{first, New(Replace, Zero, Greater, all, clipBit, all)}, false

	case OpReverseDifference:
		if invertedFill {
			return []Settings{
				New(Invert, Keep, Equal, userBits, clipBit, clipBit),
				clipAndUserZero,
			}, false
		}
		return []Settings{
			New(Invert, Zero, Less, userBits, clipBit, all),
			New(Replace, Zero, LEqual, all, clipBit, all),
		}, false
	}
	return nil, false
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package draw

import (
	"golang.org/x/image/math/f64"

	"github.com/gogpu/drawstate/effect"
)

// MaxStages bounds the number of color plus coverage stages of one draw.
const MaxStages = 8

// IdentityAff3 is the identity coordinate change.
var IdentityAff3 = f64.Aff3{1, 0, 0, 0, 1, 0}

// Stage is one entry of a color or coverage chain: an effect plus the
// change applied to its local coordinates since the stage was set up.
type Stage struct {
	Effect      effect.Effect
	CoordChange f64.Aff3
}

// NewStage wraps an effect with an identity coordinate change.
func NewStage(e effect.Effect) Stage {
	return Stage{Effect: e, CoordChange: IdentityAff3}
}

// WithCoordChange returns the stage with its coordinate change
// pre-multiplied by m.
func (s Stage) WithCoordChange(m f64.Aff3) Stage {
	s.CoordChange = mulAff3(m, s.CoordChange)
	return s
}

// HasCoordChange reports whether the coordinate change is not identity.
func (s Stage) HasCoordChange() bool {
	return s.CoordChange != IdentityAff3
}

// IsCompatible reports whether two stages produce the same output: same
// effect class and parameters, and, unless local coordinates come from an
// explicit attribute, the same coordinate change.
func (s Stage) IsCompatible(o Stage, explicitLocalCoords bool) bool {
	if s.Effect == nil || o.Effect == nil {
		return s.Effect == o.Effect
	}
	if !s.Effect.IsEqual(o.Effect) {
		return false
	}
	return explicitLocalCoords || s.CoordChange == o.CoordChange
}

// mulAff3 returns a*b, applying b first.
func mulAff3(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

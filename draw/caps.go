// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package draw

import "sync/atomic"

// Capabilities describes the GPU features the optimizer may rely on.
type Capabilities interface {
	SupportsDualSourceBlending() bool
	SupportsDestinationRead() bool
	// ID identifies the capability set. Compiled states cached on a State
	// are reused only while the ID matches.
	ID() uint64
}

var capsIDCounter atomic.Uint64

// Caps is a plain Capabilities value.
type Caps struct {
	DualSourceBlending bool
	DestinationRead    bool
	Identity           uint64
}

// NewCaps returns capabilities with a fresh identity.
func NewCaps(dualSource, dstRead bool) Caps {
	return Caps{
		DualSourceBlending: dualSource,
		DestinationRead:    dstRead,
		Identity:           capsIDCounter.Add(1),
	}
}

func (c Caps) SupportsDualSourceBlending() bool { return c.DualSourceBlending }
func (c Caps) SupportsDestinationRead() bool    { return c.DestinationRead }
func (c Caps) ID() uint64                       { return c.Identity }

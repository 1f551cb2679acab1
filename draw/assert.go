// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package draw

// debugAssert panics when cond is false in drawdebug builds. Production
// builds compile it away.
func debugAssert(cond bool, msg string) {
	if debugChecks && !cond {
		panic("draw: " + msg)
	}
}

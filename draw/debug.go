// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build drawdebug

package draw

// debugChecks enables invariant assertions. Build with -tags drawdebug.
const debugChecks = true

// Copyright (c) The wlock Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package futex provides a low-level "compare value, then block" wait/wake
// facility on a single 32-bit word.
//
// On Linux it is a thin wrapper around the futex(2) system call. Elsewhere a
// pure-Go parking lot stands in for the kernel, exposing the identical
// surface, so callers never branch on platform.
//
// All waits may return spuriously: a return from Wait or WaitFor means only
// that a wait attempt completed, never that the word changed or that a wake
// was delivered. Callers must re-derive their condition from the word itself.
package futex

import "sync/atomic"

// A Futex is a 32-bit word that OS threads can block on and wake each other
// through. It occupies exactly four naturally aligned bytes and is meant to
// be embedded by value inside a larger structure.
//
// The zero value is ready to use. A Futex must not be copied while any
// thread is waiting on it.
type Futex struct {
	atomic.Uint32
}

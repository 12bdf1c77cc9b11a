// Copyright (c) The wlock Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wlock implements minimal one-word locking primitives on top of a
// futex-style wait/wake facility.
//
// Mutex and Cond each occupy a single 32-bit word, allocate nothing, and
// resolve uncontended operations with one atomic instruction and no system
// call. They trade away everything a full OS mutex offers beyond mutual
// exclusion: no recursion, no fairness between waiters, no priority
// inheritance, no robustness if a holder dies, and no sharing across
// process boundaries. Misuse — unlocking a mutex that is not held, waiting
// on a condition with a mutex the caller has not locked — is not checked.
package wlock

import (
	"sync"

	"github.com/wlock/wlock/futex"
)

// Mutex word states. The word only ever holds one of these on the steady
// state; it may transiently exceed contended while racing lockers converge
// on the slow path.
const (
	unlocked  = 0 // nobody holds the lock
	locked    = 1 // held, no contention observed
	contended = 2 // held, and a waiter is (or once was) blocked
)

// A Mutex is a mutual exclusion lock backed by a single 32-bit word.
//
// The zero value is an unlocked Mutex; there is nothing to initialize and
// nothing to release when done. A Mutex must not be copied after first use
// and must not be re-locked by its holder.
type Mutex struct {
	w futex.Futex
}

var _ sync.Locker = (*Mutex)(nil)

// Lock acquires m, blocking the calling thread until it is available.
func (m *Mutex) Lock() {
	// Uncontended fast path: 0 -> 1 means we own it, no syscall.
	if m.w.Add(1) == locked {
		return
	}
	m.lockSlow()
}

func (m *Mutex) lockSlow() {
	for {
		// Rewrite the word to "contended" regardless of how many waiters
		// exist. If it was free we now own it, and the stale marker costs
		// at most one extra Wake on our own Unlock.
		if m.w.Swap(contended) == unlocked {
			return
		}
		// Held by someone else. Sleep until the word stops being 2, then
		// race for it again. A spurious or signal-interrupted return just
		// takes one more trip around the loop; correctness comes from the
		// Swap above, never from why Wait returned.
		m.w.Wait(contended)
	}
}

// Unlock releases m. It is the caller's responsibility to hold m; unlocking
// an unheld Mutex is undefined.
func (m *Mutex) Unlock() {
	if m.w.Swap(unlocked) == locked {
		// Nobody ever contended this acquisition.
		return
	}
	// The word carried the contention marker: release exactly one waiter
	// to retry. The marker can be stale, in which case this wake finds
	// nobody, which is harmless.
	m.w.Wake()
}

// TryLock attempts to acquire m without blocking and reports whether it
// succeeded. On failure the word is left untouched: a failed TryLock never
// registers contention.
func (m *Mutex) TryLock() bool {
	return m.w.CompareAndSwap(unlocked, locked)
}

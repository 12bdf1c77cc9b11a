// Copyright (c) The wlock Authors
// SPDX-License-Identifier: BSD-3-Clause

package wlock

import (
	"github.com/wlock/wlock/futex"
	"github.com/wlock/wlock/mono"
)

// A Cond is a condition variable backed by a single 32-bit generation
// counter. It never stores a mutex; the caller passes its Mutex to each
// blocking call, and must hold that Mutex when calling Wait or WaitUntil.
//
// The zero value is a Cond with no pending notifications. A Cond must not
// be copied after first use.
//
// As with any condition variable, a return from Wait or WaitUntil does not
// mean the awaited condition holds: waits can end spuriously, and a
// notification may race with the caller's predicate. Callers wait in a
// loop:
//
//	mu.Lock()
//	for !ready {
//		cond.Wait(&mu)
//	}
//	...
//	mu.Unlock()
type Cond struct {
	seq futex.Futex
}

// Signal wakes at most one thread blocked in Wait or WaitUntil. It may be
// called with or without the associated mutex held.
func (c *Cond) Signal() {
	c.seq.Add(1)
	c.seq.Wake()
}

// Broadcast wakes every thread currently blocked in Wait or WaitUntil.
func (c *Cond) Broadcast() {
	c.seq.Add(1)
	c.seq.WakeAll()
}

// Wait atomically releases mu and suspends the calling thread until a
// Signal, Broadcast, or spurious wakeup, then reacquires mu before
// returning. The caller must hold mu.
//
// The generation counter is sampled before mu is released; the wait/wake
// facility blocks only if the counter still matches, so a notification
// between the sample and the suspension cannot be lost.
func (c *Cond) Wait(mu *Mutex) {
	seq := c.seq.Load()
	mu.Unlock()
	c.seq.Wait(seq)
	mu.Lock()
}

// WaitUntil is like Wait with a deadline on the monotonic clock. It returns
// true only when it can prove the deadline had already passed before any
// wait was attempted: a negative deadline (mono.Never or any other sentinel
// meaning "invalid") or a deadline not after the current time. In both of
// those cases mu is never released.
//
// A false return means a wait attempt completed; it deliberately does not
// distinguish a notification from an elapsed deadline from a spurious
// wakeup. Callers must re-check their predicate and, if it is still false,
// their own deadline. mu is held by the caller on every return path.
func (c *Cond) WaitUntil(mu *Mutex, deadline mono.Time) (timedOut bool) {
	if deadline < 0 {
		return true
	}
	// The deadline is resolved to a relative span exactly once, here. If
	// the single wait below is interrupted early, we return early; we do
	// not re-arm with the remaining time.
	d := deadline.Sub(mono.Now())
	if d <= 0 {
		return true
	}
	seq := c.seq.Load()
	mu.Unlock()
	c.seq.WaitFor(seq, d)
	mu.Lock()
	return false
}

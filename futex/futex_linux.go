// Copyright (c) The wlock Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build linux

package futex

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Futex op constants from <linux/futex.h>. x/sys/unix exports the syscall
// number but not the ops, so they are spelled out here.
//
// We always use the PRIVATE variants: these words are never shared across
// address spaces, and private futexes skip the kernel's cross-process
// bookkeeping.
const (
	futexWait        = 0
	futexWake        = 1
	futexPrivateFlag = 0x80

	opWaitPrivate = futexWait | futexPrivateFlag
	opWakePrivate = futexWake | futexPrivateFlag
)

// Wait blocks the calling thread while the word equals cmp. If the word
// already differs, it returns immediately. Any return may be spurious
// (wake, interruption by a signal, or unrelated activity on the same
// address); callers re-check the word.
func (f *Futex) Wait(cmp uint32) {
	futex(f.addr(), opWaitPrivate, cmp, nil)
}

// WaitFor is like Wait but gives up after the relative span d. A
// non-positive d returns immediately. Exactly one wait is issued: if a
// signal interrupts it early, WaitFor returns early rather than re-arming
// with the remaining time, which callers observe as one more spurious
// return.
func (f *Futex) WaitFor(cmp uint32, d time.Duration) {
	if d <= 0 {
		return
	}
	ts := unix.NsecToTimespec(int64(d))
	futex(f.addr(), opWaitPrivate, cmp, &ts)
}

// Wake wakes at most one thread blocked on the word. Waking nobody is not
// an error.
func (f *Futex) Wake() {
	futex(f.addr(), opWakePrivate, 1, nil)
}

// WakeAll wakes every thread currently blocked on the word.
func (f *Futex) WakeAll() {
	futex(f.addr(), opWakePrivate, 1<<31-1, nil)
}

func (f *Futex) addr() unsafe.Pointer {
	return unsafe.Pointer(&f.Uint32)
}

// futex issues a single FUTEX op. Every outcome the kernel can report —
// EAGAIN on a value mismatch, EINTR on a signal, ETIMEDOUT on an elapsed
// span, or a successful wake — is equivalent from the caller's point of
// view, so the errno is deliberately discarded.
func futex(addr unsafe.Pointer, op int, val uint32, ts *unix.Timespec) {
	unix.Syscall6(unix.SYS_FUTEX,
		uintptr(addr),
		uintptr(op),
		uintptr(val),
		uintptr(unsafe.Pointer(ts)),
		0, 0)
}

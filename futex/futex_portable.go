// Copyright (c) The wlock Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !linux

package futex

import (
	"sync"
	"time"
	"unsafe"
)

// The portable implementation parks waiters in a fixed table of buckets
// keyed by word address, the way a kernel futex hash table does. The bucket
// lock is what makes "check the word, then enqueue" atomic with respect to
// concurrent wakes: a waker always increments or rewrites the word before
// taking the bucket lock to scan for waiters, so a waiter that enqueued
// under the lock cannot miss the wake that follows.

const numBuckets = 128

var table [numBuckets]bucket

type bucket struct {
	mu      sync.Mutex
	waiters []*waiter
}

type waiter struct {
	key  uintptr
	wake chan struct{}
}

// bucketOf maps a word address to its bucket with a multiplicative hash.
// Words are 4-byte aligned, so the low two bits carry no information.
func bucketOf(key uintptr) *bucket {
	h := (key >> 2) * 0x9E3779B9
	return &table[h%numBuckets]
}

// Wait blocks the calling goroutine while the word equals cmp. If the word
// already differs, it returns immediately. Any return may be spurious;
// callers re-check the word.
func (f *Futex) Wait(cmp uint32) {
	w, ok := f.park(cmp)
	if !ok {
		return
	}
	<-w.wake
}

// WaitFor is like Wait but gives up after the relative span d. A
// non-positive d returns immediately.
func (f *Futex) WaitFor(cmp uint32, d time.Duration) {
	if d <= 0 {
		return
	}
	w, ok := f.park(cmp)
	if !ok {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-w.wake:
	case <-t.C:
		bucketOf(w.key).remove(w)
	}
}

// park enqueues a waiter for the word unless the word no longer equals cmp,
// in which case it reports false and nothing was enqueued.
func (f *Futex) park(cmp uint32) (*waiter, bool) {
	key := f.key()
	b := bucketOf(key)
	b.mu.Lock()
	if f.Load() != cmp {
		b.mu.Unlock()
		return nil, false
	}
	w := &waiter{key: key, wake: make(chan struct{})}
	b.waiters = append(b.waiters, w)
	b.mu.Unlock()
	return w, true
}

// Wake wakes at most one goroutine blocked on the word. Waking nobody is
// not an error.
func (f *Futex) Wake() {
	bucketOf(f.key()).wake(f.key(), 1)
}

// WakeAll wakes every goroutine currently blocked on the word.
func (f *Futex) WakeAll() {
	bucketOf(f.key()).wake(f.key(), -1)
}

func (f *Futex) key() uintptr {
	return uintptr(unsafe.Pointer(&f.Uint32))
}

// wake releases up to n waiters parked on key, oldest first. A negative n
// means all of them.
func (b *bucket) wake(key uintptr, n int) {
	b.mu.Lock()
	kept := b.waiters[:0]
	for _, w := range b.waiters {
		if n != 0 && w.key == key {
			close(w.wake)
			n--
			continue
		}
		kept = append(kept, w)
	}
	clearTail(b.waiters, len(kept))
	b.waiters = kept
	b.mu.Unlock()
}

// remove drops a timed-out waiter that was never woken. If a concurrent
// wake already dequeued it, there is nothing to do.
func (b *bucket) remove(w *waiter) {
	b.mu.Lock()
	for i, q := range b.waiters {
		if q == w {
			b.waiters = append(b.waiters[:i], b.waiters[i+1:]...)
			break
		}
	}
	b.mu.Unlock()
}

// clearTail nils out the abandoned tail of the backing array so dequeued
// waiters do not linger reachable.
func clearTail(s []*waiter, from int) {
	for i := from; i < len(s); i++ {
		s[i] = nil
	}
}

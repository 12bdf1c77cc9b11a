// Copyright (c) The wlock Authors
// SPDX-License-Identifier: BSD-3-Clause

package wlock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"
)

func TestTryLock(t *testing.T) {
	var m Mutex
	if !m.TryLock() {
		t.Fatal("TryLock on a free mutex failed")
	}
	if got := m.w.Load(); got != locked {
		t.Fatalf("word = %d after TryLock, want %d", got, locked)
	}
	if m.TryLock() {
		t.Fatal("TryLock on a held mutex succeeded")
	}
	if got := m.w.Load(); got != locked {
		t.Fatalf("word = %d after failed TryLock, want %d (no side effect)", got, locked)
	}
	m.Unlock()
	if got := m.w.Load(); got != unlocked {
		t.Fatalf("word = %d after Unlock, want %d", got, unlocked)
	}
	if !m.TryLock() {
		t.Fatal("TryLock after Unlock failed")
	}
	m.Unlock()
}

func TestMutualExclusion(t *testing.T) {
	const (
		workers = 8
		iters   = 2000
	)
	var (
		m      Mutex
		inCrit atomic.Int32
		total  atomic.Int64
	)
	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			for range iters {
				m.Lock()
				if n := inCrit.Add(1); n != 1 {
					t.Errorf("%d threads inside the critical section", n)
				}
				inCrit.Add(-1)
				total.Add(1)
				m.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if got := total.Load(); got != workers*iters {
		t.Errorf("total critical-section entries = %d, want %d", got, workers*iters)
	}
	if got := m.w.Load(); got != unlocked {
		t.Errorf("word = %d after all workers finished, want %d", got, unlocked)
	}
}

// TestContendedHandoff pins the exact word transitions of a contended
// acquisition: the contender rewrites the word to the contention marker and
// blocks; the holder's release wakes it; the winner leaves the marker in
// place even though nobody else is waiting, so the winner's own release
// issues one harmless extra wake.
func TestContendedHandoff(t *testing.T) {
	var m Mutex
	var got []uint32

	m.Lock()
	got = append(got, m.w.Load()) // uncontended hold

	acquired := make(chan struct{})
	released := make(chan struct{})
	go func() {
		m.Lock()
		close(acquired)
		<-released
		m.Unlock()
	}()

	// Wait for the contender to reach the slow path and mark the word.
	waitForWord(t, &m, contended)
	got = append(got, m.w.Load()) // contender parked

	m.Unlock()
	<-acquired
	got = append(got, m.w.Load()) // winner holds, stale marker kept

	close(released)
	waitForWord(t, &m, unlocked)
	got = append(got, m.w.Load()) // fully released

	want := []uint32{locked, contended, contended, unlocked}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("word transitions (-got +want):\n%s", diff)
	}
}

func waitForWord(t *testing.T, m *Mutex, want uint32) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for m.w.Load() != want {
		if time.Now().After(deadline) {
			t.Fatalf("word stuck at %d, want %d", m.w.Load(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func BenchmarkMutexUncontended(b *testing.B) {
	var m Mutex
	for range b.N {
		m.Lock()
		m.Unlock()
	}
}

func BenchmarkSyncMutexUncontended(b *testing.B) {
	var m sync.Mutex
	for range b.N {
		m.Lock()
		m.Unlock()
	}
}

func BenchmarkMutexContended(b *testing.B) {
	var m Mutex
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Lock()
			m.Unlock()
		}
	})
}

func BenchmarkSyncMutexContended(b *testing.B) {
	var m sync.Mutex
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Lock()
			m.Unlock()
		}
	})
}

// Copyright (c) The wlock Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command lockstress hammers the wlock primitives from many goroutines and
// reports throughput. It doubles as a cheap correctness harness: any
// mutual-exclusion violation or lost critical-section entry makes it exit
// nonzero.
package main

import (
	"errors"
	"flag"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/creachadair/taskgroup"

	"github.com/wlock/wlock"
)

var (
	workers = flag.Int("workers", runtime.GOMAXPROCS(0), "number of concurrent workers")
	iters   = flag.Int("iters", 200_000, "critical-section entries per worker")
	mode    = flag.String("mode", "mutex", "what to stress: mutex, cond, or stdmutex (for comparison)")
)

func main() {
	log.SetFlags(0)
	flag.Parse()
	if *workers <= 0 || *iters <= 0 {
		log.Fatalf("-workers and -iters must be positive")
	}

	var err error
	start := time.Now()
	switch *mode {
	case "mutex":
		err = stressLocker(new(wlock.Mutex))
	case "stdmutex":
		err = stressLocker(new(sync.Mutex))
	case "cond":
		err = stressCond()
	default:
		log.Fatalf("unknown -mode %q", *mode)
	}
	elapsed := time.Since(start)
	if err != nil {
		log.Fatal(err)
	}

	total := *workers * *iters
	log.Printf("mode=%s workers=%d entries=%d elapsed=%v (%d ns/entry)",
		*mode, *workers, total, elapsed.Round(time.Millisecond),
		elapsed.Nanoseconds()/int64(total))
}

func stressLocker(mu sync.Locker) error {
	var (
		held  int32 // guarded by mu; must never exceed 1
		total atomic.Int64
		bad   atomic.Bool
	)
	var g taskgroup.Group
	for range *workers {
		g.Go(func() error {
			for range *iters {
				mu.Lock()
				held++
				if held != 1 {
					bad.Store(true)
				}
				held--
				mu.Unlock()
				total.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if bad.Load() {
		return errors.New("mutual exclusion violated")
	}
	if got := total.Load(); got != int64(*workers**iters) {
		return errors.New("lost critical-section entries")
	}
	return nil
}

// stressCond runs a producer/consumer handoff through a Cond: one producer
// feeds items, every worker consumes, and the run must drain exactly
// workers*iters items.
func stressCond() error {
	var (
		m       wlock.Mutex
		c       wlock.Cond
		pending int
		done    bool
	)
	items := *workers * *iters

	var g taskgroup.Group
	consumed := new(atomic.Int64)
	for range *workers {
		g.Go(func() error {
			for {
				m.Lock()
				for pending == 0 && !done {
					c.Wait(&m)
				}
				if pending == 0 && done {
					m.Unlock()
					return nil
				}
				pending--
				m.Unlock()
				consumed.Add(1)
			}
		})
	}

	for range items {
		m.Lock()
		pending++
		m.Unlock()
		c.Signal()
	}
	m.Lock()
	done = true
	m.Unlock()
	c.Broadcast()

	if err := g.Wait(); err != nil {
		return err
	}
	if got := consumed.Load(); got != int64(items) {
		return errors.New("consumed item count mismatch")
	}
	return nil
}

// Copyright (c) The wlock Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package mono provides a fast monotonic Time type.
//
// It is meant for computing and comparing deadlines: mono.Time values never
// step backwards or jump when the wall clock is adjusted, and subtracting
// two of them is a plain integer subtraction. It is not meant for telling
// wall time; use WallTime for display only.
package mono

import "time"

// Time is the number of nanoseconds elapsed on the monotonic clock since a
// process-local baseline captured at startup. It is only meaningful when
// compared against other Time values from the same process.
type Time int64

// Never is a sentinel deadline that is never reached. Any negative Time is
// treated the same way by code that accepts deadlines.
const Never = Time(-1)

// baseWall is the wall time at which the monotonic baseline was captured.
// time.Since(baseWall) reads the runtime's monotonic clock, not the wall
// clock, which is what makes Now immune to wall-clock steps.
var baseWall = time.Now()

// Now returns the current monotonic time. It is never negative.
func Now() Time {
	return Time(time.Since(baseWall))
}

// Since returns the span elapsed since t.
func Since(t Time) time.Duration {
	return Now().Sub(t)
}

// Sub returns t-u, the span from u to t.
func (t Time) Sub(u Time) time.Duration {
	return time.Duration(t - u)
}

// Add returns t+d.
func (t Time) Add(d time.Duration) Time {
	return t + Time(d)
}

// After reports whether t is after u.
func (t Time) After(u Time) bool { return t > u }

// Before reports whether t is before u.
func (t Time) Before(u Time) bool { return t < u }

// IsZero reports whether t is the zero Time.
func (t Time) IsZero() bool { return t == 0 }

// WallTime returns an approximation of t on the wall clock, for display.
// The mapping uses the wall clock as of process start and ignores any
// adjustments made since.
func (t Time) WallTime() time.Time {
	if t < 0 {
		return time.Time{}
	}
	return baseWall.Add(time.Duration(t))
}

func (t Time) String() string {
	return t.WallTime().Format(time.RFC3339Nano)
}

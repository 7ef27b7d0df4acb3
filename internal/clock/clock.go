// Copyright 2024 The Wcstore Authors
// This file is part of Wcstore.
//
// Wcstore is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Wcstore is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Wcstore. If not, see <http://www.gnu.org/licenses/>.

// Package clock isolates "now" behind an interface so WriteEngine's
// default-timestamp assignment is deterministic under test.
package clock

import (
	"sync/atomic"
	"time"

	"github.com/erigontech/wcstore/internal/wcmath"
)

// Clock returns the current wall-clock time in milliseconds, the unit
// put_row's default timestamps are assigned in.
type Clock interface {
	NowMs() uint64
}

// System is the production Clock: real wall-clock time.
type System struct{}

func (System) NowMs() uint64 { return uint64(time.Now().UnixMilli()) }

// Fixed always returns the same timestamp. Useful for tests asserting
// exact (ts, value) pairs without racing the wall clock.
type Fixed uint64

func (f Fixed) NowMs() uint64 { return uint64(f) }

// Stepping returns start, start+step, start+2*step, ... on successive
// calls. Useful for tests that need distinct-but-deterministic
// timestamps across several put_row calls with omitted timestamps.
type Stepping struct {
	next uint64
	step uint64
}

// NewStepping returns a Stepping clock whose first NowMs() is start.
func NewStepping(start, step uint64) *Stepping {
	return &Stepping{next: start, step: step}
}

// NowMs returns the next timestamp in the sequence. A step that would
// overflow uint64 saturates at MaxUint64 instead of wrapping, so a
// misconfigured step never produces a timestamp that sorts before one
// already handed out.
func (s *Stepping) NowMs() uint64 {
	for {
		cur := atomic.LoadUint64(&s.next)
		next, overflow := wcmath.SafeAdd(cur, s.step)
		if overflow {
			next = ^uint64(0)
		}
		if atomic.CompareAndSwapUint64(&s.next, cur, next) {
			return cur
		}
	}
}

// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7920

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock is the time source used to honour the controller's timings.
//
// clockwork.Clock implements it.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// RealClock returns the wall clock.
func RealClock() Clock {
	return clockwork.NewRealClock()
}

// Schedule tracks the earliest instant a controller line may be driven
// again.
//
// There is one Schedule per enable or chip select line. Issuing a command
// books its execution time; the next access to the line waits for the
// deadline instead of the command sleeping right away. When the caller does
// other work in between, the wait is free.
type Schedule struct {
	clk       Clock
	notBefore time.Time
}

// NewSchedule returns a Schedule whose deadline is now.
func NewSchedule(clk Clock) *Schedule {
	return &Schedule{clk: clk, notBefore: clk.Now()}
}

// Wait blocks until the deadline. It returns immediately if the deadline is
// already past.
func (s *Schedule) Wait() {
	if d := s.notBefore.Sub(s.clk.Now()); d > 0 {
		s.clk.Sleep(d)
	}
}

// Book pushes the deadline to d from now. It never brings an existing
// deadline closer.
func (s *Schedule) Book(d time.Duration) {
	if t := s.clk.Now().Add(d); t.After(s.notBefore) {
		s.notBefore = t
	}
}

// NotBefore returns the deadline.
func (s *Schedule) NotBefore() time.Time {
	return s.notBefore
}

// Reset moves the deadline to now, discarding anything booked.
func (s *Schedule) Reset() {
	s.notBefore = s.clk.Now()
}

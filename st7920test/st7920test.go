// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package st7920test contains fakes to test code using the st7920 packages
// without hardware and without waiting for the controller's timings.
package st7920test

import (
	"sync"
	"time"

	"github.com/GermanBionicSystems/st7920"
)

// Epoch is the instant a Clock created by NewClock starts at.
var Epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Clock is a fake st7920.Clock. Sleep advances the time instantly.
type Clock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

// NewClock returns a Clock set to Epoch.
func NewClock() *Clock {
	return &Clock{now: Epoch}
}

// Now implements st7920.Clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep implements st7920.Clock.
//
// It records d and moves the time forward by d.
func (c *Clock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	if d > 0 {
		c.now = c.now.Add(d)
	}
}

// Advance moves the time forward by d without recording a sleep, like work
// done by the caller between two commands.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Elapsed returns the time elapsed since Epoch.
func (c *Clock) Elapsed() time.Duration {
	return c.Now().Sub(Epoch)
}

// Sleeps returns the recorded sleeps and forgets them.
func (c *Clock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.sleeps
	c.sleeps = nil
	return s
}

// Op is one operation recorded by Record. Exactly one field is set.
type Op struct {
	Hold time.Duration
	Cmd  st7920.Command
}

// Record is a fake st7920.ReadConn that records what it is asked to do.
type Record struct {
	// Ops is the list of Hold and Execute calls, in order.
	Ops []Op
	// Words is returned by Read, one at a time. Read returns 0 once it is
	// exhausted.
	Words []uint16
	// Busy is the number of following status reads that report busy.
	Busy int
	// AC is the address counter returned by ReadStatus.
	AC uint8
	// StatusReads counts the calls to ReadStatus.
	StatusReads int
	// Clock, when set, advances by ReadTime at each status read.
	Clock    *Clock
	ReadTime time.Duration
	// Fail, when set, is called before recording each Execute; a non-nil
	// error is returned and the command is not recorded.
	Fail func(cmd st7920.Command) error
}

// Execute implements st7920.Conn.
func (r *Record) Execute(cmd st7920.Command) error {
	if r.Fail != nil {
		if err := r.Fail(cmd); err != nil {
			return err
		}
	}
	r.Ops = append(r.Ops, Op{Cmd: cmd})
	return nil
}

// Hold implements st7920.Conn.
func (r *Record) Hold(d time.Duration) {
	r.Ops = append(r.Ops, Op{Hold: d})
}

// Read implements st7920.ReadConn.
func (r *Record) Read() (uint16, error) {
	if len(r.Words) == 0 {
		return 0, nil
	}
	w := r.Words[0]
	r.Words = r.Words[1:]
	return w, nil
}

// ReadStatus implements st7920.ReadConn.
func (r *Record) ReadStatus() (bool, uint8, error) {
	r.StatusReads++
	if r.Clock != nil {
		r.Clock.Advance(r.ReadTime)
	}
	if r.Busy > 0 {
		r.Busy--
		return true, r.AC, nil
	}
	return false, r.AC, nil
}

// Cmds returns the recorded commands, without the holds.
func (r *Record) Cmds() []st7920.Command {
	var out []st7920.Command
	for _, op := range r.Ops {
		if op.Cmd != nil {
			out = append(out, op.Cmd)
		}
	}
	return out
}

// Reset forgets the recorded operations.
func (r *Record) Reset() {
	r.Ops = nil
}

func (r *Record) String() string {
	return "Record"
}

var _ st7920.ReadConn = &Record{}

// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package parallel drives ST7920 controllers over their 4 or 8 bit parallel
// interface.
//
// Several controllers can share the RS, R/W and data wires, each one having
// its own enable (E) wire. A Bus owns the shared wires and hands out one
// Interface per enable wire.
package parallel

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GermanBionicSystems/st7920"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

const (
	// addrSetup is the RS and R/W set-up time before E rises.
	addrSetup = time.Microsecond
	// pulseWidth is how long E stays high.
	pulseWidth = time.Microsecond
	// enableCycle is the minimum time between two E rising edges.
	enableCycle = 10 * time.Microsecond
	// readExecTime is how long the controller needs after a RAM read.
	readExecTime = 72 * time.Microsecond
)

// ErrWriteOnly is returned by reads when R/W is not wired.
var ErrWriteOnly = errors.New("parallel: R/W is not wired, the bus is write only")

// Pins is the wiring of a parallel bus.
type Pins struct {
	// RS selects between the instruction and the data registers.
	RS gpio.PinOut
	// RW selects reads. Leave it nil when R/W is tied low.
	RW gpio.PinOut
	// E has one enable wire per controller.
	E []gpio.PinOut
	// DB is DB4..DB7 in 4 bit mode or DB0..DB7 in 8 bit mode. Bit i of a
	// nibble or byte goes on DB[i].
	DB []gpio.PinIO
}

type register struct {
	rs, rw gpio.Level
}

var (
	regCommand = register{rs: gpio.Low, rw: gpio.Low}
	regStatus  = register{rs: gpio.Low, rw: gpio.High}
	regWrite   = register{rs: gpio.High, rw: gpio.Low}
	regRead    = register{rs: gpio.High, rw: gpio.High}
)

type line struct {
	e gpio.PinOut
	s *st7920.Schedule
}

// Bus is a parallel bus shared by one or more controllers.
//
// It is safe for concurrent use: each transaction holds the bus for its
// whole duration, including the waits.
type Bus struct {
	mu    sync.Mutex
	rs    gpio.PinOut
	rw    gpio.PinOut
	db    []gpio.PinIO
	lines []line
}

// New returns a Bus on pins. All the control wires are driven low.
//
// clk defaults to st7920.RealClock() when nil.
func New(pins *Pins, clk st7920.Clock) (*Bus, error) {
	if len(pins.DB) != 4 && len(pins.DB) != 8 {
		return nil, fmt.Errorf("parallel: need 4 or 8 data wires, got %d", len(pins.DB))
	}
	if len(pins.E) == 0 {
		return nil, errors.New("parallel: need at least one enable wire")
	}
	if pins.RS == nil {
		return nil, errors.New("parallel: RS is not wired")
	}
	if clk == nil {
		clk = st7920.RealClock()
	}
	b := &Bus{rs: pins.RS, rw: pins.RW, db: pins.DB}
	if err := b.rs.Out(gpio.Low); err != nil {
		return nil, err
	}
	if b.rw != nil {
		if err := b.rw.Out(gpio.Low); err != nil {
			return nil, err
		}
	}
	for _, p := range b.db {
		if err := p.Out(gpio.Low); err != nil {
			return nil, err
		}
	}
	for _, e := range pins.E {
		if err := e.Out(gpio.Low); err != nil {
			return nil, err
		}
		b.lines = append(b.lines, line{e: e, s: st7920.NewSchedule(clk)})
	}
	return b, nil
}

// Num returns the number of controllers on the bus.
func (b *Bus) Num() int {
	return len(b.lines)
}

// Get returns the Interface to the controller on enable wire i, or nil when
// i is out of range.
func (b *Bus) Get(i int) *Interface {
	if i < 0 || i >= len(b.lines) {
		return nil
	}
	return &Interface{b: b, i: i}
}

// Halt implements conn.Resource.
//
// It drives all the wires low. The controllers are left as is.
func (b *Bus) Halt() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range b.lines {
		if err := l.e.Out(gpio.Low); err != nil {
			return err
		}
	}
	return b.dataOut()
}

func (b *Bus) String() string {
	e := make([]string, 0, len(b.lines))
	for _, l := range b.lines {
		e = append(e, l.e.Name())
	}
	return fmt.Sprintf("parallel{%d bits, E:[%s]}", len(b.db), strings.Join(e, " "))
}

func (b *Bus) selectReg(l *line, r register) error {
	if r.rw == gpio.High && b.rw == nil {
		return ErrWriteOnly
	}
	if err := b.rs.Out(r.rs); err != nil {
		return err
	}
	if b.rw != nil {
		if err := b.rw.Out(r.rw); err != nil {
			return err
		}
	}
	l.s.Book(addrSetup)
	return nil
}

// latch pulses E, calling f while it is high.
func (b *Bus) latch(l *line, f func()) error {
	l.s.Wait()
	if err := l.e.Out(gpio.High); err != nil {
		return err
	}
	l.s.Book(pulseWidth)
	l.s.Wait()
	if f != nil {
		f()
	}
	if err := l.e.Out(gpio.Low); err != nil {
		return err
	}
	l.s.Book(enableCycle)
	return nil
}

func (b *Bus) writeBits(l *line, v byte) error {
	for i, p := range b.db {
		if err := p.Out(gpio.Level(v>>uint(i)&1 != 0)); err != nil {
			return err
		}
	}
	return b.latch(l, nil)
}

func (b *Bus) readBits(l *line) (byte, error) {
	var v byte
	err := b.latch(l, func() {
		for i, p := range b.db {
			if p.Read() == gpio.High {
				v |= 1 << uint(i)
			}
		}
	})
	return v, err
}

func (b *Bus) writeU8(l *line, v byte) error {
	if len(b.db) == 8 {
		return b.writeBits(l, v)
	}
	if err := b.writeBits(l, v>>4); err != nil {
		return err
	}
	return b.writeBits(l, v&0x0F)
}

func (b *Bus) writeU16(l *line, v uint16) error {
	if err := b.writeU8(l, byte(v>>8)); err != nil {
		return err
	}
	return b.writeU8(l, byte(v))
}

func (b *Bus) readU8(l *line) (byte, error) {
	if len(b.db) == 8 {
		return b.readBits(l)
	}
	hi, err := b.readBits(l)
	if err != nil {
		return 0, err
	}
	lo, err := b.readBits(l)
	return hi<<4 | lo, err
}

func (b *Bus) readU16(l *line) (uint16, error) {
	hi, err := b.readU8(l)
	if err != nil {
		return 0, err
	}
	lo, err := b.readU8(l)
	return uint16(hi)<<8 | uint16(lo), err
}

func (b *Bus) dataIn() error {
	for _, p := range b.db {
		if err := p.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bus) dataOut() error {
	for _, p := range b.db {
		if err := p.Out(gpio.Low); err != nil {
			return err
		}
	}
	return nil
}

// read runs f with the data wires as inputs and register r selected.
func (b *Bus) read(l *line, r register, f func() error) error {
	if b.rw == nil {
		return ErrWriteOnly
	}
	l.s.Wait()
	err := b.dataIn()
	if err == nil {
		err = b.selectReg(l, r)
	}
	if err == nil {
		err = f()
	}
	if err2 := b.dataOut(); err == nil {
		err = err2
	}
	if err2 := b.rw.Out(gpio.Low); err == nil {
		err = err2
	}
	return err
}

// Interface is the connection to one controller of a Bus.
//
// It implements st7920.ReadConn.
type Interface struct {
	b *Bus
	i int
}

// Execute implements st7920.Conn.
//
// It waits for the previous command to complete and sends cmd. The
// execution time of cmd is booked and waited for by the next access.
func (i *Interface) Execute(cmd st7920.Command) error {
	b := i.b
	b.mu.Lock()
	defer b.mu.Unlock()
	l := &b.lines[i.i]
	l.s.Wait()
	switch c := cmd.(type) {
	case st7920.Write:
		if err := b.selectReg(l, regWrite); err != nil {
			return err
		}
		if err := b.writeU16(l, uint16(c)); err != nil {
			return err
		}
	case st7920.Instruction:
		for n, op := range c.Bytes() {
			if n != 0 {
				l.s.Book(c.ExecutionTime())
			}
			if err := b.selectReg(l, regCommand); err != nil {
				return err
			}
			if err := b.writeU8(l, op); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("parallel: unsupported command %s", cmd)
	}
	l.s.Book(cmd.ExecutionTime())
	return nil
}

// Hold implements st7920.Conn.
func (i *Interface) Hold(d time.Duration) {
	i.b.mu.Lock()
	defer i.b.mu.Unlock()
	i.b.lines[i.i].s.Book(d)
}

// Read implements st7920.ReadConn.
//
// It reads a word from the currently selected RAM, high byte first.
func (i *Interface) Read() (uint16, error) {
	b := i.b
	b.mu.Lock()
	defer b.mu.Unlock()
	l := &b.lines[i.i]
	var v uint16
	err := b.read(l, regRead, func() error {
		var err error
		v, err = b.readU16(l)
		return err
	})
	if err != nil {
		return 0, err
	}
	l.s.Book(readExecTime)
	return v, nil
}

// ReadStatus implements st7920.ReadConn.
//
// It returns the busy flag (bit 7) and the address counter (bits 6..0).
func (i *Interface) ReadStatus() (bool, uint8, error) {
	b := i.b
	b.mu.Lock()
	defer b.mu.Unlock()
	l := &b.lines[i.i]
	var v byte
	err := b.read(l, regStatus, func() error {
		var err error
		v, err = b.readU8(l)
		return err
	})
	if err != nil {
		return false, 0, err
	}
	return v&0x80 != 0, v & 0x7F, nil
}

func (i *Interface) String() string {
	return fmt.Sprintf("%s[%d]", i.b, i.i)
}

var (
	_ st7920.ReadConn = &Interface{}
	_ conn.Resource   = &Bus{}
)

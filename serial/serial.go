// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package serial drives ST7920 controllers over their synchronous serial
// interface, with an SPI port.
//
// The serial interface is write only. Several controllers can share the SPI
// clock and data wires, each one having its own chip select (CS) wire. CS is
// active high.
package serial

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GermanBionicSystems/st7920"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const (
	// Freq is the SPI clock NewSPI connects at.
	Freq = physic.MegaHertz
	// Mode is the SPI mode NewSPI connects with.
	Mode = spi.Mode3
)

// LinkError is returned when the SPI transfer failed.
type LinkError struct {
	Err error
}

func (e *LinkError) Error() string {
	return "serial: link: " + e.Err.Error()
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

// PinError is returned when a chip select wire could not be driven.
type PinError struct {
	Err error
}

func (e *PinError) Error() string {
	return "serial: chip select: " + e.Err.Error()
}

func (e *PinError) Unwrap() error {
	return e.Err
}

// syncByte starts every transfer: five ones, RW, RS and a zero.
func syncByte(rw, rs bool) byte {
	b := byte(0xF8)
	if rw {
		b |= 1 << 2
	}
	if rs {
		b |= 1 << 1
	}
	return b
}

// encodeU8 returns the wire bytes of a byte write to the register selected
// by rs.
func encodeU8(rs bool, v byte) []byte {
	return []byte{syncByte(false, rs), v & 0xF0, v << 4}
}

// encodeU16 returns the wire bytes of a word write, high byte first.
func encodeU16(rs bool, v uint16) []byte {
	hi, lo := byte(v>>8), byte(v)
	return []byte{syncByte(false, rs), hi & 0xF0, hi << 4, lo & 0xF0, lo << 4}
}

type line struct {
	cs gpio.PinOut
	s  *st7920.Schedule
}

// Bus is an SPI link shared by one or more controllers.
//
// It is safe for concurrent use: each transaction holds the bus for its
// whole duration, including the waits.
type Bus struct {
	mu    sync.Mutex
	c     spi.Conn
	lines []line
}

// NewSPI connects to p and returns a Bus with one controller per chip
// select wire.
func NewSPI(p spi.Port, cs []gpio.PinOut, clk st7920.Clock) (*Bus, error) {
	c, err := p.Connect(Freq, Mode, 8)
	if err != nil {
		return nil, fmt.Errorf("serial: %w", err)
	}
	return New(c, cs, clk)
}

// New returns a Bus on an already connected SPI link. All the chip select
// wires are driven low.
//
// clk defaults to st7920.RealClock() when nil.
func New(c spi.Conn, cs []gpio.PinOut, clk st7920.Clock) (*Bus, error) {
	if len(cs) == 0 {
		return nil, errors.New("serial: need at least one chip select wire")
	}
	if clk == nil {
		clk = st7920.RealClock()
	}
	b := &Bus{c: c}
	for _, p := range cs {
		if err := p.Out(gpio.Low); err != nil {
			return nil, &PinError{Err: err}
		}
		b.lines = append(b.lines, line{cs: p, s: st7920.NewSchedule(clk)})
	}
	return b, nil
}

// Num returns the number of controllers on the bus.
func (b *Bus) Num() int {
	return len(b.lines)
}

// Get returns the Interface to the controller on chip select wire i, or nil
// when i is out of range.
func (b *Bus) Get(i int) *Interface {
	if i < 0 || i >= len(b.lines) {
		return nil
	}
	return &Interface{b: b, i: i}
}

// Halt implements conn.Resource.
//
// It deselects all the controllers.
func (b *Bus) Halt() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range b.lines {
		if err := l.cs.Out(gpio.Low); err != nil {
			return &PinError{Err: err}
		}
	}
	return nil
}

func (b *Bus) String() string {
	return fmt.Sprintf("serial{%s, %d CS}", b.c, len(b.lines))
}

// Interface is the connection to one controller of a Bus.
//
// It implements st7920.Conn.
type Interface struct {
	b *Bus
	i int
}

// Transaction waits for the previous transaction to complete, selects the
// controller and runs body. The controller is then busy for d.
//
// A chip select failure is reported as a *PinError, and takes precedence
// over a failure of body, reported as a *LinkError.
func (i *Interface) Transaction(d time.Duration, body func(c spi.Conn) error) error {
	b := i.b
	b.mu.Lock()
	defer b.mu.Unlock()
	l := &b.lines[i.i]
	l.s.Wait()
	if err := l.cs.Out(gpio.High); err != nil {
		return &PinError{Err: err}
	}
	var err error
	if err2 := body(b.c); err2 != nil {
		err = &LinkError{Err: err2}
	}
	if err2 := l.cs.Out(gpio.Low); err2 != nil {
		err = &PinError{Err: err2}
	}
	l.s.Book(d)
	return err
}

// Execute implements st7920.Conn.
//
// A Write is one transfer. An instruction of two bytes is sent as two
// instructions, each waiting for the previous one to complete.
func (i *Interface) Execute(cmd st7920.Command) error {
	d := cmd.ExecutionTime()
	switch c := cmd.(type) {
	case st7920.Write:
		return i.Transaction(d, tx(encodeU16(true, uint16(c))))
	case st7920.Instruction:
		for _, op := range c.Bytes() {
			if err := i.Transaction(d, tx(encodeU8(false, op))); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("serial: unsupported command %s", cmd)
	}
}

// Hold implements st7920.Conn.
func (i *Interface) Hold(d time.Duration) {
	i.b.mu.Lock()
	defer i.b.mu.Unlock()
	i.b.lines[i.i].s.Book(d)
}

func (i *Interface) String() string {
	return fmt.Sprintf("%s[%d]", i.b, i.i)
}

func tx(w []byte) func(c spi.Conn) error {
	return func(c spi.Conn) error {
		return c.Tx(w, nil)
	}
}

var (
	_ st7920.Conn   = &Interface{}
	_ conn.Resource = &Bus{}
)

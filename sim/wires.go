// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sim

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// Wires is a fake parallel bus: RS, R/W and 4 or 8 data wires shared by the
// Chips attached to it.
type Wires struct {
	RS *gpiotest.Pin
	RW *gpiotest.Pin
	// DB is DB4..DB7 in 4 bit mode, DB0..DB7 in 8 bit mode.
	DB []*gpiotest.Pin

	mu sync.Mutex
	n  int
}

// NewWires returns a parallel bus with width data wires, 4 or 8.
func NewWires(width int) (*Wires, error) {
	if width != 4 && width != 8 {
		return nil, fmt.Errorf("sim: need 4 or 8 data wires, got %d", width)
	}
	w := &Wires{
		RS: &gpiotest.Pin{N: "RS"},
		RW: &gpiotest.Pin{N: "RW"},
	}
	first := 8 - width
	for i := 0; i < width; i++ {
		w.DB = append(w.DB, &gpiotest.Pin{N: fmt.Sprintf("DB%d", first+i), Num: first + i})
	}
	return w, nil
}

// Data returns the data wires as gpio.PinIO, ready for parallel.Pins.
func (w *Wires) Data() []gpio.PinIO {
	out := make([]gpio.PinIO, len(w.DB))
	for i, p := range w.DB {
		out[i] = p
	}
	return out
}

// Attach connects c to the bus and returns its enable wire.
func (w *Wires) Attach(c *Chip) gpio.PinIO {
	w.mu.Lock()
	defer w.mu.Unlock()
	e := &enablePin{Pin: gpiotest.Pin{N: fmt.Sprintf("E%d", w.n), Num: w.n}, w: w, c: c}
	w.n++
	return e
}

// enablePin latches data into its Chip on falling edges, and drives the data
// wires while high during reads.
type enablePin struct {
	gpiotest.Pin
	w *Wires
	c *Chip

	// Second nibble of the current byte in 4 bit mode.
	second bool
	hi     byte
	rd     byte
}

func (e *enablePin) Out(l gpio.Level) error {
	prev := e.Pin.Read()
	if err := e.Pin.Out(l); err != nil {
		return err
	}
	if l == prev {
		return nil
	}
	rs := e.w.RS.Read() == gpio.High
	read := e.w.RW.Read() == gpio.High
	switch {
	case l == gpio.High && read:
		e.drive(rs)
	case l == gpio.Low && !read:
		e.sample(rs)
	}
	return nil
}

func (e *enablePin) bits() byte {
	var v byte
	for i, p := range e.w.DB {
		if p.Read() == gpio.High {
			v |= 1 << uint(i)
		}
	}
	return v
}

func (e *enablePin) setBits(v byte) {
	for i, p := range e.w.DB {
		_ = p.Out(gpio.Level(v>>uint(i)&1 != 0))
	}
}

func (e *enablePin) sample(rs bool) {
	v := e.bits()
	if len(e.w.DB) == 8 {
		e.c.writeByte(rs, v)
		return
	}
	if !e.second {
		e.hi = v
		e.second = true
		return
	}
	e.second = false
	e.c.writeByte(rs, e.hi<<4|v)
}

func (e *enablePin) drive(rs bool) {
	if len(e.w.DB) == 8 {
		e.setBits(e.c.readByte(rs))
		return
	}
	if !e.second {
		e.rd = e.c.readByte(rs)
		e.second = true
		e.setBits(e.rd >> 4)
		return
	}
	e.second = false
	e.setBits(e.rd & 0x0F)
}

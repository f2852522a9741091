// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sim emulates ST7920 controllers behind fake wires.
//
// A Chip decodes what it receives over a parallel bus (Wires) or a serial
// link (Link) the way the controller does, and keeps its RAM contents so
// they can be checked or rendered on a terminal with Screen.
package sim

import (
	"fmt"
	"image"
	"image/color"
	"sync"
)

const (
	// Width and Height are the size of the emulated 128x64 panel.
	Width  = 128
	Height = 64
)

type target uint8

const (
	targetDDRAM target = iota
	targetCGRAM
	targetGDRAM
)

// Chip is an emulated ST7920 controller.
//
// It is safe for concurrent use.
type Chip struct {
	mu sync.Mutex

	ddram [128]uint16
	cgram [64]uint16
	gdram [64][16]uint16

	target target
	ac     uint8
	gx, gy uint8
	// gdramAddr is true between the two bytes of a GDRAM address.
	gdramAddr bool

	re, g     bool
	increment bool
	shift     bool
	display   bool
	cursor    bool
	blink     bool
	shiftPos  int
	sr        bool
	scroll    uint8
	reversed  int
	standBy   bool

	// Partial word being written or read, high byte first.
	wPending bool
	wHi      byte
	rPending bool
	rLo      byte

	busyReads  int
	violations []string
}

// New returns a Chip in its power-on state.
func New() *Chip {
	c := &Chip{increment: true, reversed: -1}
	for i := range c.ddram {
		c.ddram[i] = 0x2020
	}
	return c
}

// BusyReads makes the next n status reads report the busy flag.
func (c *Chip) BusyReads(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busyReads = n
}

// Violations returns the protocol violations seen so far, like a function
// set flipping RE and G at once.
func (c *Chip) Violations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.violations...)
}

// State is a snapshot of the controller registers.
type State struct {
	Extended  bool
	Graphic   bool
	Display   bool
	Cursor    bool
	Blink     bool
	Increment bool
	Shift     bool
	AC        uint8
	Scroll    uint8
	// Reversed is the reversed line, or -1.
	Reversed int
	StandBy  bool
}

// State returns a snapshot of the controller registers.
func (c *Chip) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Extended:  c.re,
		Graphic:   c.g,
		Display:   c.display,
		Cursor:    c.cursor,
		Blink:     c.blink,
		Increment: c.increment,
		Shift:     c.shift,
		AC:        c.ac,
		Scroll:    c.scroll,
		Reversed:  c.reversed,
		StandBy:   c.standBy,
	}
}

// DDRAM returns the word at DDRAM address addr.
func (c *Chip) DDRAM(addr uint8) uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ddram[addr&0x7F]
}

// CGRAM returns the word at CGRAM address addr.
func (c *Chip) CGRAM(addr uint8) uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cgram[addr&0x3F]
}

// GDRAM returns the word at GDRAM vertical address y, horizontal address x.
func (c *Chip) GDRAM(x, y uint8) uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gdram[y&0x3F][x&0x0F]
}

// Text returns the four lines of 16 half width characters shown in text
// mode. Codes outside of printable ASCII are shown as '.'.
func (c *Chip) Text() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]string, 4)
	for i, base := range [4]int{0x00, 0x10, 0x08, 0x18} {
		b := make([]byte, 0, 16)
		for w := 0; w < 8; w++ {
			v := c.ddram[(base+w+c.shiftPos)&0x7F]
			b = append(b, printable(byte(v>>8)), printable(byte(v)))
		}
		lines[i] = string(b)
	}
	return lines
}

func printable(b byte) byte {
	if b < 0x20 || b > 0x7E {
		return '.'
	}
	return b
}

// Image returns the graphic RAM as a 128x64 image, white pixels set.
//
// Horizontal addresses 0 to 7 are the upper half of the panel, 8 to 15 the
// lower half.
func (c *Chip) Image() *image.Gray {
	c.mu.Lock()
	defer c.mu.Unlock()
	img := image.NewGray(image.Rect(0, 0, Width, Height))
	for y := 0; y < Height/2; y++ {
		for x := 0; x < 16; x++ {
			w := c.gdram[y][x]
			py := y
			if x >= 8 {
				py += Height / 2
			}
			for bit := 0; bit < 16; bit++ {
				if w&(0x8000>>uint(bit)) != 0 {
					img.SetGray((x%8)*16+bit, py, color.Gray{Y: 0xFF})
				}
			}
		}
	}
	return img
}

func (c *Chip) violation(format string, a ...interface{}) {
	c.violations = append(c.violations, fmt.Sprintf(format, a...))
}

// writeByte is a byte written to the instruction (rs false) or the data
// register.
func (c *Chip) writeByte(rs bool, b byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !rs {
		c.instruction(b)
		return
	}
	c.rPending = false
	if !c.wPending {
		c.wPending = true
		c.wHi = b
		return
	}
	c.wPending = false
	c.writeWord(uint16(c.wHi)<<8 | uint16(b))
}

// readByte is a byte read from the status (rs false) or the data register.
func (c *Chip) readByte(rs bool) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !rs {
		v := c.ac & 0x7F
		if c.busyReads > 0 {
			c.busyReads--
			v |= 0x80
		}
		return v
	}
	c.wPending = false
	if c.rPending {
		c.rPending = false
		return c.rLo
	}
	w := c.readWord()
	c.rPending = true
	c.rLo = byte(w)
	return byte(w >> 8)
}

func (c *Chip) writeWord(w uint16) {
	switch c.target {
	case targetDDRAM:
		c.ddram[c.ac&0x7F] = w
	case targetCGRAM:
		c.cgram[c.ac&0x3F] = w
	case targetGDRAM:
		c.gdram[c.gy][c.gx] = w
		c.gx = (c.gx + 1) & 0x0F
		return
	}
	c.step()
}

func (c *Chip) readWord() uint16 {
	var w uint16
	switch c.target {
	case targetDDRAM:
		w = c.ddram[c.ac&0x7F]
	case targetCGRAM:
		w = c.cgram[c.ac&0x3F]
	case targetGDRAM:
		w = c.gdram[c.gy][c.gx]
		c.gx = (c.gx + 1) & 0x0F
		return w
	}
	c.step()
	return w
}

// step moves the address counter after a RAM access.
func (c *Chip) step() {
	if c.increment {
		c.ac = (c.ac + 1) & 0x7F
		if c.shift {
			c.shiftPos++
		}
	} else {
		c.ac = (c.ac - 1) & 0x7F
		if c.shift {
			c.shiftPos--
		}
	}
}

func (c *Chip) instruction(b byte) {
	c.wPending = false
	c.rPending = false
	c.standBy = false
	if c.gdramAddr {
		c.gdramAddr = false
		if b&0x80 == 0 {
			c.violation("GDRAM address: got %#02x as horizontal address", b)
			return
		}
		c.gx = b & 0x0F
		c.target = targetGDRAM
		return
	}
	switch {
	case b&0xE0 == 0x20:
		c.functionSet(b)
	case c.re:
		c.extended(b)
	default:
		c.basic(b)
	}
}

func (c *Chip) functionSet(b byte) {
	re := b&0x04 != 0
	g := c.g
	if re {
		g = b&0x02 != 0
	}
	if re != c.re && g != c.g {
		c.violation("function set %#02x changes RE and G at once", b)
	}
	c.re = re
	c.g = g
}

func (c *Chip) basic(b byte) {
	switch {
	case b&0x80 != 0:
		c.target = targetDDRAM
		c.ac = b & 0x7F
	case b&0x40 != 0:
		if c.sr {
			c.violation("CGRAM address %#02x while vertical scroll is enabled", b)
		}
		c.target = targetCGRAM
		c.ac = b & 0x3F
	case b&0x10 != 0:
		right := b&0x04 != 0
		if b&0x08 != 0 {
			if right {
				c.shiftPos--
			} else {
				c.shiftPos++
			}
			return
		}
		if right {
			c.ac = (c.ac + 1) & 0x7F
		} else {
			c.ac = (c.ac - 1) & 0x7F
		}
	case b&0x08 != 0:
		c.display = b&0x04 != 0
		c.cursor = b&0x02 != 0
		c.blink = b&0x01 != 0
	case b&0x04 != 0:
		c.increment = b&0x02 != 0
		c.shift = b&0x01 != 0
	case b&0x02 != 0:
		c.target = targetDDRAM
		c.ac = 0
		c.shiftPos = 0
	case b == 0x01:
		for i := range c.ddram {
			c.ddram[i] = 0x2020
		}
		c.target = targetDDRAM
		c.ac = 0
		c.shiftPos = 0
		c.increment = true
	}
}

func (c *Chip) extended(b byte) {
	switch {
	case b&0x80 != 0:
		c.gy = b & 0x3F
		c.gdramAddr = true
	case b&0x40 != 0:
		if !c.sr {
			c.violation("scroll offset %#02x while vertical scroll is disabled", b)
			return
		}
		c.scroll = b & 0x3F
	case b&0x04 != 0:
		if c.reversed >= 0 {
			c.reversed = -1
		} else {
			c.reversed = int(b & 0x03)
		}
	case b&0x02 != 0:
		c.sr = b&0x01 != 0
	case b == 0x01:
		c.standBy = true
	}
}

// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7920

import (
	"fmt"
	"time"
)

const (
	execTime      = 72 * time.Microsecond
	clearExecTime = 1600 * time.Microsecond
)

// set is the instruction set a command is decoded in.
type set uint8

const (
	setAny set = iota
	setBasic
	setExtended
	setGraphic
)

// Command is one of the controller's instructions, or a RAM write.
//
// The set of commands is closed: only the types declared in this package
// implement it.
type Command interface {
	fmt.Stringer
	// ExecutionTime returns how long the controller needs before it can
	// accept anything else.
	ExecutionTime() time.Duration

	set() set
}

// Instruction is a Command that has an opcode.
//
// Every Command but Write is an Instruction.
type Instruction interface {
	Command
	// Bytes returns the 1 or 2 opcode bytes sent to the command register.
	Bytes() []byte
}

func bit(v bool, n uint) byte {
	if v {
		return 1 << n
	}
	return 0
}

// Write writes a word into the currently selected RAM, high byte first.
//
// It has no opcode: the transports send it to the RAM write register.
type Write uint16

func (Write) ExecutionTime() time.Duration { return execTime }
func (Write) set() set                     { return setAny }
func (w Write) String() string             { return fmt.Sprintf("Write(0x%04x)", uint16(w)) }

// Clear fills DDRAM with spaces (0x20), resets the address counter and the
// display shift, and sets EntryMode{Increment: true}.
type Clear struct{}

func (Clear) ExecutionTime() time.Duration { return clearExecTime }
func (Clear) set() set                     { return setBasic }
func (Clear) Bytes() []byte                { return []byte{0x01} }
func (Clear) String() string               { return "Clear" }

// Home resets the address counter and the display shift.
type Home struct{}

func (Home) ExecutionTime() time.Duration { return execTime }
func (Home) set() set                     { return setBasic }
func (Home) Bytes() []byte                { return []byte{0x02} }
func (Home) String() string               { return "Home" }

// EntryMode chooses what happens after each RAM read or write.
type EntryMode struct {
	// Increment the address counter, or decrement it.
	Increment bool
	// Shift the whole display in the direction of the address counter.
	Shift bool
}

func (EntryMode) ExecutionTime() time.Duration { return execTime }
func (EntryMode) set() set                     { return setBasic }

func (e EntryMode) Bytes() []byte {
	return []byte{0x04 | bit(e.Increment, 1) | bit(e.Shift, 0)}
}

func (e EntryMode) String() string {
	return fmt.Sprintf("EntryMode{Increment:%t Shift:%t}", e.Increment, e.Shift)
}

// DisplayOnOff turns the display, the cursor and the cursor blink on or off.
type DisplayOnOff struct {
	Display bool
	Cursor  bool
	Blink   bool
}

func (DisplayOnOff) ExecutionTime() time.Duration { return execTime }
func (DisplayOnOff) set() set                     { return setBasic }

func (d DisplayOnOff) Bytes() []byte {
	return []byte{0x08 | bit(d.Display, 2) | bit(d.Cursor, 1) | bit(d.Blink, 0)}
}

func (d DisplayOnOff) String() string {
	return fmt.Sprintf("DisplayOnOff{Display:%t Cursor:%t Blink:%t}", d.Display, d.Cursor, d.Blink)
}

// CursorDisplayCtrl moves the cursor, or shifts the whole display, by one
// position.
//
// When the display shifts the cursor follows it and the address counter is
// left unchanged.
type CursorDisplayCtrl struct {
	// ShiftDisplay shifts the display instead of moving the cursor.
	ShiftDisplay bool
	// Right moves right, or left.
	Right bool
}

func (CursorDisplayCtrl) ExecutionTime() time.Duration { return execTime }
func (CursorDisplayCtrl) set() set                     { return setBasic }

func (c CursorDisplayCtrl) Bytes() []byte {
	return []byte{0x10 | bit(c.ShiftDisplay, 3) | bit(c.Right, 2)}
}

func (c CursorDisplayCtrl) String() string {
	return fmt.Sprintf("CursorDisplayCtrl{ShiftDisplay:%t Right:%t}", c.ShiftDisplay, c.Right)
}

// SelectBasic latches the basic instruction set.
type SelectBasic struct{}

func (SelectBasic) ExecutionTime() time.Duration { return execTime }
func (SelectBasic) set() set                     { return setBasic }
func (SelectBasic) Bytes() []byte                { return []byte{0x20} }
func (SelectBasic) String() string               { return "SelectBasic" }

// CGRAMAddr sets the character generator RAM address (6 bits). Following
// reads and writes access CGRAM.
type CGRAMAddr uint8

func (CGRAMAddr) ExecutionTime() time.Duration { return execTime }
func (CGRAMAddr) set() set                     { return setBasic }
func (a CGRAMAddr) Bytes() []byte              { return []byte{0x40 | byte(a)&0x3F} }
func (a CGRAMAddr) String() string             { return fmt.Sprintf("CGRAMAddr(0x%02x)", uint8(a)) }

// DDRAMAddr sets the display data RAM address (7 bits). Following reads and
// writes access DDRAM.
type DDRAMAddr uint8

func (DDRAMAddr) ExecutionTime() time.Duration { return execTime }
func (DDRAMAddr) set() set                     { return setBasic }
func (a DDRAMAddr) Bytes() []byte              { return []byte{0x80 | byte(a)&0x7F} }
func (a DDRAMAddr) String() string             { return fmt.Sprintf("DDRAMAddr(0x%02x)", uint8(a)) }

// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7920

import (
	"fmt"
	"time"
)

// StandBy enters stand-by mode. Any other instruction wakes the controller.
type StandBy struct{}

func (StandBy) ExecutionTime() time.Duration { return execTime }
func (StandBy) set() set                     { return setExtended }
func (StandBy) Bytes() []byte                { return []byte{0x01} }
func (StandBy) String() string               { return "StandBy" }

// EnableScroll makes ScrollOffset address the vertical scroll position.
type EnableScroll struct{}

func (EnableScroll) ExecutionTime() time.Duration { return execTime }
func (EnableScroll) set() set                     { return setExtended }
func (EnableScroll) Bytes() []byte                { return []byte{0x03} }
func (EnableScroll) String() string               { return "EnableScroll" }

// EnableCGRAM makes CGRAMAddr usable again after EnableScroll.
type EnableCGRAM struct{}

func (EnableCGRAM) ExecutionTime() time.Duration { return execTime }
func (EnableCGRAM) set() set                     { return setExtended }
func (EnableCGRAM) Bytes() []byte                { return []byte{0x02} }
func (EnableCGRAM) String() string               { return "EnableCGRAM" }

// Reverse toggles the reversal of one of the four lines (2 bits).
//
// Only one line can be reversed at a time: sending it again restores the
// line, whatever the argument.
type Reverse uint8

func (Reverse) ExecutionTime() time.Duration { return execTime }
func (Reverse) set() set                     { return setExtended }
func (l Reverse) Bytes() []byte              { return []byte{0x04 | byte(l)&0x03} }
func (l Reverse) String() string             { return fmt.Sprintf("Reverse(%d)", uint8(l)) }

// SelectExtended latches the extended instruction set, with graphic display
// off.
type SelectExtended struct{}

func (SelectExtended) ExecutionTime() time.Duration { return execTime }
func (SelectExtended) set() set                     { return setExtended }
func (SelectExtended) Bytes() []byte                { return []byte{0x24} }
func (SelectExtended) String() string               { return "SelectExtended" }

// SelectGraphic latches the extended instruction set with graphic display
// on.
//
// Coming from the basic instruction set, SelectExtended must be sent first.
type SelectGraphic struct{}

func (SelectGraphic) ExecutionTime() time.Duration { return execTime }
func (SelectGraphic) set() set                     { return setGraphic }
func (SelectGraphic) Bytes() []byte                { return []byte{0x26} }
func (SelectGraphic) String() string               { return "SelectGraphic" }

// ScrollOffset sets the vertical scroll offset (5 bits). EnableScroll must
// have been sent first.
type ScrollOffset uint8

func (ScrollOffset) ExecutionTime() time.Duration { return execTime }
func (ScrollOffset) set() set                     { return setExtended }
func (o ScrollOffset) Bytes() []byte              { return []byte{0x40 | byte(o)&0x1F} }
func (o ScrollOffset) String() string             { return fmt.Sprintf("ScrollOffset(%d)", uint8(o)) }

// GDRAMAddr sets the graphic RAM address. Following writes access GDRAM.
//
// It is sent as two instructions, Y first.
type GDRAMAddr struct {
	X uint8 // 6 bits
	Y uint8 // 4 bits
}

func (GDRAMAddr) ExecutionTime() time.Duration { return execTime }
func (GDRAMAddr) set() set                     { return setGraphic }

func (a GDRAMAddr) Bytes() []byte {
	return []byte{0x80 | a.Y&0x0F, 0x80 | a.X&0x3F}
}

func (a GDRAMAddr) String() string {
	return fmt.Sprintf("GDRAMAddr{X:%d Y:%d}", a.X, a.Y)
}

var (
	_ Command     = Write(0)
	_ Instruction = Clear{}
	_ Instruction = Home{}
	_ Instruction = EntryMode{}
	_ Instruction = DisplayOnOff{}
	_ Instruction = CursorDisplayCtrl{}
	_ Instruction = SelectBasic{}
	_ Instruction = CGRAMAddr(0)
	_ Instruction = DDRAMAddr(0)
	_ Instruction = StandBy{}
	_ Instruction = EnableScroll{}
	_ Instruction = EnableCGRAM{}
	_ Instruction = Reverse(0)
	_ Instruction = SelectExtended{}
	_ Instruction = SelectGraphic{}
	_ Instruction = ScrollOffset(0)
	_ Instruction = GDRAMAddr{}
)

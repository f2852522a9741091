// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7920

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3"
)

// busyPollTimeout bounds the busy flag poll so a silent controller cannot
// hang the caller.
const busyPollTimeout = time.Millisecond

// ErrNotReadable is returned by the read methods of a Dev whose connection
// cannot read the controller back, like the serial interface.
var ErrNotReadable = errors.New("st7920: connection cannot read back")

// Conn is a connection to a single controller: one enable or chip select
// line of a parallel.Bus or serial.Bus.
type Conn interface {
	// Execute waits until the controller is ready and sends cmd.
	Execute(cmd Command) error
	// Hold keeps the line idle for at least d from now.
	Hold(d time.Duration)
}

// ReadConn is a Conn that can read the controller back.
type ReadConn interface {
	Conn
	// Read reads a word from the currently selected RAM.
	Read() (uint16, error)
	// ReadStatus reads the busy flag and the address counter.
	ReadStatus() (busy bool, ac uint8, err error)
}

// Opts holds the driver settings.
type Opts struct {
	// PollBusy polls the busy flag before switching back to the basic
	// instruction set. It needs a ReadConn; other connections ignore it and
	// rely on the execution times only.
	PollBusy bool
	// Clock measures the busy flag poll timeout. Defaults to RealClock().
	Clock Clock
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{}

// Dev is a handle to an ST7920 controller.
//
// It keeps track of the instruction set latched in the controller and sends
// the intermediate function set instructions the controller needs.
//
// Dev is not safe for concurrent use.
type Dev struct {
	c    Conn
	r    ReadConn
	clk  Clock
	opts Opts
	mode Mode
}

// initSequence is the power-on sequence; each hold is applied before its
// instruction.
var initSequence = []struct {
	hold time.Duration
	cmd  Instruction
}{
	{80 * time.Millisecond, SelectBasic{}},
	{200 * time.Microsecond, SelectBasic{}},
	{200 * time.Microsecond, DisplayOnOff{Display: true}},
	{200 * time.Microsecond, Clear{}},
	{20 * time.Millisecond, EntryMode{Increment: true}},
}

// New returns a Dev talking over c, initialized and ready for use.
func New(c Conn, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{c: c, opts: *opts, clk: opts.Clock}
	if d.clk == nil {
		d.clk = RealClock()
	}
	if r, ok := c.(ReadConn); ok {
		d.r = r
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// Init runs the power-on sequence: display on without cursor, cleared, with
// the address counter incrementing.
//
// The sequence stops at the first error. The controller state is then
// unknown and the only recovery is to call Init again.
func (d *Dev) Init() error {
	d.mode = Basic
	for _, s := range initSequence {
		d.c.Hold(s.hold)
		if err := d.c.Execute(s.cmd); err != nil {
			return fmt.Errorf("st7920: init %s: %w", s.cmd, err)
		}
	}
	return nil
}

// Mode returns the instruction set the controller is in.
func (d *Dev) Mode() Mode {
	return d.mode
}

// Execute sends cmd, preceded by the instructions needed to select the
// instruction set cmd belongs to.
func (d *Dev) Execute(cmd Command) error {
	pre, to := plan(d.mode, cmd)
	for _, p := range pre {
		if err := d.send(p); err != nil {
			return err
		}
		_, d.mode = plan(d.mode, p)
	}
	if err := d.send(cmd); err != nil {
		return err
	}
	d.mode = to
	return nil
}

func (d *Dev) send(cmd Command) error {
	if _, ok := cmd.(SelectBasic); ok && d.opts.PollBusy {
		if err := d.waitReady(); err != nil {
			return err
		}
	}
	return d.c.Execute(cmd)
}

// waitReady polls the busy flag until it clears or busyPollTimeout elapsed.
func (d *Dev) waitReady() error {
	if d.r == nil {
		return nil
	}
	start := d.clk.Now()
	for {
		busy, _, err := d.r.ReadStatus()
		if err != nil || !busy {
			return err
		}
		if d.clk.Now().Sub(start) >= busyPollTimeout {
			return nil
		}
	}
}

// Write writes a word into the currently selected RAM.
func (d *Dev) Write(data uint16) error {
	return d.Execute(Write(data))
}

// WriteWords writes words in order into the currently selected RAM.
func (d *Dev) WriteWords(words ...uint16) error {
	for _, w := range words {
		if err := d.Execute(Write(w)); err != nil {
			return err
		}
	}
	return nil
}

// Clear clears DDRAM and moves the cursor home.
func (d *Dev) Clear() error {
	return d.Execute(Clear{})
}

// Home moves the cursor home and resets the display shift.
func (d *Dev) Home() error {
	return d.Execute(Home{})
}

// EntryMode sets the address counter direction and the display shift.
func (d *Dev) EntryMode(increment, shift bool) error {
	return d.Execute(EntryMode{Increment: increment, Shift: shift})
}

// DisplayOnOff turns the display, cursor and blink on or off.
func (d *Dev) DisplayOnOff(display, cursor, blink bool) error {
	return d.Execute(DisplayOnOff{Display: display, Cursor: cursor, Blink: blink})
}

// CursorDisplayCtrl moves the cursor or shifts the display by one position.
func (d *Dev) CursorDisplayCtrl(shiftDisplay, right bool) error {
	return d.Execute(CursorDisplayCtrl{ShiftDisplay: shiftDisplay, Right: right})
}

func (d *Dev) SelectBasic() error {
	return d.Execute(SelectBasic{})
}

func (d *Dev) CGRAMAddr(addr uint8) error {
	return d.Execute(CGRAMAddr(addr))
}

func (d *Dev) DDRAMAddr(addr uint8) error {
	return d.Execute(DDRAMAddr(addr))
}

func (d *Dev) StandBy() error {
	return d.Execute(StandBy{})
}

func (d *Dev) EnableScroll() error {
	return d.Execute(EnableScroll{})
}

func (d *Dev) EnableCGRAM() error {
	return d.Execute(EnableCGRAM{})
}

// Reverse toggles the reversal of line.
func (d *Dev) Reverse(line uint8) error {
	return d.Execute(Reverse(line))
}

func (d *Dev) SelectExtended() error {
	return d.Execute(SelectExtended{})
}

func (d *Dev) SelectGraphic() error {
	return d.Execute(SelectGraphic{})
}

func (d *Dev) ScrollOffset(offset uint8) error {
	return d.Execute(ScrollOffset(offset))
}

// GDRAMAddr sets the graphic RAM address, switching to the graphic
// instruction set if needed.
func (d *Dev) GDRAMAddr(x, y uint8) error {
	return d.Execute(GDRAMAddr{X: x, Y: y})
}

// Read reads a word from the currently selected RAM.
func (d *Dev) Read() (uint16, error) {
	if d.r == nil {
		return 0, ErrNotReadable
	}
	return d.r.Read()
}

// ReadStatus reads the busy flag and the address counter.
func (d *Dev) ReadStatus() (bool, uint8, error) {
	if d.r == nil {
		return false, 0, ErrNotReadable
	}
	return d.r.ReadStatus()
}

// AddressCounter reads the address counter.
func (d *Dev) AddressCounter() (uint8, error) {
	_, ac, err := d.ReadStatus()
	return ac, err
}

// Busy reads the busy flag.
func (d *Dev) Busy() (bool, error) {
	busy, _, err := d.ReadStatus()
	return busy, err
}

// Halt implements conn.Resource.
//
// It turns the display off; DDRAM is kept.
func (d *Dev) Halt() error {
	return d.Execute(DisplayOnOff{})
}

func (d *Dev) String() string {
	return fmt.Sprintf("ST7920{%v, %s}", d.c, d.mode)
}

var _ conn.Resource = &Dev{}

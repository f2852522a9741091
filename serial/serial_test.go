// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package serial

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/GermanBionicSystems/st7920"
	"github.com/GermanBionicSystems/st7920/st7920test"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"
)

var (
	errBroken = errors.New("broken")
	errLink   = errors.New("link down")
)

type csPin struct {
	gpiotest.Pin
	failHigh bool
	failLow  bool
}

func (p *csPin) Out(l gpio.Level) error {
	if (l == gpio.High && p.failHigh) || (l == gpio.Low && p.failLow) {
		return errBroken
	}
	return p.Pin.Out(l)
}

// checkConn fails the test when a transfer happens while no controller is
// selected.
type checkConn struct {
	spi.Conn
	t   *testing.T
	cs  []*csPin
	err error
}

func (c *checkConn) Tx(w, r []byte) error {
	selected := 0
	for _, p := range c.cs {
		if p.L == gpio.High {
			selected++
		}
	}
	if selected != 1 {
		c.t.Errorf("Tx(%#v) with %d controllers selected", w, selected)
	}
	if c.err != nil {
		return c.err
	}
	return c.Conn.Tx(w, r)
}

func newBus(t *testing.T, n int, ops []conntest.IO) (*Bus, *spitest.Playback, *checkConn, *st7920test.Clock) {
	p := &spitest.Playback{Playback: conntest.Playback{Ops: ops, DontPanic: true}}
	c, err := p.Connect(Freq, Mode, 8)
	if err != nil {
		t.Fatal(err)
	}
	check := &checkConn{Conn: c, t: t}
	var cs []gpio.PinOut
	for i := 0; i < n; i++ {
		pin := &csPin{Pin: gpiotest.Pin{N: "CS", Num: i, L: gpio.High}}
		check.cs = append(check.cs, pin)
		cs = append(cs, pin)
	}
	clk := st7920test.NewClock()
	b, err := New(check, cs, clk)
	if err != nil {
		t.Fatal(err)
	}
	for _, pin := range check.cs {
		if pin.L != gpio.Low {
			t.Fatal("New() must deselect all the controllers")
		}
	}
	return b, p, check, clk
}

func TestEncode(t *testing.T) {
	for _, tc := range []struct {
		name string
		got  []byte
		want []byte
	}{
		{"sync_command", []byte{syncByte(false, false)}, []byte{0xF8}},
		{"sync_status", []byte{syncByte(true, false)}, []byte{0xFC}},
		{"sync_write", []byte{syncByte(false, true)}, []byte{0xFA}},
		{"sync_read", []byte{syncByte(true, true)}, []byte{0xFE}},
		{"u8", encodeU8(false, 0x90), []byte{0xF8, 0x90, 0x00}},
		{"u8_data", encodeU8(true, 0xA5), []byte{0xFA, 0xA0, 0x50}},
		{"u16", encodeU16(true, 0x1234), []byte{0xFA, 0x10, 0x20, 0x30, 0x40}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if !bytes.Equal(tc.got, tc.want) {
				t.Fatalf("got %#v, want %#v", tc.got, tc.want)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	b, p, _, clk := newBus(t, 1, []conntest.IO{
		{W: []byte{0xFA, 0x10, 0x20, 0x30, 0x40}},
		{W: []byte{0xF8, 0x80, 0xA0}},
		{W: []byte{0xF8, 0x80, 0x30}},
		{W: []byte{0xF8, 0x00, 0x10}},
	})
	i := b.Get(0)
	if err := i.Execute(st7920.Write(0x1234)); err != nil {
		t.Fatal(err)
	}
	if err := i.Execute(st7920.GDRAMAddr{X: 3, Y: 10}); err != nil {
		t.Fatal(err)
	}
	if err := i.Execute(st7920.Clear{}); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	// Each transfer waited for the previous one.
	if got := clk.Elapsed(); got != 3*72*time.Microsecond {
		t.Fatalf("Elapsed() = %s", got)
	}
	i.Hold(time.Millisecond)
	// Hold never shortens the pending Clear.
	if got := b.lines[0].s.NotBefore().Sub(clk.Now()); got != 1600*time.Microsecond {
		t.Fatalf("deadline in %s", got)
	}
}

func TestSharedBus(t *testing.T) {
	b, p, _, clk := newBus(t, 2, []conntest.IO{
		{W: []byte{0xF8, 0x00, 0x10}},
		{W: []byte{0xF8, 0x00, 0x20}},
	})
	if b.Num() != 2 || b.Get(2) != nil {
		t.Fatal("unexpected controllers")
	}
	if err := b.Get(0).Execute(st7920.Clear{}); err != nil {
		t.Fatal(err)
	}
	if err := b.Get(1).Execute(st7920.Home{}); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if got := clk.Elapsed(); got != 0 {
		t.Fatalf("controller 1 waited %s", got)
	}
}

func TestErrors(t *testing.T) {
	t.Run("link", func(t *testing.T) {
		b, _, check, _ := newBus(t, 1, nil)
		check.err = errLink
		err := b.Get(0).Execute(st7920.Home{})
		var le *LinkError
		if !errors.As(err, &le) || !errors.Is(err, errLink) {
			t.Fatalf("Execute() = %v", err)
		}
		if check.cs[0].L != gpio.Low {
			t.Fatal("controller left selected")
		}
	})
	t.Run("select", func(t *testing.T) {
		b, _, check, _ := newBus(t, 1, nil)
		check.cs[0].failHigh = true
		err := b.Get(0).Execute(st7920.Write(0))
		var pe *PinError
		if !errors.As(err, &pe) || !errors.Is(err, errBroken) {
			t.Fatalf("Execute() = %v", err)
		}
	})
	t.Run("deselect_wins", func(t *testing.T) {
		b, _, check, _ := newBus(t, 1, nil)
		check.err = errLink
		check.cs[0].failLow = true
		err := b.Get(0).Transaction(time.Microsecond, func(c spi.Conn) error {
			return c.Tx([]byte{0xF8}, nil)
		})
		var pe *PinError
		if !errors.As(err, &pe) {
			t.Fatalf("Transaction() = %v", err)
		}
	})
	t.Run("new", func(t *testing.T) {
		if _, err := New(&checkConn{}, nil, nil); err == nil {
			t.Fatal("expected error")
		}
		cs := &csPin{failLow: true}
		var pe *PinError
		if _, err := New(&checkConn{}, []gpio.PinOut{cs}, nil); !errors.As(err, &pe) {
			t.Fatalf("New() = %v", err)
		}
	})
}

func TestNewSPI(t *testing.T) {
	p := &spitest.Playback{
		Playback: conntest.Playback{
			Ops:       []conntest.IO{{W: []byte{0xF8, 0x20, 0x00}}},
			DontPanic: true,
		},
	}
	b, err := NewSPI(p, []gpio.PinOut{&gpiotest.Pin{N: "CS"}}, st7920test.NewClock())
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Get(0).Execute(st7920.SelectBasic{}); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	// Connect cannot be called twice on a Playback.
	if _, err := NewSPI(p, []gpio.PinOut{&gpiotest.Pin{N: "CS"}}, nil); err == nil {
		t.Fatal("expected error")
	}
	if err := b.Halt(); err != nil {
		t.Fatal(err)
	}
}

func TestDev(t *testing.T) {
	var ops []conntest.IO
	for _, op := range []byte{0x20, 0x20, 0x0C, 0x01, 0x06, 0x24, 0x45} {
		ops = append(ops, conntest.IO{W: encodeU8(false, op)})
	}
	b, p, _, clk := newBus(t, 1, ops)
	d, err := st7920.New(b.Get(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.ScrollOffset(5); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Read(); err != st7920.ErrNotReadable {
		t.Fatalf("Read() = %v", err)
	}
	// The power-on holds were honoured.
	if got := clk.Elapsed(); got < 80*time.Millisecond+600*time.Microsecond+20*time.Millisecond {
		t.Fatalf("Elapsed() = %s", got)
	}
}

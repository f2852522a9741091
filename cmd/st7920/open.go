// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/GermanBionicSystems/st7920"
	"github.com/GermanBionicSystems/st7920/parallel"
	"github.com/GermanBionicSystems/st7920/serial"
	"github.com/GermanBionicSystems/st7920/sim"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// panel is what a demo runs on.
type panel struct {
	devs []*st7920.Dev
	// show renders the emulated controllers, if any.
	show func() error
	halt func() error
}

func pinByName(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("no pin %q", name)
	}
	return p, nil
}

func pinsByName(names []string) ([]gpio.PinIO, error) {
	out := make([]gpio.PinIO, 0, len(names))
	for _, n := range names {
		p, err := pinByName(n)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func outputs(pins []gpio.PinIO) []gpio.PinOut {
	out := make([]gpio.PinOut, len(pins))
	for i, p := range pins {
		out[i] = p
	}
	return out
}

func newDevs(n int, get func(i int) st7920.Conn, opts *st7920.Opts) ([]*st7920.Dev, error) {
	devs := make([]*st7920.Dev, 0, n)
	for i := 0; i < n; i++ {
		d, err := st7920.New(get(i), opts)
		if err != nil {
			return nil, fmt.Errorf("controller %d: %w", i, err)
		}
		devs = append(devs, d)
	}
	return devs, nil
}

// openHardware opens the controllers wired as b describes.
func openHardware(b *Board) (*panel, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	opts := &st7920.Opts{PollBusy: b.PollBusy}
	if b.Interface == "serial" {
		cs, err := pinsByName(b.Serial.CS)
		if err != nil {
			return nil, err
		}
		port, err := spireg.Open(b.Serial.Port)
		if err != nil {
			return nil, err
		}
		bus, err := serial.NewSPI(port, outputs(cs), nil)
		if err != nil {
			_ = port.Close()
			return nil, err
		}
		devs, err := newDevs(bus.Num(), func(i int) st7920.Conn { return bus.Get(i) }, opts)
		if err != nil {
			_ = port.Close()
			return nil, err
		}
		return &panel{devs: devs, halt: func() error {
			for _, d := range devs {
				_ = d.Halt()
			}
			_ = bus.Halt()
			return port.Close()
		}}, nil
	}

	pins := &parallel.Pins{}
	rs, err := pinByName(b.Parallel.RS)
	if err != nil {
		return nil, err
	}
	pins.RS = rs
	if b.Parallel.RW != "" {
		rw, err := pinByName(b.Parallel.RW)
		if err != nil {
			return nil, err
		}
		pins.RW = rw
	}
	e, err := pinsByName(b.Parallel.E)
	if err != nil {
		return nil, err
	}
	pins.E = outputs(e)
	if pins.DB, err = pinsByName(b.Parallel.DB); err != nil {
		return nil, err
	}
	bus, err := parallel.New(pins, nil)
	if err != nil {
		return nil, err
	}
	devs, err := newDevs(bus.Num(), func(i int) st7920.Conn { return bus.Get(i) }, opts)
	if err != nil {
		return nil, err
	}
	return &panel{devs: devs, halt: func() error {
		for _, d := range devs {
			_ = d.Halt()
		}
		return bus.Halt()
	}}, nil
}

// openSim returns emulated controllers wired as b describes, rendered on
// screen by show.
func openSim(b *Board, screen *sim.Screen, clk st7920.Clock) (*panel, []*sim.Chip, error) {
	chips := make([]*sim.Chip, b.Sim.Controllers)
	for i := range chips {
		chips[i] = sim.New()
	}
	var get func(i int) st7920.Conn
	opts := &st7920.Opts{PollBusy: b.PollBusy}
	if b.Interface == "serial" {
		link := &sim.Link{}
		var cs []gpio.PinOut
		for _, c := range chips {
			cs = append(cs, link.Attach(c))
		}
		bus, err := serial.NewSPI(link, cs, clk)
		if err != nil {
			return nil, nil, err
		}
		get = func(i int) st7920.Conn { return bus.Get(i) }
	} else {
		w, err := sim.NewWires(b.Sim.Width)
		if err != nil {
			return nil, nil, err
		}
		pins := &parallel.Pins{RS: w.RS, RW: w.RW, DB: w.Data()}
		for _, c := range chips {
			pins.E = append(pins.E, w.Attach(c))
		}
		bus, err := parallel.New(pins, clk)
		if err != nil {
			return nil, nil, err
		}
		get = func(i int) st7920.Conn { return bus.Get(i) }
	}
	devs, err := newDevs(len(chips), get, opts)
	if err != nil {
		return nil, nil, err
	}
	p := &panel{
		devs: devs,
		show: func() error {
			if screen == nil {
				return nil
			}
			for _, c := range chips {
				if err := screen.Show(c); err != nil {
					return err
				}
			}
			return nil
		},
		halt: func() error {
			if screen == nil {
				return nil
			}
			return screen.Halt()
		},
	}
	return p, chips, nil
}

// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sim

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Link is a fake SPI port shared by the Chips attached to it. A transfer
// reaches every Chip whose chip select wire is high.
type Link struct {
	mu    sync.Mutex
	ports []*serialPort
	freq  physic.Frequency
	mode  spi.Mode
}

type serialPort struct {
	cs *gpiotest.Pin
	c  *Chip

	synced bool
	rs     bool
	second bool
	hi     byte
}

// Attach connects c to the link and returns its chip select wire.
func (l *Link) Attach(c *Chip) gpio.PinIO {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := &serialPort{cs: &gpiotest.Pin{N: fmt.Sprintf("CS%d", len(l.ports)), Num: len(l.ports)}, c: c}
	l.ports = append(l.ports, p)
	return p.cs
}

// Connect implements spi.Port.
func (l *Link) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if bits != 8 {
		return nil, fmt.Errorf("sim: %d bits per word is not supported", bits)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.freq = f
	l.mode = mode
	return l, nil
}

// Settings returns the parameters passed to Connect.
func (l *Link) Settings() (physic.Frequency, spi.Mode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.freq, l.mode
}

func (l *Link) String() string {
	return "sim.Link"
}

// Duplex implements conn.Conn.
func (l *Link) Duplex() conn.Duplex {
	return conn.Full
}

// Tx implements conn.Conn.
//
// The controllers never answer on the serial interface: r, if any, is filled
// with zeros.
func (l *Link) Tx(w, r []byte) error {
	if r != nil && len(r) != len(w) {
		return errors.New("sim: Tx buffers must have the same size")
	}
	for i := range r {
		r[i] = 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.ports {
		if p.cs.Read() != gpio.High {
			p.synced = false
			p.second = false
			continue
		}
		for _, b := range w {
			p.feed(b)
		}
	}
	return nil
}

// TxPackets implements spi.Conn.
func (l *Link) TxPackets(packets []spi.Packet) error {
	for _, p := range packets {
		if err := l.Tx(p.W, p.R); err != nil {
			return err
		}
	}
	return nil
}

func (p *serialPort) feed(b byte) {
	if b&0xF8 == 0xF8 {
		p.synced = true
		p.second = false
		p.rs = b&0x02 != 0
		if b&0x04 != 0 {
			// Reads are not possible on the serial interface.
			p.synced = false
		}
		return
	}
	if !p.synced {
		return
	}
	if !p.second {
		p.hi = b & 0xF0
		p.second = true
		return
	}
	p.second = false
	p.c.writeByte(p.rs, p.hi|b>>4)
}

var (
	_ spi.Port = &Link{}
	_ spi.Conn = &Link{}
)

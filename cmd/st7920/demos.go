// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/GermanBionicSystems/st7920"
)

// runner is the state shared by the demos.
type runner struct {
	ctx  context.Context
	devs []*st7920.Dev
	rng  *rand.Rand
	// steps is the number of steps to run, 0 runs until ctx is canceled.
	steps int
	pause func(d time.Duration)
	// show is called after each step when not nil.
	show func() error
	text string
}

func (r *runner) loop(step func(i int) error) error {
	for i := 0; r.steps <= 0 || i < r.steps; i++ {
		if err := r.ctx.Err(); err != nil {
			return nil
		}
		if err := step(i); err != nil {
			return err
		}
		if r.show != nil {
			if err := r.show(); err != nil {
				return err
			}
		}
	}
	return nil
}

type demo struct {
	name string
	help string
	// devs is the minimum number of controllers.
	devs int
	run  func(r *runner) error
}

var demos = []demo{
	{"cgram", "random custom characters", 1, runCGRAM},
	{"scroll", "vertical scroll back and forth", 1, runScroll},
	{"reverse", "alternately reverse the first two lines", 1, runReverse},
	{"verify", "write then read back DDRAM, checking the address counter", 1, runVerify},
	{"two", "cgram and scroll on two controllers sharing a bus", 2, runTwo},
	{"banner", "scroll text drawn into graphic RAM", 1, runBanner},
}

func lookup(name string) (*demo, error) {
	for i := range demos {
		if demos[i].name == name {
			return &demos[i], nil
		}
	}
	return nil, fmt.Errorf("unknown demo %q", name)
}

func repeat(n int, words ...uint16) []uint16 {
	out := make([]uint16, 0, n*len(words))
	for i := 0; i < n; i++ {
		out = append(out, words...)
	}
	return out
}

// checkers holds the 4 custom characters of the cgram demo, 16 words each.
var checkers = [][]uint16{
	repeat(4, 0x3333, 0x3333, 0xCCCC, 0xCCCC),
	repeat(8, 0x5555, 0xAAAA),
	repeat(4, 0x9999, 0x3333, 0x6666, 0xCCCC),
	repeat(4, 0x9999, 0x3333, 0x6666, 0xCCCC),
}

func setupCGRAM(d *st7920.Dev) error {
	if err := d.CGRAMAddr(0); err != nil {
		return err
	}
	for _, c := range checkers {
		if err := d.WriteWords(c...); err != nil {
			return err
		}
	}
	return nil
}

// stepCGRAM fills the first two lines with random custom characters.
func stepCGRAM(d *st7920.Dev, rng *rand.Rand) error {
	for _, addr := range []uint8{0x00, 0x10} {
		if err := d.DDRAMAddr(addr); err != nil {
			return err
		}
		for i := 0; i < 11; i++ {
			// Custom characters are 0x0000, 0x0002, 0x0004 and 0x0006.
			if err := d.Write(uint16(rng.Intn(4) * 2)); err != nil {
				return err
			}
		}
	}
	return nil
}

func runCGRAM(r *runner) error {
	d := r.devs[0]
	if err := setupCGRAM(d); err != nil {
		return err
	}
	return r.loop(func(int) error {
		if err := stepCGRAM(d, r.rng); err != nil {
			return err
		}
		r.pause(500 * time.Millisecond)
		return nil
	})
}

func setupScroll(d *st7920.Dev) error {
	for i, addr := range []uint8{0x00, 0x10, 0x20, 0x30} {
		c := uint16('A' + i)
		if err := d.DDRAMAddr(addr); err != nil {
			return err
		}
		if err := d.WriteWords(repeat(10, c<<8|c)...); err != nil {
			return err
		}
	}
	return d.EnableScroll()
}

// pingPong counts 0 to 31 then back down to 0, forever.
type pingPong struct {
	v    uint8
	down bool
}

func (p *pingPong) next() uint8 {
	v := p.v
	switch {
	case !p.down && p.v == 31:
		p.down = true
	case p.down && p.v == 0:
		p.down = false
	}
	if p.down {
		p.v--
	} else {
		p.v++
	}
	return v
}

func runScroll(r *runner) error {
	d := r.devs[0]
	if err := setupScroll(d); err != nil {
		return err
	}
	var p pingPong
	return r.loop(func(int) error {
		if err := d.ScrollOffset(p.next()); err != nil {
			return err
		}
		r.pause(200 * time.Millisecond)
		return nil
	})
}

func runReverse(r *runner) error {
	d := r.devs[0]
	if err := d.DDRAMAddr(0); err != nil {
		return err
	}
	if err := d.WriteWords(repeat(10, '~'<<8|'*')...); err != nil {
		return err
	}
	if err := d.DDRAMAddr(0x10); err != nil {
		return err
	}
	if err := d.WriteWords(repeat(10, 0)...); err != nil {
		return err
	}
	if err := d.CGRAMAddr(0); err != nil {
		return err
	}
	if err := d.WriteWords(repeat(4, 0x3030, 0xF0F0, 0xC3C3, 0x0303)...); err != nil {
		return err
	}
	return r.loop(func(i int) error {
		// Even steps reverse a line, odd steps restore it.
		if err := d.Reverse(uint8(i / 2 % 2)); err != nil {
			return err
		}
		r.pause(time.Second)
		return nil
	})
}

func runTwo(r *runner) error {
	a, b := r.devs[0], r.devs[1]
	if err := setupCGRAM(a); err != nil {
		return err
	}
	if err := setupScroll(b); err != nil {
		return err
	}
	var p pingPong
	return r.loop(func(int) error {
		if err := stepCGRAM(a, r.rng); err != nil {
			return err
		}
		for i := 0; i < 5; i++ {
			if err := b.ScrollOffset(p.next()); err != nil {
				return err
			}
			r.pause(150 * time.Millisecond)
		}
		return nil
	})
}

// verifier writes two lines of DDRAM, reads them back, and checks the
// address counter along the way. The controller is re-initialized on the
// first inconsistency.
type verifier struct {
	d       *st7920.Dev
	reading bool
	c       byte
	// Mismatches counts the re-initializations.
	mismatches int
}

func (v *verifier) reinit(format string, args ...interface{}) error {
	v.mismatches++
	log.Printf("verify: "+format, args...)
	v.reading = false
	if err := v.d.Init(); err != nil {
		return err
	}
	return v.d.DisplayOnOff(true, false, true)
}

func (v *verifier) step() error {
	ac, err := v.d.AddressCounter()
	if err != nil {
		return err
	}
	for i := 0; i < 10; i++ {
		again, err := v.d.AddressCounter()
		if err != nil {
			return err
		}
		if again != ac {
			return v.reinit("address counter read %#x then %#x", ac, again)
		}
	}
	want := uint16(v.c)<<8 | uint16(v.c)
	if v.reading {
		got, err := v.d.Read()
		if err != nil {
			return err
		}
		if got != want {
			return v.reinit("read %#04x at %#x, want %#04x", got, ac, want)
		}
	} else if err := v.d.Write(want); err != nil {
		return err
	}
	after, err := v.d.AddressCounter()
	if err != nil {
		return err
	}
	if after != ac+1 {
		return v.reinit("address counter %#x after %#x", after, ac)
	}
	switch after {
	case 0x0A:
		return v.d.DDRAMAddr(0x10)
	case 0x1A:
		if v.reading {
			v.c = nextDigit(v.c)
		}
		v.reading = !v.reading
		return v.d.DDRAMAddr(0)
	}
	return nil
}

// nextDigit cycles through the hexadecimal digits.
func nextDigit(c byte) byte {
	switch c {
	case '9':
		return 'A'
	case 'F':
		return '0'
	default:
		return c + 1
	}
}

func runVerify(r *runner) error {
	v := &verifier{d: r.devs[0], c: '0'}
	if err := v.d.DisplayOnOff(true, false, true); err != nil {
		return err
	}
	return r.loop(func(int) error {
		return v.step()
	})
}

// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// st7920 runs demos on ST7920 128x64 LCD controllers.
//
// The wiring is read from a YAML board file:
//
//	interface: parallel
//	poll_busy: true
//	parallel:
//	  rs: GPIO25
//	  rw: GPIO24
//	  e: [GPIO23, GPIO18]
//	  db: [GPIO17, GPIO27, GPIO22, GPIO5]
//
// With -sim, the controllers are emulated and rendered on the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/GermanBionicSystems/st7920/sim"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: st7920 [flags] <demo>\n\ndemos:\n")
	for _, d := range demos {
		fmt.Fprintf(flag.CommandLine.Output(), "  %-8s %s\n", d.name, d.help)
	}
	fmt.Fprintf(flag.CommandLine.Output(), "\nflags:\n")
	flag.PrintDefaults()
}

func mainImpl() error {
	boardPath := flag.String("board", "", "YAML board description")
	useSim := flag.Bool("sim", false, "emulate the controllers on the terminal")
	steps := flag.Int("n", 0, "number of demo steps, 0 runs until interrupted")
	seed := flag.Int64("seed", 0, "random seed, 0 uses the current time")
	text := flag.String("text", "periph.io", "banner text")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Usage = usage
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 1 {
		return errors.New("specify exactly one demo")
	}
	dm, err := lookup(flag.Arg(0))
	if err != nil {
		return err
	}
	if *boardPath == "" && !*useSim {
		return errors.New("-board is required unless -sim is used")
	}

	b, err := LoadBoard(*boardPath)
	if err != nil {
		return err
	}
	if err := b.Validate(*useSim); err != nil {
		return err
	}
	if n := b.Controllers(*useSim); n < dm.devs {
		return fmt.Errorf("%s needs %d controllers, the board has %d", dm.name, dm.devs, n)
	}

	var p *panel
	if *useSim {
		p, _, err = openSim(b, sim.NewScreen(&sim.ScreenOpts{}), nil)
	} else {
		p, err = openHardware(b)
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := p.halt(); err != nil {
			log.Printf("halt: %v", err)
		}
	}()
	for _, d := range p.devs {
		log.Printf("using %s", d)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	r := &runner{
		ctx:   ctx,
		devs:  p.devs,
		rng:   rand.New(rand.NewSource(*seed)),
		steps: *steps,
		pause: func(d time.Duration) {
			select {
			case <-ctx.Done():
			case <-time.After(d):
			}
		},
		show: p.show,
		text: *text,
	}
	return dm.run(r)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "st7920: %s.\n", err)
		os.Exit(1)
	}
}

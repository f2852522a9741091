// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sim_test

import (
	"fmt"
	"log"

	"github.com/GermanBionicSystems/st7920"
	"github.com/GermanBionicSystems/st7920/parallel"
	"github.com/GermanBionicSystems/st7920/sim"
	"periph.io/x/conn/v3/gpio"
)

func Example() {
	chip := sim.New()
	w, err := sim.NewWires(4)
	if err != nil {
		log.Fatal(err)
	}
	bus, err := parallel.New(&parallel.Pins{RS: w.RS, RW: w.RW, E: []gpio.PinOut{w.Attach(chip)}, DB: w.Data()}, nil)
	if err != nil {
		log.Fatal(err)
	}
	dev, err := st7920.New(bus.Get(0), nil)
	if err != nil {
		log.Fatal(err)
	}
	if err := dev.WriteWords('H'<<8|'e', 'l'<<8|'l', 'o'<<8|'!'); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%q\n", chip.Text()[0])
	// Output:
	// "Hello!          "
}

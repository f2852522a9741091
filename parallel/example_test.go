// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package parallel_test

import (
	"fmt"
	"log"

	"github.com/GermanBionicSystems/st7920"
	"github.com/GermanBionicSystems/st7920/parallel"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Two displays sharing RS, R/W and DB4..DB7, each on its own enable wire.
func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	bus, err := parallel.New(&parallel.Pins{
		RS: gpioreg.ByName("GPIO25"),
		RW: gpioreg.ByName("GPIO24"),
		E:  []gpio.PinOut{gpioreg.ByName("GPIO23"), gpioreg.ByName("GPIO18")},
		DB: []gpio.PinIO{
			gpioreg.ByName("GPIO17"),
			gpioreg.ByName("GPIO27"),
			gpioreg.ByName("GPIO22"),
			gpioreg.ByName("GPIO5"),
		},
	}, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer bus.Halt()
	for i := 0; i < bus.Num(); i++ {
		dev, err := st7920.New(bus.Get(i), nil)
		if err != nil {
			log.Fatal(err)
		}
		if err := dev.Write('L'<<8|'0'+uint16(i)); err != nil {
			log.Fatal(err)
		}
		fmt.Println(dev)
	}
}

// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package serial_test

import (
	"log"

	"github.com/GermanBionicSystems/st7920"
	"github.com/GermanBionicSystems/st7920/serial"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	p, err := spireg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer p.Close()
	// Two displays on the same SPI port, each with its own CS.
	bus, err := serial.NewSPI(p, []gpio.PinOut{gpioreg.ByName("GPIO8"), gpioreg.ByName("GPIO7")}, nil)
	if err != nil {
		log.Fatal(err)
	}
	for i := 0; i < bus.Num(); i++ {
		dev, err := st7920.New(bus.Get(i), nil)
		if err != nil {
			log.Fatal(err)
		}
		if err := dev.WriteWords('#'<<8|'0', '0'<<8|'0'+uint16(i)); err != nil {
			log.Fatal(err)
		}
	}
}

// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Board describes how the controllers are wired.
type Board struct {
	// Interface is "parallel" or "serial".
	Interface string `yaml:"interface"`
	// PollBusy polls the busy flag before returning to the basic
	// instruction set. Parallel only.
	PollBusy bool           `yaml:"poll_busy"`
	Parallel ParallelWiring `yaml:"parallel"`
	Serial   SerialWiring   `yaml:"serial"`
	Sim      SimSettings    `yaml:"sim"`
}

// ParallelWiring names the GPIO pins of a parallel bus, as known to gpioreg.
type ParallelWiring struct {
	RS string `yaml:"rs"`
	// RW is empty when R/W is tied low.
	RW string   `yaml:"rw"`
	E  []string `yaml:"e"`
	// DB is DB4..DB7 or DB0..DB7.
	DB []string `yaml:"db"`
}

// SerialWiring names the SPI port and the chip select pins of a serial link.
type SerialWiring struct {
	// Port is the spireg port name; empty selects the first one.
	Port string   `yaml:"port"`
	CS   []string `yaml:"cs"`
}

// SimSettings configures the emulated controllers used with -sim.
type SimSettings struct {
	Controllers int `yaml:"controllers"`
	// Width is the number of data wires of the emulated parallel bus.
	Width int `yaml:"width"`
}

// DefaultBoard returns the board used when no file is given: two emulated
// controllers sharing a 4 bit parallel bus.
func DefaultBoard() *Board {
	return &Board{
		Interface: "parallel",
		PollBusy:  true,
		Sim:       SimSettings{Controllers: 2, Width: 4},
	}
}

// Normalize fills in missing values with defaults.
func (b *Board) Normalize() {
	b.Interface = strings.ToLower(strings.TrimSpace(b.Interface))
	if b.Interface == "" {
		b.Interface = "parallel"
	}
	if b.Sim.Controllers <= 0 {
		b.Sim.Controllers = 1
	}
	if b.Sim.Width == 0 {
		b.Sim.Width = 4
	}
}

// Validate checks the wiring of the selected interface.
func (b *Board) Validate(sim bool) error {
	switch b.Interface {
	case "parallel", "serial":
	default:
		return fmt.Errorf("unknown interface %q", b.Interface)
	}
	if sim {
		if b.Sim.Width != 4 && b.Sim.Width != 8 {
			return fmt.Errorf("sim: width must be 4 or 8, got %d", b.Sim.Width)
		}
		return nil
	}
	if b.Interface == "serial" {
		if len(b.Serial.CS) == 0 {
			return errors.New("serial: no cs pin")
		}
		return nil
	}
	if b.Parallel.RS == "" {
		return errors.New("parallel: no rs pin")
	}
	if len(b.Parallel.E) == 0 {
		return errors.New("parallel: no e pin")
	}
	if n := len(b.Parallel.DB); n != 4 && n != 8 {
		return fmt.Errorf("parallel: need 4 or 8 db pins, got %d", n)
	}
	return nil
}

// Controllers returns the number of controllers on the board.
func (b *Board) Controllers(sim bool) int {
	switch {
	case sim:
		return b.Sim.Controllers
	case b.Interface == "serial":
		return len(b.Serial.CS)
	default:
		return len(b.Parallel.E)
	}
}

// LoadBoard reads a YAML board description. An empty path returns
// DefaultBoard().
func LoadBoard(path string) (*Board, error) {
	if path == "" {
		return DefaultBoard(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseBoard(data)
}

func parseBoard(data []byte) (*Board, error) {
	b := &Board{}
	if err := yaml.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	b.Normalize()
	return b, nil
}

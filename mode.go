// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7920

// Mode is the instruction set latched in the controller.
type Mode uint8

const (
	// Basic is the instruction set after power-on and after SelectBasic.
	Basic Mode = iota
	// Extended is selected by SelectExtended (RE=1, G=0).
	Extended
	// Graphic is selected by SelectGraphic (RE=1, G=1).
	Graphic
)

func (m Mode) String() string {
	switch m {
	case Basic:
		return "Basic"
	case Extended:
		return "Extended"
	case Graphic:
		return "Graphic"
	default:
		return "Mode(?)"
	}
}

// plan returns the instructions to send before cmd when the controller is in
// mode from, and the mode once cmd ran.
//
// The function set instruction must not flip RE and G at once, so going
// between Basic and Graphic always passes through Extended.
func plan(from Mode, cmd Command) ([]Instruction, Mode) {
	switch cmd.(type) {
	case SelectBasic:
		if from == Graphic {
			return []Instruction{SelectExtended{}}, Basic
		}
		return nil, Basic
	case SelectExtended:
		return nil, Extended
	case SelectGraphic:
		if from == Basic {
			return []Instruction{SelectExtended{}}, Graphic
		}
		return nil, Graphic
	}

	switch cmd.set() {
	case setBasic:
		switch from {
		case Extended:
			return []Instruction{SelectBasic{}}, Basic
		case Graphic:
			return []Instruction{SelectExtended{}, SelectBasic{}}, Basic
		}
		return nil, Basic
	case setExtended:
		if from == Basic {
			return []Instruction{SelectExtended{}}, Extended
		}
		return nil, from
	case setGraphic:
		switch from {
		case Basic:
			return []Instruction{SelectExtended{}, SelectGraphic{}}, Graphic
		case Extended:
			return []Instruction{SelectGraphic{}}, Graphic
		}
		return nil, Graphic
	}
	return nil, from
}

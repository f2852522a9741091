// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7920

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestPlan(t *testing.T) {
	for _, tc := range []struct {
		name    string
		from    Mode
		cmd     Command
		wantPre []Instruction
		wantTo  Mode
	}{
		{"basic_in_basic", Basic, DDRAMAddr(0), nil, Basic},
		{"basic_in_extended", Extended, Clear{}, []Instruction{SelectBasic{}}, Basic},
		{"basic_in_graphic", Graphic, Home{}, []Instruction{SelectExtended{}, SelectBasic{}}, Basic},
		{"select_basic_in_basic", Basic, SelectBasic{}, nil, Basic},
		{"select_basic_in_extended", Extended, SelectBasic{}, nil, Basic},
		{"select_basic_in_graphic", Graphic, SelectBasic{}, []Instruction{SelectExtended{}}, Basic},
		{"extended_in_basic", Basic, ScrollOffset(5), []Instruction{SelectExtended{}}, Extended},
		{"extended_in_extended", Extended, Reverse(1), nil, Extended},
		{"extended_in_graphic", Graphic, EnableScroll{}, nil, Graphic},
		{"select_extended_in_graphic", Graphic, SelectExtended{}, nil, Extended},
		{"select_graphic_in_basic", Basic, SelectGraphic{}, []Instruction{SelectExtended{}}, Graphic},
		{"select_graphic_in_extended", Extended, SelectGraphic{}, nil, Graphic},
		{"gdram_in_basic", Basic, GDRAMAddr{}, []Instruction{SelectExtended{}, SelectGraphic{}}, Graphic},
		{"gdram_in_extended", Extended, GDRAMAddr{}, []Instruction{SelectGraphic{}}, Graphic},
		{"gdram_in_graphic", Graphic, GDRAMAddr{}, nil, Graphic},
		{"write_in_basic", Basic, Write(1), nil, Basic},
		{"write_in_extended", Extended, Write(1), nil, Extended},
		{"write_in_graphic", Graphic, Write(1), nil, Graphic},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pre, to := plan(tc.from, tc.cmd)
			if diff := cmp.Diff(pre, tc.wantPre, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("plan() difference (-got +want):\n%s", diff)
			}
			if to != tc.wantTo {
				t.Errorf("plan() mode = %s, want %s", to, tc.wantTo)
			}
		})
	}
}

// The controller must never see RE and G flip in the same function set.
func TestPlanNeverFlipsBoth(t *testing.T) {
	cmds := []Command{
		Write(0), Clear{}, Home{}, EntryMode{}, DisplayOnOff{}, CursorDisplayCtrl{},
		SelectBasic{}, CGRAMAddr(0), DDRAMAddr(0), StandBy{}, EnableScroll{},
		EnableCGRAM{}, Reverse(0), SelectExtended{}, SelectGraphic{}, ScrollOffset(0),
		GDRAMAddr{},
	}
	for _, from := range []Mode{Basic, Extended, Graphic} {
		for _, cmd := range cmds {
			pre, _ := plan(from, cmd)
			seq := make([]Command, 0, len(pre)+1)
			for _, i := range pre {
				seq = append(seq, i)
			}
			seq = append(seq, cmd)
			m := from
			for _, c := range seq {
				var next Mode
				switch c.(type) {
				case SelectBasic:
					next = Basic
				case SelectExtended:
					next = Extended
				case SelectGraphic:
					next = Graphic
				default:
					continue
				}
				if (m == Basic && next == Graphic) || (m == Graphic && next == Basic) {
					t.Errorf("%s from %s: %s goes %s -> %s", cmd, from, c, m, next)
				}
				m = next
			}
		}
	}
}

func TestModeString(t *testing.T) {
	if s := Graphic.String(); s != "Graphic" {
		t.Fatal(s)
	}
	if s := Mode(10).String(); s != "Mode(?)" {
		t.Fatal(s)
	}
}

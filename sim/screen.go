// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sim

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// ScreenOpts represents the options available for a Screen.
type ScreenOpts struct {
	// W defaults to the colorable stdout.
	W       io.Writer
	Palette *ansi256.Palette
	// On is the color of the lit pixels.
	On color.Color

	_ struct{}
}

// Screen is a 128x64 monochrome panel emulator that outputs to the console
// using ANSI color codes.
type Screen struct {
	w       io.Writer
	palette ansi256.Palette
	on      color.NRGBA
	off     color.NRGBA

	img *image.Gray
	buf bytes.Buffer
}

// NewScreen returns a Screen that displays at the console.
func NewScreen(opts *ScreenOpts) *Screen {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	on := color.NRGBA{0xE0, 0xF0, 0xFF, 0xFF}
	if opts.On != nil {
		on = color.NRGBAModel.Convert(opts.On).(color.NRGBA)
	}
	return &Screen{
		w:       w,
		palette: *p,
		on:      on,
		off:     color.NRGBA{0x10, 0x20, 0x60, 0xFF},
		img:     image.NewGray(image.Rect(0, 0, Width, Height)),
	}
}

func (s *Screen) String() string {
	return "sim.Screen"
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (s *Screen) Halt() error {
	_, err := s.w.Write([]byte("\n\033[0m"))
	return err
}

// ColorModel implements display.Drawer.
func (s *Screen) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds implements display.Drawer.
func (s *Screen) Bounds() image.Rectangle {
	return s.img.Bounds()
}

// Draw implements display.Drawer.
func (s *Screen) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Draw(s.img, r.Intersect(s.Bounds()), src, sp, draw.Src)
	return s.refresh(nil)
}

// Show renders what c displays: its text lines then its graphic RAM.
func (s *Screen) Show(c *Chip) error {
	draw.Draw(s.img, s.Bounds(), c.Image(), image.Point{}, draw.Src)
	return s.refresh(c.Text())
}

func (s *Screen) refresh(text []string) error {
	s.buf.Reset()
	for _, l := range text {
		_, _ = s.buf.WriteString("\033[0m|")
		_, _ = s.buf.WriteString(l)
		_, _ = s.buf.WriteString("|\n")
	}
	b := s.img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		_, _ = s.buf.WriteString("\r\033[0m")
		for x := b.Min.X; x < b.Max.X; x++ {
			c := s.off
			if s.img.GrayAt(x, y).Y >= 0x80 {
				c = s.on
			}
			_, _ = io.WriteString(&s.buf, s.palette.Block(c))
		}
		_, _ = s.buf.WriteString("\033[0m\n")
	}
	_, err := s.buf.WriteTo(s.w)
	return err
}

var _ display.Drawer = &Screen{}

// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"image"
	"image/draw"
	"time"

	"github.com/GermanBionicSystems/st7920"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	bannerWidth = 128
	// bannerHeight is the number of GDRAM rows reachable by GDRAMAddr.
	bannerHeight = 16
	// wordsPerRow covers both halves of the panel.
	wordsPerRow = 16
)

func bannerFace() (font.Face, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: 13}), nil
}

// renderBanner draws text starting at column x, vertically centered.
func renderBanner(face font.Face, text string, x float64) *image.Gray {
	dc := gg.NewContext(bannerWidth, bannerHeight)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.SetRGB(1, 1, 1)
	dc.SetFontFace(face)
	dc.DrawStringAnchored(text, x, bannerHeight/2, 0, 0.5)
	img := image.NewGray(image.Rect(0, 0, bannerWidth, bannerHeight))
	draw.Draw(img, img.Bounds(), dc.Image(), image.Point{}, draw.Src)
	return img
}

// packRow converts row y of img into GDRAM words, most significant bit
// leftmost. The words for the lower half of the panel are left blank.
func packRow(img *image.Gray, y int) []uint16 {
	out := make([]uint16, wordsPerRow)
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X && x < bannerWidth; x++ {
		if img.GrayAt(x, y).Y >= 0x80 {
			out[(x-b.Min.X)/16] |= 0x8000 >> uint((x-b.Min.X)%16)
		}
	}
	return out
}

func drawBanner(d *st7920.Dev, img *image.Gray) error {
	for y := 0; y < bannerHeight; y++ {
		if err := d.GDRAMAddr(0, uint8(y)); err != nil {
			return err
		}
		if err := d.WriteWords(packRow(img, y)...); err != nil {
			return err
		}
	}
	return nil
}

func runBanner(r *runner) error {
	face, err := bannerFace()
	if err != nil {
		return err
	}
	d := r.devs[0]
	if err := d.Clear(); err != nil {
		return err
	}
	w := font.MeasureString(face, r.text).Ceil()
	return r.loop(func(i int) error {
		// Enter from the right, leave on the left.
		x := bannerWidth - (4*i)%(bannerWidth+w)
		if err := drawBanner(d, renderBanner(face, r.text, float64(x))); err != nil {
			return err
		}
		r.pause(100 * time.Millisecond)
		return nil
	})
}

// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package st7920 controls the Sitronix ST7920 dot-matrix LCD controller.
//
// The package holds the controller's instruction set, the driver (Dev) that
// tracks which instruction set is latched in the chip, and the Schedule used
// by the transports to honour the chip's execution times. The wires live in
// the sub-packages:
//
//   - parallel drives RS, RW, E and a 4 or 8 wire data bus.
//   - serial drives the 3-wire synchronous interface over an spi.Conn.
//
// Both transports can share their data wires between several controllers,
// each selected by its own enable or chip select line.
//
// A command never sleeps for its own execution time. The line records when
// the chip will be ready again and the next access waits for that instant,
// which is usually already in the past.
//
// # Datasheet
//
// https://www.lcd-module.de/eng/pdf/zubehoer/st7920_chinese.pdf
package st7920

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package mcp23017 drives the MCP23017 port expander that hosts the Andromeda
// button matrix.
//
// Columns sit on GPIOA(4:0) and are driven open-drain: the GPIOA latch holds
// 0 for every column and a column is asserted by making its pin an output in
// IODIRA. Three indicator LEDs sit on GPIOA(7:5) and use the same trick with
// a latched 1. Rows are read from GPIOB with the internal pull-ups enabled,
// so a pressed button reads as a cleared bit.
package mcp23017

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
)

// DefaultAddress is the expander address on the Andromeda front panel
const DefaultAddress uint16 = 0x21

// Registers with IOCON.BANK = 0
const (
	RegIODIRA = 0x00
	RegIODIRB = 0x01
	RegGPPUA  = 0x0C
	RegGPPUB  = 0x0D
	RegGPIOA  = 0x12
	RegGPIOB  = 0x13
)

// GPIOA layout
const (
	ColumnMask = 0x1F
	NumLEDs    = 3
	ledShift   = 5

	// latchA holds the LED pins high and the column pins low
	latchA = 0b11100000
)

// NoRows is the row mask reported when the bus fails: all inputs high
const NoRows = 0xFF

// ErrConnectionFailed is returned when the expander does not answer
var ErrConnectionFailed = errors.New("mcp23017: connection failed")

// Dev is a handle to the matrix expander. It implements panel.Matrix and
// panel.IndicatorSink.
type Dev struct {
	mu        sync.Mutex
	c         conn.Conn
	log       *zap.Logger
	addr      uint16
	column    byte
	leds      byte
	busErrors uint64
}

// NewI2C opens the expander at addr on bus b and configures the ports: all
// columns released, LEDs off, row pull-ups enabled. log may be nil.
func NewI2C(b i2c.Bus, addr uint16, log *zap.Logger) (*Dev, error) {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dev{
		c:    &i2c.Dev{Bus: b, Addr: addr},
		log:  log,
		addr: addr,
	}

	if err := d.init(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return d, nil
}

func (d *Dev) init() error {
	if err := d.writeReg(RegIODIRA, 0xFF); err != nil {
		return err
	}
	if err := d.writeReg(RegGPIOA, latchA); err != nil {
		return err
	}
	if err := d.writeReg(RegGPPUB, 0xFF); err != nil {
		return err
	}
	return d.assert()
}

// String implements conn.Resource.
func (d *Dev) String() string {
	return fmt.Sprintf("MCP23017@%#02x", d.addr)
}

// Halt releases every column and turns the LEDs off.
//
// Halt implements conn.Resource.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.column = 0
	d.leds = 0
	return d.writeReg(RegIODIRA, 0xFF)
}

// ReadRows reads the raw row mask from GPIOB
func (d *Dev) ReadRows() (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var r [1]byte
	if err := d.c.Tx([]byte{RegGPIOB}, r[:]); err != nil {
		return NoRows, fmt.Errorf("read GPIOB: %w", err)
	}
	return r[0], nil
}

// ReadRowMask implements panel.Matrix. Bus errors are logged and read as
// no rows asserted.
func (d *Dev) ReadRowMask() byte {
	rows, err := d.ReadRows()
	if err != nil {
		d.fail("row read failed", err)
		return NoRows
	}
	return rows
}

// SelectColumn drives the columns in mask low and releases the rest
func (d *Dev) SelectColumn(mask byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.column = mask & ColumnMask
	return d.assert()
}

// SetActiveColumn implements panel.Matrix
func (d *Dev) SetActiveColumn(mask byte) {
	if err := d.SelectColumn(mask); err != nil {
		d.fail("column select failed", err)
	}
}

// WriteLED switches one of the expander LEDs
func (d *Dev) WriteLED(index int, on bool) error {
	if index < 0 || index >= NumLEDs {
		return fmt.Errorf("LED %d out of range 0..%d", index, NumLEDs-1)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if on {
		d.leds |= 1 << index
	} else {
		d.leds &^= 1 << index
	}
	return d.assert()
}

// SetLED implements panel.IndicatorSink. Indicators beyond the expander's
// LEDs are ignored.
func (d *Dev) SetLED(index int, on bool) {
	if index < 0 || index >= NumLEDs {
		d.log.Debug("indicator not on expander", zap.Int("index", index))
		return
	}
	if err := d.WriteLED(index, on); err != nil {
		d.fail("LED write failed", err)
	}
}

// LEDs returns the LED bits, LED 0 in bit 0
func (d *Dev) LEDs() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.leds
}

// Errors returns the number of bus errors swallowed by the panel.Matrix and
// panel.IndicatorSink methods
func (d *Dev) Errors() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busErrors
}

// assert writes the output enables; the caller holds mu
func (d *Dev) assert() error {
	outputs := d.column&ColumnMask | d.leds<<ledShift
	return d.writeReg(RegIODIRA, ^outputs)
}

func (d *Dev) writeReg(reg, value byte) error {
	if err := d.c.Tx([]byte{reg, value}, nil); err != nil {
		return fmt.Errorf("write register %#02x: %w", reg, err)
	}
	return nil
}

func (d *Dev) fail(msg string, err error) {
	d.mu.Lock()
	d.busErrors++
	d.mu.Unlock()
	d.log.Warn(msg, zap.Stringer("dev", d), zap.Error(err))
}

var _ conn.Resource = &Dev{}
var _ fmt.Stringer = &Dev{}

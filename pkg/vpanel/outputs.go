// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package vpanel

import "sync"

// DefaultLEDs is the number of indicators on the front panel
const DefaultLEDs = 8

// LEDBank is a row of indicators. It implements panel.IndicatorSink;
// indices outside the bank are ignored.
type LEDBank struct {
	mu   sync.Mutex
	leds []bool
}

// NewLEDBank creates a bank of n indicators, all off
func NewLEDBank(n int) *LEDBank {
	return &LEDBank{leds: make([]bool, n)}
}

// SetLED implements panel.IndicatorSink
func (b *LEDBank) SetLED(index int, on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.leds) {
		return
	}
	b.leds[index] = on
}

// States returns a copy of the indicator states
func (b *LEDBank) States() []bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]bool(nil), b.leds...)
}

// Backlight records the indicator brightness. It implements
// panel.BrightnessOutput.
type Backlight struct {
	mu    sync.Mutex
	level uint8
}

// SetBrightness implements panel.BrightnessOutput
func (b *Backlight) SetBrightness(level uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.level = level
}

// Level returns the current brightness
func (b *Backlight) Level() uint8 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.level
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package panel

// BrightnessStep is the brightness change per encoder click
const BrightnessStep = 8

// BrightnessOutput drives the indicator brightness
type BrightnessOutput interface {
	SetBrightness(level uint8)
}

// BrightnessStore persists the indicator brightness
type BrightnessStore interface {
	PersistBrightness(level uint8)
}

// Dimmer tracks the indicator brightness, adjusted in encoder clicks
type Dimmer struct {
	level int
	out   BrightnessOutput
	store BrightnessStore
}

// NewDimmer creates a dimmer at the given level and drives the output to it.
// out and store may be nil.
func NewDimmer(level uint8, out BrightnessOutput, store BrightnessStore) *Dimmer {
	d := &Dimmer{level: int(level), out: out, store: store}
	if d.out != nil {
		d.out.SetBrightness(level)
	}
	return d
}

// Level returns the current brightness
func (d *Dimmer) Level() uint8 {
	return uint8(d.level)
}

// Adjust changes the brightness by steps clicks, saturating at 0 and 255.
// The output and store are only updated when the level changes.
func (d *Dimmer) Adjust(steps int) {
	level := ClipRange(d.level+steps*BrightnessStep, 0, 255)
	if level == d.level {
		return
	}
	d.level = level
	if d.out != nil {
		d.out.SetBrightness(uint8(level))
	}
	if d.store != nil {
		d.store.PersistBrightness(uint8(level))
	}
}

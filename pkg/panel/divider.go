// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package panel

// Divider turns raw encoder detents into reported clicks. Detents are
// accumulated per encoder and released in whole multiples of the divisor;
// the remainder carries over to the next turn.
type Divider struct {
	normal int
	vfo    int
	acc    []int
	vfoAcc int
}

// NewDivider creates a divider for encoders numbered 0..encoders-1
func NewDivider(encoders int, d Divisors) *Divider {
	dv := &Divider{acc: make([]int, encoders)}
	dv.ApplyDivisors(d.Normal, d.VFO)
	return dv
}

// ApplyDivisors sets new divisors. Values below 1 are treated as 1.
// Partially accumulated detents are discarded.
func (d *Divider) ApplyDivisors(normal, vfo int) {
	d.normal = max(normal, 1)
	d.vfo = max(vfo, 1)
	for i := range d.acc {
		d.acc[i] = 0
	}
	d.vfoAcc = 0
}

// Divisors returns the divisors in use
func (d *Divider) Divisors() Divisors {
	return Divisors{Normal: d.normal, VFO: d.vfo}
}

// Encoder adds detents for an encoder and returns the clicks to report.
// Unknown encoders pass their detents through undivided.
func (d *Divider) Encoder(encoder, detents int) int {
	if encoder < 0 || encoder >= len(d.acc) {
		return detents
	}
	var clicks int
	d.acc[encoder], clicks = divide(d.acc[encoder]+detents, d.normal)
	return clicks
}

// VFO adds detents for the VFO encoder and returns the clicks to report
func (d *Divider) VFO(detents int) int {
	var clicks int
	d.vfoAcc, clicks = divide(d.vfoAcc+detents, d.vfo)
	return clicks
}

func divide(acc, divisor int) (remainder, clicks int) {
	clicks = acc / divisor
	return acc - clicks*divisor, clicks
}

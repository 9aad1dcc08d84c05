// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package vpanel is an in-memory Andromeda front panel: a button matrix that
// buttons can be held on for a number of ticks, an indicator bank and a
// backlight, wired to a panel.Controller. It backs the emulator and
// end-to-end tests.
package vpanel

import (
	"math/bits"
	"sort"
	"sync"
)

// HoldUntilReleased keeps a button down until Release is called
const HoldUntilReleased = -1

// Matrix is a virtual button matrix with active-low rows. It implements
// panel.Matrix and is safe for concurrent use.
type Matrix struct {
	mu     sync.Mutex
	rows   int
	column int
	held   map[int]int // scan code -> remaining ticks
}

// NewMatrix creates an idle matrix with rows rows per column
func NewMatrix(rows int) *Matrix {
	return &Matrix{rows: rows, held: make(map[int]int)}
}

// ReadRowMask implements panel.Matrix
func (m *Matrix) ReadRowMask() byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw := byte(0xFF)
	for sc := range m.held {
		if sc/m.rows == m.column {
			raw &^= 1 << uint(sc%m.rows)
		}
	}
	return raw
}

// SetActiveColumn implements panel.Matrix
func (m *Matrix) SetActiveColumn(mask byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.column = bits.TrailingZeros8(mask)
}

// ActiveColumn returns the selected column
func (m *Matrix) ActiveColumn() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.column
}

// Hold presses the button at scanCode for ticks ticks, or until released
// with HoldUntilReleased
func (m *Matrix) Hold(scanCode, ticks int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held[scanCode] = ticks
}

// Release lets go of the button at scanCode
func (m *Matrix) Release(scanCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, scanCode)
}

// ReleaseAll lets go of every button
func (m *Matrix) ReleaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.held)
}

// Advance counts down timed holds by one tick, releasing expired buttons
func (m *Matrix) Advance() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sc, left := range m.held {
		if left == HoldUntilReleased {
			continue
		}
		if left <= 1 {
			delete(m.held, sc)
			continue
		}
		m.held[sc] = left - 1
	}
}

// Held returns the scan codes currently down, in ascending order
func (m *Matrix) Held() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	codes := make([]int, 0, len(m.held))
	for sc := range m.held {
		codes = append(codes, sc)
	}
	sort.Ints(codes)
	return codes
}

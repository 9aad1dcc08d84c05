// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package panel

import "math/bits"

// fakeMatrix is an in-memory button matrix with active-low rows
type fakeMatrix struct {
	pressed map[[2]int]bool
	column  int
	selects []byte
}

func newFakeMatrix() *fakeMatrix {
	return &fakeMatrix{pressed: make(map[[2]int]bool)}
}

func (m *fakeMatrix) ReadRowMask() byte {
	raw := byte(0xFF)
	for pos, down := range m.pressed {
		if down && pos[0] == m.column {
			raw &^= 1 << uint(pos[1])
		}
	}
	return raw
}

func (m *fakeMatrix) SetActiveColumn(mask byte) {
	m.selects = append(m.selects, mask)
	m.column = bits.TrailingZeros8(mask)
}

func (m *fakeMatrix) press(column, row int)   { m.pressed[[2]int{column, row}] = true }
func (m *fakeMatrix) release(column, row int) { delete(m.pressed, [2]int{column, row}) }

// message is a recorded outbound command
type message struct {
	cmd   CommandID
	param int
}

type recordingEmitter struct {
	messages []message
}

func (r *recordingEmitter) EmitMessage(cmd CommandID, param int) {
	r.messages = append(r.messages, message{cmd, param})
}

func (r *recordingEmitter) last() message {
	if len(r.messages) == 0 {
		return message{cmd: -1}
	}
	return r.messages[len(r.messages)-1]
}

type ledCall struct {
	index int
	on    bool
}

type recordingIndicators struct {
	calls []ledCall
}

func (r *recordingIndicators) SetLED(index int, on bool) {
	r.calls = append(r.calls, ledCall{index, on})
}

type recordingDivisors struct {
	persisted [][2]int
	applied   [][2]int
}

func (r *recordingDivisors) PersistDivisors(normal, vfo int) {
	r.persisted = append(r.persisted, [2]int{normal, vfo})
}

func (r *recordingDivisors) ApplyDivisors(normal, vfo int) {
	r.applied = append(r.applied, [2]int{normal, vfo})
}

// tickUntil ticks the scanner up to limit times and returns the 1-based tick
// number of the first event, or 0 if none occurred
func tickUntil(s *Scanner, limit int) (int, ScanEvent) {
	for i := 1; i <= limit; i++ {
		if ev := s.Tick(); ev.Kind != EventNone {
			return i, ev
		}
	}
	return 0, ScanEvent{}
}

// collect ticks the scanner n times and returns all events
func collect(s *Scanner, n int) []ScanEvent {
	var events []ScanEvent
	for i := 0; i < n; i++ {
		if ev := s.Tick(); ev.Kind != EventNone {
			events = append(events, ev)
		}
	}
	return events
}

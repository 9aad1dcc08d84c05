// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package panel

import "fmt"

// ScanState is the state of the matrix scan sequencer
type ScanState int

// Scan sequencer states
const (
	StateIdle              ScanState = iota // no button pressed
	StateWaitPressed                        // single button pressed, debouncing
	StateButtonPressed                      // single button confirmed pressed
	StateWaitReleased                       // single button released, debouncing
	StateMultiPressed                       // more than one row asserted
	StateWaitMultiReleased                  // multiple press released, debouncing
)

// String returns the state name
func (s ScanState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateWaitPressed:
		return "WAIT_PRESSED"
	case StateButtonPressed:
		return "BUTTON_PRESSED"
	case StateWaitReleased:
		return "WAIT_RELEASED"
	case StateMultiPressed:
		return "MULTI_PRESSED"
	case StateWaitMultiReleased:
		return "WAIT_MULTI_RELEASED"
	default:
		return fmt.Sprintf("STATE(%d)", int(s))
	}
}

// RowReading is a classified row read: 0 for nothing pressed, 1-8 for a
// single asserted row (row index + 1), or RowMultiple.
type RowReading uint8

// ClassifyRow analyses a raw row mask. Inputs are active low: a cleared bit
// is a pressed button.
func ClassifyRow(raw byte) RowReading {
	var result RowReading
	for bit := 0; bit < 8; bit++ {
		if raw&(1<<bit) == 0 {
			if result != 0 {
				return RowMultiple
			}
			result = RowReading(bit + 1)
		}
	}
	return result
}

// EventKind is the kind of button transition reported by the scanner
type EventKind int

// Scanner event kinds
const (
	EventNone EventKind = iota
	EventPress
	EventLongPress
	EventRelease
)

// String returns the event kind name
func (k EventKind) String() string {
	switch k {
	case EventNone:
		return "none"
	case EventPress:
		return "press"
	case EventLongPress:
		return "long-press"
	case EventRelease:
		return "release"
	default:
		return "unknown"
	}
}

// ScanEvent is a button transition detected at a matrix position
type ScanEvent struct {
	Kind     EventKind
	Column   int
	Row      int // 0-based
	ScanCode int
}

// ScanConfig fixes the matrix geometry and the tick-relative timing
type ScanConfig struct {
	Columns        int
	Rows           int
	DebounceTicks  int
	LongPressTicks int
}

// DefaultScanConfig returns the configuration of the Andromeda matrix
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Columns:        NumColumns,
		Rows:           NumRows,
		DebounceTicks:  DefaultDebounceTicks,
		LongPressTicks: DefaultLongPressTicks,
	}
}

// Validate checks the configuration is usable
func (c ScanConfig) Validate() error {
	if c.Columns <= 0 || c.Columns > 8 {
		return fmt.Errorf("columns must be 1-8, got %d", c.Columns)
	}
	if c.Rows <= 0 || c.Rows > 8 {
		return fmt.Errorf("rows must be 1-8, got %d", c.Rows)
	}
	if c.DebounceTicks < 0 {
		return fmt.Errorf("debounce ticks must not be negative, got %d", c.DebounceTicks)
	}
	if c.LongPressTicks <= 0 {
		return fmt.Errorf("long press ticks must be positive, got %d", c.LongPressTicks)
	}
	return nil
}

// ScanStatus is the complete scanner state between ticks
type ScanStatus struct {
	State     ScanState
	Column    int
	FoundRow  RowReading // valid in WaitPressed, ButtonPressed and WaitReleased
	Debounce  int        // ticks left before the sequencer runs again
	LongPress int        // ticks left until a held button becomes a long press
}

// Step advances the scan sequencer by one tick given the classified row read
// for the active column. It returns the next status and any event produced.
func Step(s ScanStatus, row RowReading, cfg ScanConfig) (ScanStatus, ScanEvent) {
	var ev ScanEvent

	if s.Debounce != 0 {
		s.Debounce--
		return s, ev
	}

	switch s.State {
	case StateIdle:
		switch row {
		case 0:
			s.Column++
			if s.Column >= cfg.Columns {
				s.Column = 0
			}
		case RowMultiple:
			s.State = StateMultiPressed
			s.Debounce = cfg.DebounceTicks
		default:
			s.State = StateWaitPressed
			s.FoundRow = row
			s.Debounce = cfg.DebounceTicks
		}

	case StateWaitPressed:
		if row == s.FoundRow {
			s.State = StateButtonPressed
			s.LongPress = cfg.LongPressTicks
			ev = s.event(EventPress, cfg)
		} else {
			s = s.toMulti(cfg)
		}

	case StateButtonPressed:
		switch {
		case row == 0:
			s.State = StateWaitReleased
			s.Debounce = cfg.DebounceTicks
		case row != s.FoundRow:
			ev = s.event(EventRelease, cfg)
			s = s.toMulti(cfg)
		case s.LongPress != 0:
			s.LongPress--
			if s.LongPress == 0 {
				ev = s.event(EventLongPress, cfg)
			}
		}

	case StateWaitReleased:
		switch {
		case row == 0:
			ev = s.event(EventRelease, cfg)
			s.State = StateIdle
			s.FoundRow = 0
			s.Debounce = cfg.DebounceTicks
		case row != s.FoundRow:
			s = s.toMulti(cfg)
		}

	case StateMultiPressed:
		if row == 0 {
			s.State = StateWaitMultiReleased
			s.Debounce = cfg.DebounceTicks
		}

	case StateWaitMultiReleased:
		if row == 0 {
			s.State = StateIdle
		} else {
			s.State = StateMultiPressed
		}
		s.Debounce = cfg.DebounceTicks
	}

	return s, ev
}

func (s ScanStatus) toMulti(cfg ScanConfig) ScanStatus {
	s.State = StateMultiPressed
	s.FoundRow = 0
	s.LongPress = 0
	s.Debounce = cfg.DebounceTicks
	return s
}

func (s ScanStatus) event(kind EventKind, cfg ScanConfig) ScanEvent {
	row := int(s.FoundRow) - 1
	return ScanEvent{
		Kind:     kind,
		Column:   s.Column,
		Row:      row,
		ScanCode: s.Column*cfg.Rows + row,
	}
}

// ColumnSelect returns the column-select pattern for a column: a single set
// bit at the column's position.
func ColumnSelect(column int) byte {
	return byte(1) << uint(column)
}

// Scanner drives the scan sequencer from a Matrix, one column per tick
type Scanner struct {
	matrix Matrix
	cfg    ScanConfig
	status ScanStatus
}

// NewScanner creates a scanner in the idle state and selects column 0
func NewScanner(m Matrix, cfg ScanConfig) (*Scanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scan config: %w", err)
	}
	s := &Scanner{matrix: m, cfg: cfg}
	m.SetActiveColumn(ColumnSelect(0))
	return s, nil
}

// Tick reads the active column and steps the sequencer. The column-select
// output is updated only when the sequencer moves to another column.
func (s *Scanner) Tick() ScanEvent {
	row := ClassifyRow(s.matrix.ReadRowMask())
	prev := s.status.Column

	var ev ScanEvent
	s.status, ev = Step(s.status, row, s.cfg)

	if s.status.Column != prev {
		s.matrix.SetActiveColumn(ColumnSelect(s.status.Column))
	}
	return ev
}

// Status returns a snapshot of the sequencer state
func (s *Scanner) Status() ScanStatus {
	return s.status
}

// Config returns the scanner configuration
func (s *Scanner) Config() ScanConfig {
	return s.cfg
}

// HeldScanCode returns the scan code of the button currently held down.
// ok is false unless exactly one button is confirmed pressed.
func (s *Scanner) HeldScanCode() (scanCode int, ok bool) {
	if s.status.State != StateButtonPressed {
		return 0, false
	}
	return s.status.Column*s.cfg.Rows + int(s.status.FoundRow) - 1, true
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package panel

import "fmt"

// ReportCodeTable maps a software scan code (column*NumRows + row) to the
// report code sent to the host. Encoders report 1-16, pushbuttons 21-50,
// and 0 marks an unused matrix position.
//
// The values are fixed by the host software and must not be reordered.
var ReportCodeTable = [NumColumns * NumRows]uint8{
	21, 22, 23, 24, 25, 26, 27, 28, // column 0
	11, 3, 1, 50, 49, 48, 47, 46, // column 1
	40, 37, 34, 31, 39, 36, 33, 30, // column 2
	45, 44, 43, 42, 41, 38, 35, 32, // column 3
	0, 0, 0, 0, 29, 9, 7, 5, // column 4
}

// Translator converts matrix positions into report codes
type Translator struct {
	table   []uint8
	columns int
	rows    int
}

// NewTranslator creates a translator for a columns x rows matrix.
// The table must hold exactly one entry per matrix position.
func NewTranslator(table []uint8, columns, rows int) (*Translator, error) {
	if columns <= 0 || rows <= 0 {
		return nil, fmt.Errorf("invalid matrix geometry %dx%d", columns, rows)
	}
	if len(table) != columns*rows {
		return nil, fmt.Errorf("report code table has %d entries, want %d (%dx%d)",
			len(table), columns*rows, columns, rows)
	}
	t := make([]uint8, len(table))
	copy(t, table)
	return &Translator{table: t, columns: columns, rows: rows}, nil
}

// DefaultTranslator returns the translator for the Andromeda panel matrix
func DefaultTranslator() *Translator {
	t, err := NewTranslator(ReportCodeTable[:], NumColumns, NumRows)
	if err != nil {
		panic(fmt.Sprintf("panel: %v", err))
	}
	return t
}

// Columns returns the number of matrix columns
func (t *Translator) Columns() int {
	return t.columns
}

// Rows returns the number of matrix rows
func (t *Translator) Rows() int {
	return t.rows
}

// ScanCode returns the software scan code of a matrix position
func (t *Translator) ScanCode(column, row int) int {
	return column*t.rows + row
}

// Translate returns the report code for a scan code. Codes outside the
// table translate to 0.
func (t *Translator) Translate(scanCode int) int {
	if scanCode < 0 || scanCode >= len(t.table) {
		return 0
	}
	return int(t.table[scanCode])
}

// Position returns the first matrix position whose report code matches.
// ok is false if no position reports that code.
func (t *Translator) Position(reportCode int) (column, row int, ok bool) {
	if reportCode == 0 {
		return 0, 0, false
	}
	for sc, rc := range t.table {
		if int(rc) == reportCode {
			return sc / t.rows, sc % t.rows, true
		}
	}
	return 0, 0, false
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package panel implements the input side of the Andromeda front panel:
// the debounced button matrix scanner, report code translation, the
// diversity/shift/RIT-XIT mode remapping, and the packing of button and
// encoder events into the bounded integer parameters carried by CAT.
//
// The package performs no I/O of its own. Row reads, column selection,
// indicators, settings persistence and message framing are supplied by the
// caller through the interfaces in controller.go.
package panel

// Matrix geometry
const (
	NumColumns = 5
	NumRows    = 8
)

// NumEncoders is the number of numbered encoders, excluding the VFO.
// Logical numbers from 13 upwards are reserved for the remapped encoders.
const NumEncoders = 13

// Scanner timing defaults, in ticks
const (
	DefaultDebounceTicks  = 10
	DefaultLongPressTicks = 1000 // 2 seconds at a 2ms tick
)

// RowMultiple is the classification of a row read with more than one
// row asserted.
const RowMultiple RowReading = 0xFF

// Buttons with mode side effects (report codes)
const (
	ButtonDiversity = 7
	ButtonShift     = 29
	ButtonRitXit    = 42
)

// Shifted buttons: report codes strictly between these bounds are moved down
// by shiftOffset while shift is active.
const (
	shiftLowerBound = 20
	shiftUpperBound = 29
	shiftOffset     = 8
)

// Encoder remapping applied while diversity or RIT/XIT is off
const (
	EncoderDiversityA = 6
	EncoderDiversityB = 7
	EncoderRitXitA    = 8
	EncoderRitXitB    = 9

	encoderDiversityAltA = 13
	encoderDiversityAltB = 14
	encoderRitXitAltA    = 15
	encoderRitXitAltB    = 16
)

// Encoder parameter packing
const (
	maxEncoderClicks         = 9
	encoderClockwiseBase     = 1
	encoderAnticlockwiseBase = 51
)

// Button transition digits
const (
	digitRelease   = 0
	digitPress     = 1
	digitLongPress = 2
)

// CommandID identifies a CAT command kind
type CommandID int

// Command identifiers
const (
	CmdVFODown CommandID = iota
	CmdVFOUp
	CmdEncoder
	CmdPushbutton
	CmdIndicator
	CmdSoftwareVersion
	CmdEncoderIncrement

	numCommands
)

// Commands lists every known command identifier in table order
func Commands() []CommandID {
	ids := make([]CommandID, 0, numCommands)
	for id := CommandID(0); id < numCommands; id++ {
		ids = append(ids, id)
	}
	return ids
}

// String returns the command's symbolic name
func (c CommandID) String() string {
	switch c {
	case CmdVFODown:
		return "VFO_DOWN"
	case CmdVFOUp:
		return "VFO_UP"
	case CmdEncoder:
		return "ENCODER"
	case CmdPushbutton:
		return "PUSHBUTTON"
	case CmdIndicator:
		return "INDICATOR"
	case CmdSoftwareVersion:
		return "SOFTWARE_VERSION"
	case CmdEncoderIncrement:
		return "ENCODER_INCREMENT"
	default:
		return "UNKNOWN"
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package panel

// RitXitState cycles Off -> RIT -> XIT -> Off on each RIT/XIT button press
type RitXitState int

// RIT/XIT states
const (
	RitXitOff RitXitState = iota
	RitXitRIT
	RitXitXIT

	numRitXitStates
)

// String returns the state name
func (s RitXitState) String() string {
	switch s {
	case RitXitOff:
		return "OFF"
	case RitXitRIT:
		return "RIT"
	case RitXitXIT:
		return "XIT"
	default:
		return "UNKNOWN"
	}
}

// Next returns the following state in the cycle
func (s RitXitState) Next() RitXitState {
	return (s + 1) % numRitXitStates
}

// ModeFlags holds the operating modes that alias physical controls.
// The zero value is the power-on state.
type ModeFlags struct {
	DiversityActive bool
	ShiftActive     bool
	RitXit          RitXitState
}

// RemapEncoder returns the logical encoder number to report. While diversity
// is off the diversity encoders report as 13 and 14; while RIT/XIT is off the
// RIT/XIT encoders report as 15 and 16.
func (m ModeFlags) RemapEncoder(encoder int) int {
	switch {
	case encoder == EncoderDiversityA && !m.DiversityActive:
		return encoderDiversityAltA
	case encoder == EncoderDiversityB && !m.DiversityActive:
		return encoderDiversityAltB
	case encoder == EncoderRitXitA && m.RitXit == RitXitOff:
		return encoderRitXitAltA
	case encoder == EncoderRitXitB && m.RitXit == RitXitOff:
		return encoderRitXitAltB
	}
	return encoder
}

// RemapButton returns the logical button number to report. While shift is
// active buttons 21-28 report as 13-20, reusing the numbers of encoder push
// switches that do not exist on the panel.
func (m ModeFlags) RemapButton(button int) int {
	if m.ShiftActive && button > shiftLowerBound && button < shiftUpperBound {
		return button - shiftOffset
	}
	return button
}

// applyPress updates the flags for a short press of a (remapped) button
func (m *ModeFlags) applyPress(button int) {
	switch button {
	case ButtonDiversity:
		m.DiversityActive = !m.DiversityActive
	case ButtonRitXit:
		m.RitXit = m.RitXit.Next()
	case ButtonShift:
		m.ShiftActive = !m.ShiftActive
	}
}

// applyRelease clears shift on release of any button other than shift itself
func (m *ModeFlags) applyRelease(button int) {
	if button != ButtonShift {
		m.ShiftActive = false
	}
}

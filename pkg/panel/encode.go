// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package panel

// Transition is a pushbutton state change as reported to the host
type Transition int

// Pushbutton transitions; the values are the parameter's low digit
const (
	TransitionRelease   Transition = digitRelease
	TransitionPress     Transition = digitPress
	TransitionLongPress Transition = digitLongPress
)

// String returns the transition name
func (t Transition) String() string {
	switch t {
	case TransitionRelease:
		return "release"
	case TransitionPress:
		return "press"
	case TransitionLongPress:
		return "long-press"
	default:
		return "unknown"
	}
}

// TransitionOf converts the pushbutton flags into a transition.
// A long press takes precedence over the pressed flag.
func TransitionOf(isPressed, isLongPressed bool) Transition {
	switch {
	case isLongPressed:
		return TransitionLongPress
	case isPressed:
		return TransitionPress
	default:
		return TransitionRelease
	}
}

// EncoderParam packs a (remapped) encoder number and signed click count into
// an ENCODER parameter. Clockwise turns encode as (encoder+1)*10 + clicks,
// anticlockwise as (encoder+51)*10 + clicks, with clicks limited to 9.
// ok is false when clicks is zero.
func EncoderParam(encoder, clicks int) (param int, ok bool) {
	switch {
	case clicks > 0:
		return (encoder+encoderClockwiseBase)*10 + min(clicks, maxEncoderClicks), true
	case clicks < 0:
		return (encoder+encoderAnticlockwiseBase)*10 + min(-clicks, maxEncoderClicks), true
	}
	return 0, false
}

// UnpackEncoderParam reverses EncoderParam. Anticlockwise turns return a
// negative click count.
func UnpackEncoderParam(param int) (encoder, clicks int) {
	base := param / 10
	clicks = param % 10
	if base >= encoderAnticlockwiseBase {
		return base - encoderAnticlockwiseBase, -clicks
	}
	return base - encoderClockwiseBase, clicks
}

// VFOCommand returns the step command for the VFO encoder: VFO_UP with the
// click count for clockwise turns, VFO_DOWN with the magnitude otherwise.
// ok is false when clicks is zero.
func VFOCommand(clicks int) (cmd CommandID, param int, ok bool) {
	switch {
	case clicks > 0:
		return CmdVFOUp, clicks, true
	case clicks < 0:
		return CmdVFODown, -clicks, true
	}
	return 0, 0, false
}

// ButtonParam packs a (remapped) button number and transition into a
// PUSHBUTTON parameter: button*10 + 0 (release), 1 (press) or 2 (long press).
func ButtonParam(button int, t Transition) int {
	return button*10 + int(t)
}

// UnpackButtonParam reverses ButtonParam
func UnpackButtonParam(param int) (button int, t Transition) {
	return param / 10, Transition(param % 10)
}

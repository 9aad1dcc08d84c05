// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cat

import (
	"fmt"

	"github.com/Thermoquad/andromeda/pkg/panel"
)

// FormatMessage formats a message into a human-readable line
func FormatMessage(m *Message) string {
	timestamp := m.Timestamp.Format("15:04:05.000")
	return fmt.Sprintf("[%s] %-17s %-12s %s\n", timestamp, m.Command, m.Raw, Describe(m))
}

// Describe returns the meaning of a message's parameter
func Describe(m *Message) string {
	if m.IsQuery {
		switch m.Command {
		case panel.CmdSoftwareVersion:
			return "Software version query"
		case panel.CmdEncoderIncrement:
			return "Encoder increment query"
		}
		return "Query"
	}

	switch m.Command {
	case panel.CmdVFOUp:
		return fmt.Sprintf("VFO up %d %s", m.Param, plural(m.Param, "step"))

	case panel.CmdVFODown:
		return fmt.Sprintf("VFO down %d %s", m.Param, plural(m.Param, "step"))

	case panel.CmdEncoder:
		encoder, clicks := panel.UnpackEncoderParam(m.Param)
		dir := "clockwise"
		if clicks < 0 {
			dir = "anticlockwise"
			clicks = -clicks
		}
		return fmt.Sprintf("Encoder %d %s %d %s", encoder, dir, clicks, plural(clicks, "click"))

	case panel.CmdPushbutton:
		button, t := panel.UnpackButtonParam(m.Param)
		return fmt.Sprintf("Button %d %s", button, t)

	case panel.CmdIndicator:
		index, on := panel.IndicatorCommand(m.Param)
		state := "off"
		if on {
			state = "on"
		}
		return fmt.Sprintf("Indicator %d %s", index, state)

	case panel.CmdSoftwareVersion:
		v := panel.UnpackSoftwareVersion(m.Param)
		return fmt.Sprintf("Product %d, hardware v%d, software v%d", v.ProductID, v.HWVersion, v.SWVersion)

	case panel.CmdEncoderIncrement:
		d := panel.DivisorCommand(m.Param)
		return fmt.Sprintf("VFO divisor %d, encoder divisor %d", d.VFO, d.Normal)
	}

	return fmt.Sprintf("Parameter %d", m.Param)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

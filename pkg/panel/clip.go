// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package panel

import "fmt"

// CommandDescriptor holds the numeric limits allowed for a command's parameter
type CommandDescriptor struct {
	MinParam int
	MaxParam int
}

// commandDescriptors is indexed by CommandID
var commandDescriptors = [numCommands]CommandDescriptor{
	CmdVFODown:          {MinParam: 0, MaxParam: 99},
	CmdVFOUp:            {MinParam: 0, MaxParam: 99},
	CmdEncoder:          {MinParam: 0, MaxParam: 999},
	CmdPushbutton:       {MinParam: 0, MaxParam: 999},
	CmdIndicator:        {MinParam: 0, MaxParam: 999},
	CmdSoftwareVersion:  {MinParam: 0, MaxParam: 9999999},
	CmdEncoderIncrement: {MinParam: 0, MaxParam: 99},
}

func init() {
	if err := validateDescriptors(commandDescriptors[:]); err != nil {
		panic(fmt.Sprintf("panel: %v", err))
	}
}

// validateDescriptors checks that every command has a usable range
func validateDescriptors(table []CommandDescriptor) error {
	if len(table) != int(numCommands) {
		return fmt.Errorf("descriptor table has %d entries, want %d", len(table), numCommands)
	}
	for i, d := range table {
		if d.MinParam > d.MaxParam {
			return fmt.Errorf("descriptor %s: min %d > max %d", CommandID(i), d.MinParam, d.MaxParam)
		}
	}
	return nil
}

// Descriptor returns the limits for a command. ok is false for unknown commands.
func Descriptor(cmd CommandID) (d CommandDescriptor, ok bool) {
	if cmd < 0 || cmd >= numCommands {
		return CommandDescriptor{}, false
	}
	return commandDescriptors[cmd], true
}

// ClipRange saturates param into [min, max]
func ClipRange(param, min, max int) int {
	if param > max {
		return max
	}
	if param < min {
		return min
	}
	return param
}

// Clip saturates param to the range declared for cmd.
// Parameters of unknown commands are returned unchanged.
func Clip(param int, cmd CommandID) int {
	d, ok := Descriptor(cmd)
	if !ok {
		return param
	}
	return ClipRange(param, d.MinParam, d.MaxParam)
}

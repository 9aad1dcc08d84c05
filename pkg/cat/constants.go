// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package cat implements the text framing of the Andromeda CAT commands.
//
// Every message is an ASCII mnemonic followed by a fixed-width, zero-padded
// decimal parameter and a ';' terminator, e.g. "ZZZP121;". A query is the
// bare mnemonic, e.g. "ZZZS;". Parameter ranges are owned by the panel
// package; this package maps command identifiers to mnemonics and widths.
package cat

import "github.com/Thermoquad/andromeda/pkg/panel"

// Framing
const (
	Terminator   = ';'
	MnemonicSize = 4

	// MaxMessageSize bounds a message between start and terminator
	MaxMessageSize = 16
)

// Format describes the wire form of one command
type Format struct {
	Mnemonic string
	Digits   int
}

var formats = map[panel.CommandID]Format{
	panel.CmdVFODown:          {Mnemonic: "ZZZD", Digits: 2},
	panel.CmdVFOUp:            {Mnemonic: "ZZZU", Digits: 2},
	panel.CmdEncoder:          {Mnemonic: "ZZZE", Digits: 3},
	panel.CmdPushbutton:       {Mnemonic: "ZZZP", Digits: 3},
	panel.CmdIndicator:        {Mnemonic: "ZZZI", Digits: 3},
	panel.CmdSoftwareVersion:  {Mnemonic: "ZZZS", Digits: 7},
	panel.CmdEncoderIncrement: {Mnemonic: "ZZZX", Digits: 2},
}

var byMnemonic = func() map[string]panel.CommandID {
	m := make(map[string]panel.CommandID, len(formats))
	for id, f := range formats {
		m[f.Mnemonic] = id
	}
	return m
}()

// FormatOf returns the wire format of a command
func FormatOf(cmd panel.CommandID) (Format, bool) {
	f, ok := formats[cmd]
	return f, ok
}

// Lookup returns the command identifier for a mnemonic
func Lookup(mnemonic string) (panel.CommandID, bool) {
	id, ok := byMnemonic[mnemonic]
	return id, ok
}

// Mnemonic returns the mnemonic of a command, or "????" if unknown
func Mnemonic(cmd panel.CommandID) string {
	if f, ok := formats[cmd]; ok {
		return f.Mnemonic
	}
	return "????"
}

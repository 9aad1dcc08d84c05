// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package panel

import "testing"

func TestClipRange(t *testing.T) {
	tests := []struct {
		param, min, max, want int
	}{
		{15, 0, 9, 9},
		{-3, 0, 9, 0},
		{5, 0, 9, 5},
		{0, 0, 9, 0},
		{9, 0, 9, 9},
	}
	for _, tt := range tests {
		if got := ClipRange(tt.param, tt.min, tt.max); got != tt.want {
			t.Errorf("ClipRange(%d, %d, %d) = %d, want %d", tt.param, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestClip_PerCommand(t *testing.T) {
	tests := []struct {
		cmd   CommandID
		param int
		want  int
	}{
		{CmdVFOUp, 150, 99},
		{CmdVFODown, -1, 0},
		{CmdEncoder, 1200, 999},
		{CmdSoftwareVersion, 203015, 203015},
		{CmdEncoderIncrement, 100, 99},
		{CommandID(99), 12345, 12345},
	}
	for _, tt := range tests {
		if got := Clip(tt.param, tt.cmd); got != tt.want {
			t.Errorf("Clip(%d, %v) = %d, want %d", tt.param, tt.cmd, got, tt.want)
		}
	}
}

func TestDescriptors_CoverAllCommands(t *testing.T) {
	for _, cmd := range Commands() {
		if _, ok := Descriptor(cmd); !ok {
			t.Errorf("no descriptor for %v", cmd)
		}
	}
	if _, ok := Descriptor(numCommands); ok {
		t.Error("descriptor found past end of table")
	}
}

func TestValidateDescriptors(t *testing.T) {
	bad := make([]CommandDescriptor, numCommands)
	bad[CmdEncoder] = CommandDescriptor{MinParam: 10, MaxParam: 1}
	if err := validateDescriptors(bad); err == nil {
		t.Error("expected error for inverted range")
	}
	if err := validateDescriptors(bad[:2]); err == nil {
		t.Error("expected error for short table")
	}
}

func TestIndicatorCommand(t *testing.T) {
	tests := []struct {
		param     int
		wantIndex int
		wantOn    bool
	}{
		{11, 0, true},
		{10, 0, false},
		{31, 2, true},
		{39, 2, true},
		{80, 7, false},
		{0, -1, false},
	}
	for _, tt := range tests {
		index, on := IndicatorCommand(tt.param)
		if index != tt.wantIndex || on != tt.wantOn {
			t.Errorf("IndicatorCommand(%d) = %d, %v, want %d, %v", tt.param, index, on, tt.wantIndex, tt.wantOn)
		}
	}
	if got := IndicatorParam(2, true); got != 31 {
		t.Errorf("IndicatorParam(2, true) = %d, want 31", got)
	}
}

func TestDivisorCommand(t *testing.T) {
	tests := []struct {
		param int
		want  Divisors
	}{
		{0, Divisors{Normal: 1, VFO: 1}},
		{35, Divisors{Normal: 5, VFO: 3}},
		{40, Divisors{Normal: 1, VFO: 4}},
		{7, Divisors{Normal: 7, VFO: 1}},
		{99, Divisors{Normal: 9, VFO: 9}},
	}
	for _, tt := range tests {
		if got := DivisorCommand(tt.param); got != tt.want {
			t.Errorf("DivisorCommand(%d) = %+v, want %+v", tt.param, got, tt.want)
		}
	}
	if got := (Divisors{Normal: 5, VFO: 3}).Param(); got != 35 {
		t.Errorf("Divisors.Param() = %d, want 35", got)
	}
}

func TestSoftwareVersion(t *testing.T) {
	v := Version{ProductID: 2, HWVersion: 3, SWVersion: 15}
	if got := v.Param(); got != 203015 {
		t.Errorf("Param() = %d, want 203015", got)
	}
	if got := UnpackSoftwareVersion(203015); got != v {
		t.Errorf("UnpackSoftwareVersion(203015) = %+v, want %+v", got, v)
	}
}

func TestDispatcher(t *testing.T) {
	d := NewDispatcher()

	var gotParam int
	d.HandleNumericFunc(CmdIndicator, func(param int) { gotParam = param })
	queried := false
	d.HandleQueryFunc(CmdSoftwareVersion, func() { queried = true })

	if !d.DispatchNumeric(CmdIndicator, 5000) {
		t.Fatal("DispatchNumeric did not find handler")
	}
	if gotParam != 999 {
		t.Errorf("handler got %d, want clipped 999", gotParam)
	}

	if !d.DispatchQuery(CmdSoftwareVersion) || !queried {
		t.Error("query handler not run")
	}

	if d.DispatchNumeric(CmdVFOUp, 1) {
		t.Error("DispatchNumeric reported handler for unregistered command")
	}
	if d.DispatchQuery(CommandID(42)) {
		t.Error("DispatchQuery reported handler for unknown command")
	}
}

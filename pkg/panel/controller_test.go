// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package panel

import (
	"errors"
	"testing"
)

type testRig struct {
	ctrl       *Controller
	matrix     *fakeMatrix
	emitter    *recordingEmitter
	indicators *recordingIndicators
	divisors   *recordingDivisors
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	r := &testRig{
		matrix:     newFakeMatrix(),
		emitter:    &recordingEmitter{},
		indicators: &recordingIndicators{},
		divisors:   &recordingDivisors{},
	}
	ctrl, err := NewController(Config{
		Matrix:     r.matrix,
		Emitter:    r.emitter,
		Indicators: r.indicators,
		Store:      r.divisors,
		Applier:    r.divisors,
		Scan:       testScanConfig(),
		Version:    Version{ProductID: 2, HWVersion: 3, SWVersion: 15},
		Divisors:   Divisors{Normal: 2, VFO: 4},
	})
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	r.ctrl = ctrl
	return r
}

func TestNewController_RequiresEmitter(t *testing.T) {
	_, err := NewController(Config{})
	if !errors.Is(err, ErrNoEmitter) {
		t.Errorf("err = %v, want ErrNoEmitter", err)
	}
}

func TestNewController_GeometryMismatch(t *testing.T) {
	tr, err := NewTranslator(make([]uint8, 16), 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewController(Config{
		Matrix:     newFakeMatrix(),
		Emitter:    &recordingEmitter{},
		Translator: tr,
	})
	if err == nil {
		t.Error("expected error for translator/scanner geometry mismatch")
	}
}

func TestNewController_AppliesInitialDivisors(t *testing.T) {
	r := newTestRig(t)
	if len(r.divisors.applied) != 1 || r.divisors.applied[0] != [2]int{2, 4} {
		t.Errorf("applied = %v, want [[2 4]]", r.divisors.applied)
	}
	if len(r.divisors.persisted) != 0 {
		t.Errorf("construction persisted divisors: %v", r.divisors.persisted)
	}
}

func TestController_TickReportsPressLongPressRelease(t *testing.T) {
	r := newTestRig(t)
	cfg := testScanConfig()

	// Scan code 10 (column 1, row 2) reports encoder push button 1
	col, row := 1, 2
	r.matrix.press(col, row)
	for i := 0; i < cfg.DebounceTicks+cfg.LongPressTicks+50; i++ {
		r.ctrl.Tick()
	}
	r.matrix.release(col, row)
	for i := 0; i < 3*cfg.DebounceTicks; i++ {
		r.ctrl.Tick()
	}

	want := []message{
		{CmdPushbutton, 11},
		{CmdPushbutton, 12},
		{CmdPushbutton, 10},
	}
	if len(r.emitter.messages) != len(want) {
		t.Fatalf("messages = %v, want %v", r.emitter.messages, want)
	}
	for i := range want {
		if r.emitter.messages[i] != want[i] {
			t.Errorf("message %d = %v, want %v", i, r.emitter.messages[i], want[i])
		}
	}
}

func TestController_TickDropsUnmappedPositions(t *testing.T) {
	r := newTestRig(t)

	// Scan code 32 (column 4, row 0) is unused
	r.matrix.press(4, 0)
	for i := 0; i < 200; i++ {
		r.ctrl.Tick()
	}
	r.matrix.release(4, 0)
	for i := 0; i < 50; i++ {
		r.ctrl.Tick()
	}
	if len(r.emitter.messages) != 0 {
		t.Errorf("unmapped position emitted %v", r.emitter.messages)
	}
}

func TestController_ShiftRemapAndClear(t *testing.T) {
	r := newTestRig(t)

	r.ctrl.OnPushbutton(ButtonShift, true, false)
	if !r.ctrl.Modes().ShiftActive {
		t.Fatal("shift press did not activate shift")
	}
	if got := r.emitter.last(); got != (message{CmdPushbutton, 291}) {
		t.Errorf("shift press emitted %v, want ZZZP 291", got)
	}

	r.ctrl.OnPushbutton(ButtonShift, false, false)
	if !r.ctrl.Modes().ShiftActive {
		t.Fatal("releasing shift cleared shift")
	}

	r.ctrl.OnPushbutton(22, true, false)
	if got := r.emitter.last(); got != (message{CmdPushbutton, 141}) {
		t.Errorf("shifted press of 22 emitted %v, want 141", got)
	}

	r.ctrl.OnPushbutton(22, false, false)
	if got := r.emitter.last(); got != (message{CmdPushbutton, 140}) {
		t.Errorf("shifted release of 22 emitted %v, want 140", got)
	}
	if r.ctrl.Modes().ShiftActive {
		t.Error("release of another button left shift active")
	}

	r.ctrl.OnPushbutton(22, true, false)
	if got := r.emitter.last(); got != (message{CmdPushbutton, 221}) {
		t.Errorf("unshifted press of 22 emitted %v, want 221", got)
	}
}

func TestController_ShiftToggleOff(t *testing.T) {
	r := newTestRig(t)
	r.ctrl.OnPushbutton(ButtonShift, true, false)
	r.ctrl.OnPushbutton(ButtonShift, false, false)
	r.ctrl.OnPushbutton(ButtonShift, true, false)
	if r.ctrl.Modes().ShiftActive {
		t.Error("second shift press did not deactivate shift")
	}
}

func TestController_LongPressDoesNotToggle(t *testing.T) {
	r := newTestRig(t)
	r.ctrl.OnPushbutton(ButtonDiversity, true, false)
	r.ctrl.OnPushbutton(ButtonDiversity, true, true)
	if !r.ctrl.Modes().DiversityActive {
		t.Error("long press toggled diversity")
	}
	if got := r.emitter.last(); got != (message{CmdPushbutton, 72}) {
		t.Errorf("long press emitted %v, want 72", got)
	}
}

func TestController_DiversityRemap(t *testing.T) {
	r := newTestRig(t)

	r.ctrl.OnEncoder(6, 1)
	if got := r.emitter.last(); got != (message{CmdEncoder, 141}) {
		t.Errorf("encoder 6 without diversity emitted %v, want 141", got)
	}

	r.ctrl.OnPushbutton(ButtonDiversity, true, false)
	r.ctrl.OnEncoder(6, 1)
	if got := r.emitter.last(); got != (message{CmdEncoder, 71}) {
		t.Errorf("encoder 6 with diversity emitted %v, want 71", got)
	}
}

func TestController_RitXitRemap(t *testing.T) {
	r := newTestRig(t)

	r.ctrl.OnEncoder(9, -3)
	if got := r.emitter.last(); got != (message{CmdEncoder, 673}) {
		t.Errorf("encoder 9 with RIT/XIT off emitted %v, want 673", got)
	}

	r.ctrl.OnPushbutton(ButtonRitXit, true, false)
	r.ctrl.OnEncoder(9, -3)
	if got := r.emitter.last(); got != (message{CmdEncoder, 603}) {
		t.Errorf("encoder 9 with RIT emitted %v, want 603", got)
	}

	r.ctrl.OnPushbutton(ButtonRitXit, true, false)
	r.ctrl.OnPushbutton(ButtonRitXit, true, false)
	if r.ctrl.Modes().RitXit != RitXitOff {
		t.Errorf("RitXit = %v after three presses, want OFF", r.ctrl.Modes().RitXit)
	}
}

func TestController_EncoderZeroClicks(t *testing.T) {
	r := newTestRig(t)
	r.ctrl.OnEncoder(3, 0)
	r.ctrl.OnVfoEncoder(0)
	if len(r.emitter.messages) != 0 {
		t.Errorf("zero clicks emitted %v", r.emitter.messages)
	}
}

func TestController_VfoEncoder(t *testing.T) {
	r := newTestRig(t)

	r.ctrl.OnVfoEncoder(5)
	if got := r.emitter.last(); got != (message{CmdVFOUp, 5}) {
		t.Errorf("VFO +5 emitted %v", got)
	}
	r.ctrl.OnVfoEncoder(-120)
	if got := r.emitter.last(); got != (message{CmdVFODown, 99}) {
		t.Errorf("VFO -120 emitted %v, want clipped 99", got)
	}
}

func TestController_SetIndicator(t *testing.T) {
	r := newTestRig(t)
	r.ctrl.OnNumericCommand(CmdIndicator, 31)
	r.ctrl.OnNumericCommand(CmdIndicator, 30)

	want := []ledCall{{2, true}, {2, false}}
	if len(r.indicators.calls) != 2 || r.indicators.calls[0] != want[0] || r.indicators.calls[1] != want[1] {
		t.Errorf("LED calls = %v, want %v", r.indicators.calls, want)
	}
}

func TestController_SetDivisors(t *testing.T) {
	r := newTestRig(t)
	r.ctrl.OnNumericCommand(CmdEncoderIncrement, 30)

	want := [2]int{1, 3}
	if got := r.ctrl.Divisors(); got != (Divisors{Normal: 1, VFO: 3}) {
		t.Errorf("Divisors() = %+v", got)
	}
	if len(r.divisors.persisted) != 1 || r.divisors.persisted[0] != want {
		t.Errorf("persisted = %v, want [%v]", r.divisors.persisted, want)
	}
	if n := len(r.divisors.applied); n != 2 || r.divisors.applied[n-1] != want {
		t.Errorf("applied = %v, want last %v", r.divisors.applied, want)
	}
}

func TestController_Queries(t *testing.T) {
	r := newTestRig(t)

	r.ctrl.OnQueryCommand(CmdSoftwareVersion)
	if got := r.emitter.last(); got != (message{CmdSoftwareVersion, 203015}) {
		t.Errorf("version query emitted %v", got)
	}

	r.ctrl.OnQueryCommand(CmdEncoderIncrement)
	if got := r.emitter.last(); got != (message{CmdEncoderIncrement, 42}) {
		t.Errorf("increment query emitted %v, want 42", got)
	}
}

func TestController_UnknownCommandsIgnored(t *testing.T) {
	r := newTestRig(t)
	r.ctrl.OnNumericCommand(CmdPushbutton, 121)
	r.ctrl.OnNumericCommand(CommandID(77), 1)
	r.ctrl.OnQueryCommand(CmdIndicator)
	if len(r.emitter.messages) != 0 || len(r.indicators.calls) != 0 {
		t.Errorf("unknown commands had effects: %v %v", r.emitter.messages, r.indicators.calls)
	}
}

func TestController_BrightnessChord(t *testing.T) {
	m := newFakeMatrix()
	em := &recordingEmitter{}
	rec := &recordingBrightness{}
	dimmer := NewDimmer(64, rec, rec)

	ctrl, err := NewController(Config{
		Matrix:             m,
		Emitter:            em,
		Scan:               testScanConfig(),
		Dimmer:             dimmer,
		BrightnessScanCode: 32,
	})
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}

	m.press(4, 0)
	for i := 0; i < 40; i++ {
		ctrl.Tick()
	}
	ctrl.OnEncoder(2, 2)
	if dimmer.Level() != 80 {
		t.Errorf("Level() = %d, want 80", dimmer.Level())
	}
	if len(em.messages) != 0 {
		t.Errorf("encoder emitted while brightness button held: %v", em.messages)
	}

	m.release(4, 0)
	for i := 0; i < 40; i++ {
		ctrl.Tick()
	}
	ctrl.OnEncoder(2, 2)
	if got := em.last(); got != (message{CmdEncoder, 32}) {
		t.Errorf("encoder after release emitted %v, want 32", got)
	}
}

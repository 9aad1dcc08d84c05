// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package vpanel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Thermoquad/andromeda/pkg/cat"
	"github.com/Thermoquad/andromeda/pkg/panel"
)

// ErrUnmappedButton is returned when pressing a report code that is not on
// the matrix
var ErrUnmappedButton = errors.New("vpanel: button not on matrix")

// ErrUnknownEncoder is returned when turning an encoder the panel does not
// have
var ErrUnknownEncoder = errors.New("vpanel: no such encoder")

// Config wires a virtual panel. Emitter is required.
type Config struct {
	Emitter         panel.MessageEmitter
	DivisorStore    panel.DivisorStore
	BrightnessStore panel.BrightnessStore

	Scan               panel.ScanConfig
	Version            panel.Version
	Divisors           panel.Divisors
	Brightness         uint8
	BrightnessScanCode int
	LEDs               int

	Logger *zap.Logger
}

// Panel is a panel.Controller running on virtual hardware. Its methods are
// safe for concurrent use; the controller itself only ever runs under mu.
type Panel struct {
	mu        sync.Mutex
	ctrl      *panel.Controller
	divider   *panel.Divider
	dimmer    *panel.Dimmer
	matrix    *Matrix
	leds      *LEDBank
	backlight *Backlight
	ticks     uint64
}

// State is a snapshot of the virtual panel
type State struct {
	Ticks      uint64
	Modes      panel.ModeFlags
	Divisors   panel.Divisors
	Version    panel.Version
	Scan       panel.ScanStatus
	Held       []int // report codes
	LEDs       []bool
	Brightness uint8
}

// New creates a virtual panel in its power-on state
func New(cfg Config) (*Panel, error) {
	if cfg.Scan == (panel.ScanConfig{}) {
		cfg.Scan = panel.DefaultScanConfig()
	}
	if cfg.LEDs == 0 {
		cfg.LEDs = DefaultLEDs
	}

	p := &Panel{
		matrix:    NewMatrix(cfg.Scan.Rows),
		leds:      NewLEDBank(cfg.LEDs),
		backlight: &Backlight{},
		divider:   panel.NewDivider(panel.NumEncoders, cfg.Divisors),
	}
	p.dimmer = panel.NewDimmer(cfg.Brightness, p.backlight, cfg.BrightnessStore)

	ctrl, err := panel.NewController(panel.Config{
		Matrix:             p.matrix,
		Emitter:            cfg.Emitter,
		Indicators:         p.leds,
		Store:              cfg.DivisorStore,
		Applier:            p.divider,
		Scan:               cfg.Scan,
		Version:            cfg.Version,
		Divisors:           cfg.Divisors,
		Dimmer:             p.dimmer,
		BrightnessScanCode: cfg.BrightnessScanCode,
		Logger:             cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create controller: %w", err)
	}
	p.ctrl = ctrl
	return p, nil
}

// Tick runs one scan tick and counts down timed button holds
func (p *Panel) Tick() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctrl.Tick()
	p.matrix.Advance()
	p.ticks++
}

// Run ticks the panel every interval until ctx is done
func (p *Panel) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Tick()
		}
	}
}

// Press holds the button with the given report code for ticks scan ticks.
// Use HoldUntilReleased with Release for an open-ended hold.
func (p *Panel) Press(reportCode, ticks int) error {
	sc, err := p.scanCode(reportCode)
	if err != nil {
		return err
	}
	p.matrix.Hold(sc, ticks)
	return nil
}

// PressScanCode holds the button at a matrix position directly. Buttons
// without a report code, such as the brightness modifier, are pressed this
// way.
func (p *Panel) PressScanCode(scanCode, ticks int) error {
	t := p.ctrl.Translator()
	if scanCode < 0 || scanCode >= t.Columns()*t.Rows() {
		return fmt.Errorf("%w: scan code %d", ErrUnmappedButton, scanCode)
	}
	p.matrix.Hold(scanCode, ticks)
	return nil
}

// ReleaseScanCode lets go of the button at a matrix position
func (p *Panel) ReleaseScanCode(scanCode int) {
	p.matrix.Release(scanCode)
}

// Release lets go of the button with the given report code
func (p *Panel) Release(reportCode int) error {
	sc, err := p.scanCode(reportCode)
	if err != nil {
		return err
	}
	p.matrix.Release(sc)
	return nil
}

func (p *Panel) scanCode(reportCode int) (int, error) {
	t := p.ctrl.Translator()
	col, row, ok := t.Position(reportCode)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnmappedButton, reportCode)
	}
	return t.ScanCode(col, row), nil
}

// TurnEncoder turns encoder 0..panel.NumEncoders-1 by detents (negative is
// anticlockwise); the encoder divisor decides how many clicks result
func (p *Panel) TurnEncoder(encoder, detents int) error {
	if encoder < 0 || encoder >= panel.NumEncoders {
		return fmt.Errorf("%w: %d", ErrUnknownEncoder, encoder)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctrl.OnEncoder(encoder, p.divider.Encoder(encoder, detents))
	return nil
}

// TurnVFO turns the VFO encoder by detents
func (p *Panel) TurnVFO(detents int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctrl.OnVfoEncoder(p.divider.VFO(detents))
}

// HandleMessage dispatches an inbound CAT message to the controller
func (p *Panel) HandleMessage(m *cat.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m.Dispatch(p.ctrl)
}

// Snapshot returns the current panel state
func (p *Panel) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.ctrl.Translator()
	var held []int
	for _, sc := range p.matrix.Held() {
		if code := t.Translate(sc); code != 0 {
			held = append(held, code)
		}
	}
	return State{
		Ticks:      p.ticks,
		Modes:      p.ctrl.Modes(),
		Divisors:   p.ctrl.Divisors(),
		Version:    p.ctrl.Version(),
		Scan:       p.ctrl.Scanner().Status(),
		Held:       held,
		LEDs:       p.leds.States(),
		Brightness: p.backlight.Level(),
	}
}

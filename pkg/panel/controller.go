// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package panel

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Matrix is the button matrix hardware: a column-select output and an 8-bit
// active-low row input. Reads never fail; on a bus error the implementation
// returns 0xFF (nothing pressed).
type Matrix interface {
	ReadRowMask() byte
	SetActiveColumn(mask byte)
}

// IndicatorSink drives the panel indicators
type IndicatorSink interface {
	SetLED(index int, on bool)
}

// DivisorStore persists the encoder divisors
type DivisorStore interface {
	PersistDivisors(normal, vfo int)
}

// DivisorApplier propagates new encoder divisors to the encoder timing
type DivisorApplier interface {
	ApplyDivisors(normal, vfo int)
}

// MessageEmitter hands an outbound command and its clipped parameter to the
// CAT framer
type MessageEmitter interface {
	EmitMessage(cmd CommandID, param int)
}

// ErrNoEmitter is returned when a controller is created without an emitter
var ErrNoEmitter = errors.New("panel: message emitter is required")

// Config wires a Controller to its collaborators. Emitter is required;
// Matrix is required only if Tick is used. Other collaborators may be nil.
type Config struct {
	Matrix     Matrix
	Emitter    MessageEmitter
	Indicators IndicatorSink
	Store      DivisorStore
	Applier    DivisorApplier

	Scan       ScanConfig
	Translator *Translator
	Version    Version
	Divisors   Divisors

	// Dimmer, when set, takes encoder clicks while the button at
	// BrightnessScanCode is held.
	Dimmer             *Dimmer
	BrightnessScanCode int

	Logger *zap.Logger
}

// Controller is the front panel core. All methods must be called from a
// single goroutine.
type Controller struct {
	scanner    *Scanner
	translator *Translator
	dispatcher *Dispatcher
	modes      ModeFlags
	divisors   Divisors
	version    Version

	emitter    MessageEmitter
	indicators IndicatorSink
	store      DivisorStore
	applier    DivisorApplier

	dimmer             *Dimmer
	brightnessScanCode int

	log *zap.Logger
}

// NewController creates a controller in its power-on state
func NewController(cfg Config) (*Controller, error) {
	if cfg.Emitter == nil {
		return nil, ErrNoEmitter
	}

	c := &Controller{
		translator:         cfg.Translator,
		divisors:           cfg.Divisors,
		version:            cfg.Version,
		emitter:            cfg.Emitter,
		indicators:         cfg.Indicators,
		store:              cfg.Store,
		applier:            cfg.Applier,
		dimmer:             cfg.Dimmer,
		brightnessScanCode: cfg.BrightnessScanCode,
		log:                cfg.Logger,
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.translator == nil {
		c.translator = DefaultTranslator()
	}
	c.divisors.Normal = max(c.divisors.Normal, 1)
	c.divisors.VFO = max(c.divisors.VFO, 1)

	if cfg.Matrix != nil {
		scan := cfg.Scan
		if scan == (ScanConfig{}) {
			scan = DefaultScanConfig()
		}
		if scan.Columns != c.translator.Columns() || scan.Rows != c.translator.Rows() {
			return nil, fmt.Errorf("scan matrix %dx%d does not match translator %dx%d",
				scan.Columns, scan.Rows, c.translator.Columns(), c.translator.Rows())
		}
		s, err := NewScanner(cfg.Matrix, scan)
		if err != nil {
			return nil, err
		}
		c.scanner = s
	}

	c.dispatcher = NewDispatcher()
	c.dispatcher.HandleNumericFunc(CmdIndicator, c.setIndicator)
	c.dispatcher.HandleNumericFunc(CmdEncoderIncrement, c.setDivisors)
	c.dispatcher.HandleQueryFunc(CmdSoftwareVersion, c.reportVersion)
	c.dispatcher.HandleQueryFunc(CmdEncoderIncrement, c.reportDivisors)

	if c.applier != nil {
		c.applier.ApplyDivisors(c.divisors.Normal, c.divisors.VFO)
	}

	return c, nil
}

// Modes returns the current mode flags
func (c *Controller) Modes() ModeFlags {
	return c.modes
}

// Divisors returns the current encoder divisors
func (c *Controller) Divisors() Divisors {
	return c.divisors
}

// Version returns the identity reported to SOFTWARE_VERSION queries
func (c *Controller) Version() Version {
	return c.version
}

// Scanner returns the matrix scanner, or nil when no matrix is attached
func (c *Controller) Scanner() *Scanner {
	return c.scanner
}

// Translator returns the report code translator
func (c *Controller) Translator() *Translator {
	return c.translator
}

// Tick advances the matrix scanner by one time slice and reports any
// resulting button transition. It must be called at a fixed cadence.
func (c *Controller) Tick() {
	if c.scanner == nil {
		return
	}
	ev := c.scanner.Tick()
	if ev.Kind == EventNone {
		return
	}

	code := c.translator.Translate(ev.ScanCode)
	if code == 0 {
		c.log.Debug("unmapped matrix position",
			zap.Int("column", ev.Column), zap.Int("row", ev.Row), zap.Stringer("event", ev.Kind))
		return
	}

	switch ev.Kind {
	case EventPress:
		c.OnPushbutton(code, true, false)
	case EventLongPress:
		c.OnPushbutton(code, true, true)
	case EventRelease:
		c.OnPushbutton(code, false, false)
	}
}

// OnPushbutton reports a pushbutton transition. Short presses of the
// diversity, RIT/XIT and shift buttons change the mode flags; these changes
// apply to later events only.
func (c *Controller) OnPushbutton(reportCode int, isPressed, isLongPressed bool) {
	button := c.modes.RemapButton(reportCode)
	t := TransitionOf(isPressed, isLongPressed)

	switch t {
	case TransitionPress:
		c.modes.applyPress(button)
	case TransitionRelease:
		c.modes.applyRelease(button)
	}

	c.log.Debug("pushbutton",
		zap.Int("code", reportCode), zap.Int("button", button), zap.Stringer("transition", t))
	c.emit(CmdPushbutton, ButtonParam(button, t))
}

// OnEncoder reports clicks of a numbered (non-VFO) encoder
func (c *Controller) OnEncoder(encoder, clicks int) {
	if clicks == 0 {
		return
	}
	if c.dimmer != nil && c.scanner != nil {
		if held, ok := c.scanner.HeldScanCode(); ok && held == c.brightnessScanCode {
			c.dimmer.Adjust(clicks)
			c.log.Debug("brightness", zap.Uint8("level", c.dimmer.Level()))
			return
		}
	}

	logical := c.modes.RemapEncoder(encoder)
	param, ok := EncoderParam(logical, clicks)
	if !ok {
		return
	}
	c.log.Debug("encoder",
		zap.Int("encoder", encoder), zap.Int("logical", logical), zap.Int("clicks", clicks))
	c.emit(CmdEncoder, param)
}

// OnVfoEncoder reports clicks of the VFO encoder
func (c *Controller) OnVfoEncoder(clicks int) {
	cmd, param, ok := VFOCommand(clicks)
	if !ok {
		return
	}
	c.emit(cmd, param)
}

// OnNumericCommand handles an inbound command with parameter.
// Unknown commands are ignored.
func (c *Controller) OnNumericCommand(cmd CommandID, param int) {
	if !c.dispatcher.DispatchNumeric(cmd, param) {
		c.log.Debug("ignored command", zap.Stringer("cmd", cmd), zap.Int("param", param))
	}
}

// OnQueryCommand handles an inbound command without parameter.
// Unknown commands are ignored.
func (c *Controller) OnQueryCommand(cmd CommandID) {
	if !c.dispatcher.DispatchQuery(cmd) {
		c.log.Debug("ignored query", zap.Stringer("cmd", cmd))
	}
}

func (c *Controller) emit(cmd CommandID, param int) {
	c.emitter.EmitMessage(cmd, Clip(param, cmd))
}

func (c *Controller) setIndicator(param int) {
	index, on := IndicatorCommand(param)
	c.log.Debug("indicator", zap.Int("index", index), zap.Bool("on", on))
	if c.indicators != nil {
		c.indicators.SetLED(index, on)
	}
}

func (c *Controller) setDivisors(param int) {
	c.divisors = DivisorCommand(param)
	c.log.Info("encoder divisors changed",
		zap.Int("normal", c.divisors.Normal), zap.Int("vfo", c.divisors.VFO))
	if c.store != nil {
		c.store.PersistDivisors(c.divisors.Normal, c.divisors.VFO)
	}
	if c.applier != nil {
		c.applier.ApplyDivisors(c.divisors.Normal, c.divisors.VFO)
	}
}

func (c *Controller) reportVersion() {
	c.emit(CmdSoftwareVersion, c.version.Param())
}

func (c *Controller) reportDivisors() {
	c.emit(CmdEncoderIncrement, c.divisors.Param())
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package panel

// Divisors are the encoder click divisors: raw detents per reported click
type Divisors struct {
	Normal int
	VFO    int
}

// DefaultDivisors returns one click per detent for every encoder
func DefaultDivisors() Divisors {
	return Divisors{Normal: 1, VFO: 1}
}

// Param packs the divisors into an ENCODER_INCREMENT parameter: VFO*10 + normal
func (d Divisors) Param() int {
	return d.VFO*10 + d.Normal
}

// Version identifies the panel firmware to the host
type Version struct {
	ProductID int
	HWVersion int
	SWVersion int
}

// Param packs the version into a SOFTWARE_VERSION parameter:
// product*100000 + hardware*1000 + software
func (v Version) Param() int {
	return v.ProductID*100000 + v.HWVersion*1000 + v.SWVersion
}

// UnpackSoftwareVersion reverses Version.Param
func UnpackSoftwareVersion(param int) Version {
	return Version{
		ProductID: param / 100000,
		HWVersion: (param / 1000) % 100,
		SWVersion: param % 1000,
	}
}

// IndicatorCommand decodes an INDICATOR parameter. The low digit is the
// state (non-zero for on), the remaining digits the 1-based indicator number.
func IndicatorCommand(param int) (index int, on bool) {
	return param/10 - 1, param%10 != 0
}

// IndicatorParam packs a 0-based indicator index and state
func IndicatorParam(index int, on bool) int {
	param := (index + 1) * 10
	if on {
		param++
	}
	return param
}

// DivisorCommand decodes an ENCODER_INCREMENT parameter. The low digit sets
// the normal encoder divisor and the remaining digits the VFO divisor; a
// zero divisor is replaced by 1.
func DivisorCommand(param int) Divisors {
	d := Divisors{Normal: param % 10, VFO: param / 10}
	if d.Normal == 0 {
		d.Normal = 1
	}
	if d.VFO == 0 {
		d.VFO = 1
	}
	return d
}

// NumericHandler handles a command carrying a (clipped) parameter
type NumericHandler func(param int)

// QueryHandler handles a command without parameter
type QueryHandler func()

// Dispatcher routes inbound commands to registered handlers.
// Commands without a handler are ignored.
type Dispatcher struct {
	numeric map[CommandID]NumericHandler
	query   map[CommandID]QueryHandler
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		numeric: make(map[CommandID]NumericHandler),
		query:   make(map[CommandID]QueryHandler),
	}
}

// HandleNumericFunc registers the handler for a command with parameter
func (d *Dispatcher) HandleNumericFunc(cmd CommandID, h NumericHandler) {
	d.numeric[cmd] = h
}

// HandleQueryFunc registers the handler for a command without parameter
func (d *Dispatcher) HandleQueryFunc(cmd CommandID, h QueryHandler) {
	d.query[cmd] = h
}

// DispatchNumeric clips param to the command's range and runs its handler.
// It reports whether a handler was found.
func (d *Dispatcher) DispatchNumeric(cmd CommandID, param int) bool {
	h, ok := d.numeric[cmd]
	if !ok {
		return false
	}
	h(Clip(param, cmd))
	return true
}

// DispatchQuery runs the query handler for cmd.
// It reports whether a handler was found.
func (d *Dispatcher) DispatchQuery(cmd CommandID) bool {
	h, ok := d.query[cmd]
	if !ok {
		return false
	}
	h()
	return true
}

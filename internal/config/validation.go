// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/Thermoquad/andromeda/pkg/panel"
)

// ValidationError is a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks every field and returns all problems combined. Use
// multierr.Errors to list them.
func (c *Config) Validate() error {
	var err error

	if c.Connection.Baud <= 0 {
		err = multierr.Append(err, invalid("connection.baud", "must be positive, got %d", c.Connection.Baud))
	}

	if c.Panel.TickInterval <= 0 {
		err = multierr.Append(err, invalid("panel.tick_interval", "must be positive, got %s", c.Panel.TickInterval))
	}
	if c.Panel.DebounceTicks < 0 {
		err = multierr.Append(err, invalid("panel.debounce_ticks", "must not be negative, got %d", c.Panel.DebounceTicks))
	}
	if c.Panel.LongPressTicks <= 0 {
		err = multierr.Append(err, invalid("panel.long_press_ticks", "must be positive, got %d", c.Panel.LongPressTicks))
	}
	if n := panel.NumColumns * panel.NumRows; c.Panel.BrightnessScanCode < 0 || c.Panel.BrightnessScanCode >= n {
		err = multierr.Append(err, invalid("panel.brightness_scan_code", "must be in 0..%d, got %d", n-1, c.Panel.BrightnessScanCode))
	}
	if c.Panel.Brightness < 0 || c.Panel.Brightness > 255 {
		err = multierr.Append(err, invalid("panel.brightness", "must be in 0..255, got %d", c.Panel.Brightness))
	}

	err = multierr.Append(err, checkRange("identity.product_id", c.Identity.ProductID, 99))
	err = multierr.Append(err, checkRange("identity.hw_version", c.Identity.HWVersion, 99))
	err = multierr.Append(err, checkRange("identity.sw_version", c.Identity.SWVersion, 999))

	if c.Settings.Path == "" {
		err = multierr.Append(err, invalid("settings.path", "must not be empty"))
	}
	if c.Settings.FlushDelay < 0 {
		err = multierr.Append(err, invalid("settings.flush_delay", "must not be negative, got %s", c.Settings.FlushDelay))
	}

	if c.Hardware.Address < 0x20 || c.Hardware.Address > 0x27 {
		err = multierr.Append(err, invalid("hardware.address", "MCP23017 address must be in 0x20..0x27, got %#02x", c.Hardware.Address))
	}

	if _, lerr := zapcore.ParseLevel(c.Logging.Level); lerr != nil {
		err = multierr.Append(err, invalid("logging.level", "%v", lerr))
	}

	return err
}

func checkRange(field string, v, max int) error {
	if v < 0 || v > max {
		return invalid(field, "must be in 0..%d, got %d", max, v)
	}
	return nil
}

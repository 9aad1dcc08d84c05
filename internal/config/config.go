// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads the andromeda configuration from YAML or TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Thermoquad/andromeda/pkg/mcp23017"
	"github.com/Thermoquad/andromeda/pkg/panel"
)

// Config holds the complete andromeda configuration.
type Config struct {
	Connection ConnectionConfig `yaml:"connection" toml:"connection"`
	Panel      PanelConfig      `yaml:"panel" toml:"panel"`
	Identity   IdentityConfig   `yaml:"identity" toml:"identity"`
	Settings   SettingsConfig   `yaml:"settings" toml:"settings"`
	Hardware   HardwareConfig   `yaml:"hardware" toml:"hardware"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
}

// ConnectionConfig selects the CAT link. URL takes precedence over Port.
type ConnectionConfig struct {
	Port        string `yaml:"port" toml:"port"`
	Baud        int    `yaml:"baud" toml:"baud"`
	URL         string `yaml:"url" toml:"url"`
	Username    string `yaml:"username" toml:"username"`
	NoSSLVerify bool   `yaml:"no_ssl_verify" toml:"no_ssl_verify"`
}

// PanelConfig holds the scanner timing and the brightness chord.
type PanelConfig struct {
	// TickInterval is the scan period; debounce and long press are counted
	// in ticks.
	TickInterval   time.Duration `yaml:"tick_interval" toml:"tick_interval"`
	DebounceTicks  int           `yaml:"debounce_ticks" toml:"debounce_ticks"`
	LongPressTicks int           `yaml:"long_press_ticks" toml:"long_press_ticks"`

	// BrightnessScanCode is the matrix position of the brightness modifier.
	BrightnessScanCode int `yaml:"brightness_scan_code" toml:"brightness_scan_code"`
	Brightness         int `yaml:"brightness" toml:"brightness"`
}

// IdentityConfig is reported in answer to the software version query.
type IdentityConfig struct {
	ProductID int `yaml:"product_id" toml:"product_id"`
	HWVersion int `yaml:"hw_version" toml:"hw_version"`
	SWVersion int `yaml:"sw_version" toml:"sw_version"`
}

// SettingsConfig locates the persistent settings image.
type SettingsConfig struct {
	Path string `yaml:"path" toml:"path"`

	// FlushDelay is how long a change must settle before it is written.
	FlushDelay time.Duration `yaml:"flush_delay" toml:"flush_delay"`
}

// HardwareConfig locates the matrix expander.
type HardwareConfig struct {
	I2CBus  string `yaml:"i2c_bus" toml:"i2c_bus"`
	Address uint16 `yaml:"address" toml:"address"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level" toml:"level"`
	Development bool   `yaml:"development" toml:"development"`
}

// Default values
const (
	DefaultBaud         = 115200
	DefaultTickInterval = 2 * time.Millisecond
	DefaultBrightness   = 128
	DefaultFlushDelay   = 2 * time.Second
	DefaultLogLevel     = "info"

	// The brightness modifier sits at column 4, row 0, which carries no
	// report code.
	DefaultBrightnessScanCode = 32
)

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Connection: ConnectionConfig{
			Baud: DefaultBaud,
		},
		Panel: PanelConfig{
			TickInterval:       DefaultTickInterval,
			DebounceTicks:      panel.DefaultDebounceTicks,
			LongPressTicks:     panel.DefaultLongPressTicks,
			BrightnessScanCode: DefaultBrightnessScanCode,
			Brightness:         DefaultBrightness,
		},
		Identity: IdentityConfig{
			ProductID: 1,
			HWVersion: 1,
			SWVersion: 9,
		},
		Settings: SettingsConfig{
			Path:       DefaultSettingsPath(),
			FlushDelay: DefaultFlushDelay,
		},
		Hardware: HardwareConfig{
			Address: mcp23017.DefaultAddress,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// DefaultSettingsPath returns the settings image location under the user
// config directory, falling back to the working directory.
func DefaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "andromeda-settings.cbor"
	}
	return filepath.Join(dir, "andromeda", "settings.cbor")
}

// ApplyEnvOverrides applies ANDROMEDA_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ANDROMEDA_PORT"); v != "" {
		c.Connection.Port = v
	}
	if v := os.Getenv("ANDROMEDA_URL"); v != "" {
		c.Connection.URL = v
	}
	if v := os.Getenv("ANDROMEDA_USERNAME"); v != "" {
		c.Connection.Username = v
	}
	if v := os.Getenv("ANDROMEDA_I2C_BUS"); v != "" {
		c.Hardware.I2CBus = v
	}
	if v := os.Getenv("ANDROMEDA_SETTINGS"); v != "" {
		c.Settings.Path = v
	}
	if v := os.Getenv("ANDROMEDA_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("ANDROMEDA_BAUD"); v != "" {
		if baud, err := strconv.Atoi(v); err == nil {
			c.Connection.Baud = baud
		}
	}
}

// ScanConfig returns the scanner configuration for the Andromeda matrix.
func (c *Config) ScanConfig() panel.ScanConfig {
	return panel.ScanConfig{
		Columns:        panel.NumColumns,
		Rows:           panel.NumRows,
		DebounceTicks:  c.Panel.DebounceTicks,
		LongPressTicks: c.Panel.LongPressTicks,
	}
}

// Version returns the identity reported to the host.
func (c *Config) Version() panel.Version {
	return panel.Version{
		ProductID: c.Identity.ProductID,
		HWVersion: c.Identity.HWVersion,
		SWVersion: c.Identity.SWVersion,
	}
}

// LongPressDuration returns the hold time of a long press.
func (c *Config) LongPressDuration() time.Duration {
	return time.Duration(c.Panel.LongPressTicks) * c.Panel.TickInterval
}

// String returns a one-line summary for logging.
func (c *Config) String() string {
	return fmt.Sprintf("tick=%s debounce=%d long_press=%d version=%d",
		c.Panel.TickInterval, c.Panel.DebounceTicks, c.Panel.LongPressTicks, c.Version().Param())
}

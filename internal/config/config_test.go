// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/Thermoquad/andromeda/pkg/panel"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2*time.Millisecond, cfg.Panel.TickInterval)
	assert.Equal(t, 10, cfg.Panel.DebounceTicks)
	assert.Equal(t, 1000, cfg.Panel.LongPressTicks)
	assert.Equal(t, 2*time.Second, cfg.LongPressDuration())
	assert.Equal(t, panel.Version{ProductID: 1, HWVersion: 1, SWVersion: 9}, cfg.Version())
	assert.Equal(t, uint16(0x21), cfg.Hardware.Address)
	assert.Equal(t, 32, cfg.Panel.BrightnessScanCode)
	assert.NoError(t, cfg.ScanConfig().Validate())
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaud, cfg.Connection.Baud)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "andromeda.yaml", `
connection:
  port: /dev/ttyACM0
  baud: 9600
panel:
  tick_interval: 5ms
  long_press_ticks: 400
identity:
  product_id: 2
  hw_version: 3
  sw_version: 15
hardware:
  i2c_bus: "1"
  address: 0x22
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM0", cfg.Connection.Port)
	assert.Equal(t, 9600, cfg.Connection.Baud)
	assert.Equal(t, 5*time.Millisecond, cfg.Panel.TickInterval)
	assert.Equal(t, 400, cfg.Panel.LongPressTicks)
	assert.Equal(t, 10, cfg.Panel.DebounceTicks, "unset fields keep defaults")
	assert.Equal(t, 203015, cfg.Version().Param())
	assert.Equal(t, "1", cfg.Hardware.I2CBus)
	assert.Equal(t, uint16(0x22), cfg.Hardware.Address)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "andromeda.toml", `
[connection]
url = "ws://panel.local/ws"
username = "admin"

[panel]
tick_interval = "1ms"
debounce_ticks = 20

[logging]
level = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ws://panel.local/ws", cfg.Connection.URL)
	assert.Equal(t, "admin", cfg.Connection.Username)
	assert.Equal(t, time.Millisecond, cfg.Panel.TickInterval)
	assert.Equal(t, 20, cfg.Panel.DebounceTicks)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "andromeda.json", "{}"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(writeFile(t, "bad.yaml", "panel: [1, 2"))
	assert.Error(t, err)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Panel.TickInterval = 0
	cfg.Panel.LongPressTicks = -1
	cfg.Identity.SWVersion = 1000
	cfg.Hardware.Address = 0x40
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)

	errs := multierr.Errors(err)
	require.Len(t, errs, 5)

	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		var verr *ValidationError
		require.True(t, errors.As(e, &verr))
		fields = append(fields, verr.Field)
	}
	assert.Equal(t, []string{
		"panel.tick_interval",
		"panel.long_press_ticks",
		"identity.sw_version",
		"hardware.address",
		"logging.level",
	}, fields)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ANDROMEDA_PORT", "/dev/ttyUSB1")
	t.Setenv("ANDROMEDA_BAUD", "57600")
	t.Setenv("ANDROMEDA_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Connection.Port)
	assert.Equal(t, 57600, cfg.Connection.Baud)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestSaveRoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Connection.Port = "/dev/ttyACM1"
			cfg.Panel.TickInterval = 4 * time.Millisecond
			cfg.Identity.SWVersion = 12

			path := filepath.Join(t.TempDir(), "nested", "andromeda"+ext)
			require.NoError(t, Save(cfg, path))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}

	_, err := Marshal(DefaultConfig(), ".ini")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoaderWatch(t *testing.T) {
	path := writeFile(t, "andromeda.yaml", "logging:\n  level: info\n")
	l := NewLoader(path, nil)
	_, err := l.Load()
	require.NoError(t, err)

	changed := make(chan *Config, 1)
	l.OnChange(func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, l.Watch(ctx))

	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o644))

	select {
	case c := <-changed:
		assert.Equal(t, "debug", c.Logging.Level)
		assert.Equal(t, "debug", l.Config().Logging.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

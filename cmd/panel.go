// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/Thermoquad/andromeda/internal/config"
	"github.com/Thermoquad/andromeda/internal/settings"
	"github.com/Thermoquad/andromeda/pkg/cat"
	"github.com/Thermoquad/andromeda/pkg/mcp23017"
	"github.com/Thermoquad/andromeda/pkg/panel"
)

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Run the front panel on MCP23017 hardware",
	Long: `Scan the Andromeda button matrix through its MCP23017 expander and report
button events to the host over CAT.

The matrix is scanned one column per tick (2ms by default). Presses, long
presses (2 seconds by default) and releases are sent as PUSHBUTTON commands
after mode remapping. Inbound INDICATOR, ENCODER_INCREMENT and query commands
from the host are handled, and the encoder divisors and indicator brightness
are kept in the settings file.

Rotary encoders are not read by this command. Divisors set by the host are
stored and reported back, but nothing applies them here.

When a config file is given it is watched, and logging.level changes take
effect without a restart.`,
	RunE: runPanel,
}

func init() {
	rootCmd.AddCommand(panelCmd)
}

// brightnessLog reports brightness changes; the PWM output is board wiring
// outside this program
type brightnessLog struct {
	log *zap.Logger
}

func (b brightnessLog) SetBrightness(level uint8) {
	b.log.Info("indicator brightness", zap.Uint8("level", level))
}

func runPanel(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("initialise host drivers: %w", err)
	}
	bus, err := i2creg.Open(cfg.Hardware.I2CBus)
	if err != nil {
		return fmt.Errorf("open I2C bus %q: %w", cfg.Hardware.I2CBus, err)
	}
	defer bus.Close()

	dev, err := mcp23017.NewI2C(bus, cfg.Hardware.Address, logger.Named("mcp23017"))
	if err != nil {
		return err
	}
	defer dev.Halt()

	store, err := settings.Open(cfg.Settings.Path,
		settings.DefaultImage(uint8(cfg.Panel.Brightness)), cfg.Settings.FlushDelay, logger.Named("settings"))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("settings not saved", zap.Error(err))
		}
	}()
	image := store.Image()

	ctrl, err := panel.NewController(panel.Config{
		Matrix:             dev,
		Emitter:            cat.NewEmitter(conn, logger.Named("cat")),
		Indicators:         dev,
		Store:              store,
		Scan:               cfg.ScanConfig(),
		Version:            cfg.Version(),
		Divisors:           image.Divisors(),
		Dimmer:             panel.NewDimmer(image.Brightness, brightnessLog{logger}, store),
		BrightnessScanCode: cfg.Panel.BrightnessScanCode,
		Logger:             logger.Named("panel"),
	})
	if err != nil {
		return err
	}

	if configPath != "" {
		loader := config.NewLoader(configPath, logger.Named("config"))
		if _, err := loader.Load(); err != nil {
			return err
		}
		followLogLevel(loader)
		if err := loader.Watch(ctx); err != nil {
			logger.Warn("config not watched", zap.Error(err))
		}
	}

	logger.Info("panel running",
		zap.String("connection", connInfo), zap.Stringer("expander", dev),
		zap.Duration("tick", cfg.Panel.TickInterval), zap.Int("version", cfg.Version().Param()))

	inbound := make(chan *cat.Message, 16)
	readErr := make(chan error, 1)
	go func() {
		readErr <- readLoop(ctx, conn, func(m *cat.Message, err error) {
			if err != nil {
				logger.Debug("inbound decode error", zap.Error(err))
				return
			}
			select {
			case inbound <- m:
			case <-ctx.Done():
			}
		})
	}()

	ticker := time.NewTicker(cfg.Panel.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("panel stopped", zap.Uint64("bus_errors", dev.Errors()))
			return nil

		case err := <-readErr:
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)

		case m := <-inbound:
			m.Dispatch(ctrl)

		case <-ticker.C:
			ctrl.Tick()
			if err := store.Tick(); err != nil {
				logger.Warn("settings write failed", zap.Error(err))
			}
		}
	}
}

// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Thermoquad/andromeda/internal/config"
)

// newLogger builds the CLI logger. Logs go to stderr so that command output
// on stdout stays clean. The returned level can be changed at run time.
func newLogger(c config.LoggingConfig, verbose bool) (*zap.Logger, zap.AtomicLevel, error) {
	lvl, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	atom := zap.NewAtomicLevelAt(lvl)

	var zc zap.Config
	if c.Development || verbose {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zc.Sampling = nil
	}
	zc.Level = atom
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	log, err := zc.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	return log, atom, nil
}

// followLogLevel keeps the logger level in step with reloaded configuration.
// --verbose pins the level to debug.
func followLogLevel(loader *config.Loader) {
	loader.OnChange(func(c *config.Config) {
		if verbose {
			return
		}
		lvl, err := zapcore.ParseLevel(c.Logging.Level)
		if err != nil {
			return
		}
		if lvl != level.Level() {
			level.SetLevel(lvl)
			logger.Info("log level changed", zap.Stringer("level", lvl))
		}
	})
}

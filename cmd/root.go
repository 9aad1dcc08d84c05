// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Thermoquad/andromeda/internal/config"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Global flags
	configPath string
	verbose    bool

	// Set up by PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
	level  zap.AtomicLevel
)

var rootCmd = &cobra.Command{
	Use:   "andromeda",
	Short: "Andromeda front panel controller and CAT tool",
	Long: `Andromeda - front panel controller for the Andromeda SDR console.

Runs the front panel (button matrix, encoders, indicators) against a host
speaking the numeric CAT protocol, emulates the panel in a terminal UI, and
provides tools for monitoring and testing a CAT link.

Connection modes:
  Serial:    --port /dev/ttyACM0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

Settings may also be given in a YAML or TOML file with --config; flags
override the file. For WebSocket authentication, the password is read from the
ANDROMEDA_PASSWORD environment variable, or prompted interactively if not
set. The --password flag is intentionally not provided to avoid leaking
credentials in shell history.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", config.DefaultBaud, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

// setup loads the configuration, applies flag overrides and builds the logger
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, loaded)
	cfg = loaded

	logger, level, err = newLogger(cfg.Logging, verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	logger.Debug("configuration loaded",
		zap.String("path", configPath), zap.Stringer("config", cfg))
	return nil
}

// applyFlagOverrides copies explicitly set connection flags over c
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		c.Connection.Port = portName
	}
	if flags.Changed("baud") {
		c.Connection.Baud = baudRate
	}
	if flags.Changed("url") {
		c.Connection.URL = wsURL
	}
	if flags.Changed("username") {
		c.Connection.Username = wsUsername
	}
	if flags.Changed("no-ssl-verify") {
		c.Connection.NoSSLVerify = wsNoSSLVerify
	}
}

// Execute runs the root command
func Execute() error {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	return rootCmd.Execute()
}

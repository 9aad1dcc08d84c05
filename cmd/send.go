// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/andromeda/pkg/cat"
	"github.com/Thermoquad/andromeda/pkg/panel"
)

var indicatorCmd = &cobra.Command{
	Use:   "indicator <number> {on|off}",
	Short: "Switch a panel indicator",
	Long: `Send an INDICATOR command (ZZZI) to switch one of the front panel LEDs.

Indicators are numbered from 1, as on the host side of the protocol.`,
	Args: cobra.ExactArgs(2),
	RunE: runIndicator,
}

var divisorCmd = &cobra.Command{
	Use:   "divisor <vfo> <encoder>",
	Short: "Set the encoder divisors",
	Long: `Send an ENCODER_INCREMENT command (ZZZX) to set how many detents make one
reported click: first for the VFO encoder, then for all other encoders.
Each divisor is 1 to 9; the panel stores the values persistently.`,
	Args: cobra.ExactArgs(2),
	RunE: runDivisor,
}

func init() {
	rootCmd.AddCommand(indicatorCmd)
	rootCmd.AddCommand(divisorCmd)
}

// parseIndicator converts the command line arguments into an INDICATOR
// parameter
func parseIndicator(number, state string) (int, error) {
	n, err := strconv.Atoi(number)
	if err != nil || n < 1 || n > 99 {
		return 0, fmt.Errorf("invalid indicator number %q (1-99)", number)
	}
	var on bool
	switch state {
	case "on", "1":
		on = true
	case "off", "0":
	default:
		return 0, fmt.Errorf("invalid indicator state %q (on or off)", state)
	}
	return panel.IndicatorParam(n-1, on), nil
}

// parseDivisors converts the command line arguments into an
// ENCODER_INCREMENT parameter
func parseDivisors(vfo, normal string) (int, error) {
	v, err := strconv.Atoi(vfo)
	if err != nil || v < 1 || v > 9 {
		return 0, fmt.Errorf("invalid VFO divisor %q (1-9)", vfo)
	}
	n, err := strconv.Atoi(normal)
	if err != nil || n < 1 || n > 9 {
		return 0, fmt.Errorf("invalid encoder divisor %q (1-9)", normal)
	}
	return panel.Divisors{Normal: n, VFO: v}.Param(), nil
}

func runIndicator(cmd *cobra.Command, args []string) error {
	param, err := parseIndicator(args[0], args[1])
	if err != nil {
		return err
	}
	return send(panel.CmdIndicator, param)
}

func runDivisor(cmd *cobra.Command, args []string) error {
	param, err := parseDivisors(args[0], args[1])
	if err != nil {
		return err
	}
	return send(panel.CmdEncoderIncrement, param)
}

func send(command panel.CommandID, param int) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	data, err := cat.EncodeMessage(command, param)
	if err != nil {
		return err
	}
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("send %s: %w", data, err)
	}
	fmt.Printf("Sent %s to %s\n", data, connInfo)
	return nil
}

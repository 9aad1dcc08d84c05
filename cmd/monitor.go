// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Thermoquad/andromeda/pkg/cat"
)

var (
	monitorStatsInterval int
	monitorErrorsOnly    bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Display CAT traffic in human-readable format",
	Long: `Continuously decode and display CAT messages as they arrive.

Each message is shown with a timestamp, its command, the raw text and the
decoded meaning of its parameter (button, encoder, indicator, version...).
Noise between messages is skipped. Unknown mnemonics and malformed messages
are reported as errors, and a statistics summary is printed periodically
and on exit.

Supports both serial and WebSocket connections.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().IntVar(&monitorStatsInterval, "stats-interval", 0, "Statistics interval in seconds (0 disables)")
	monitorCmd.Flags().BoolVar(&monitorErrorsOnly, "errors-only", false, "Only show decode errors")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	// Open connection (serial or WebSocket)
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Andromeda - CAT Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats := cat.NewStatistics()
	events := make(chan decoded, 64)

	go func() {
		defer close(events)
		err := readLoop(ctx, conn, func(m *cat.Message, err error) {
			events <- decoded{msg: m, err: err}
		})
		if err != nil && ctx.Err() == nil {
			logger.Info("connection closed", zap.Error(err))
		}
	}()

	var statsC <-chan time.Time
	if monitorStatsInterval > 0 {
		ticker := time.NewTicker(time.Duration(monitorStatsInterval) * time.Second)
		defer ticker.Stop()
		statsC = ticker.C
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				fmt.Print("\n" + stats.String())
				return nil
			}
			stats.Update(ev.msg, ev.err)
			printDecoded(ev)

		case <-statsC:
			fmt.Print("\n" + stats.String() + "\n")

		case <-ctx.Done():
			conn.Close()
			fmt.Print("\n" + stats.String())
			return nil
		}
	}
}

// decoded is one result from the CAT decoder
type decoded struct {
	msg *cat.Message
	err error
}

func printDecoded(ev decoded) {
	if ev.err != nil {
		timestamp := time.Now().Format("15:04:05.000")
		fmt.Printf("[%s] \033[1;31mERROR:\033[0m %v\n", timestamp, ev.err)
		return
	}
	if !monitorErrorsOnly {
		fmt.Print(cat.FormatMessage(ev.msg))
	}
}

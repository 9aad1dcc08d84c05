// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/andromeda/pkg/cat"
	"github.com/Thermoquad/andromeda/pkg/panel"
)

var queryTimeout int

var queryCmd = &cobra.Command{
	Use:       "query {version|increment}",
	Short:     "Query the panel and wait for the answer",
	ValidArgs: []string{"version", "increment"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Long: `Send a CAT query to the front panel and wait for its answer.

  version    - software version (ZZZS): product, hardware and software version
  increment  - encoder divisors (ZZZX): VFO and encoder divisors

Bytes that do not form the expected answer are ignored.

Exit codes:
  0 - Answer received before timeout
  1 - Timeout reached without an answer
  2 - Connection error

Useful for testing connectivity to the panel or a WebSocket bridge.`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().IntVar(&queryTimeout, "timeout", 5, "Timeout in seconds to wait for the answer")
}

func queryCommand(name string) panel.CommandID {
	if name == "increment" {
		return panel.CmdEncoderIncrement
	}
	return panel.CmdSoftwareVersion
}

func runQuery(cmd *cobra.Command, args []string) error {
	want := queryCommand(args[0])

	// Open connection (serial or WebSocket)
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Andromeda - Query\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n\n", queryTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	answer := make(chan *cat.Message, 1)
	errChan := make(chan error, 1)

	// Reader goroutine
	go func() {
		err := readLoop(ctx, conn, func(m *cat.Message, err error) {
			if m != nil && !m.IsQuery && m.Command == want {
				select {
				case answer <- m:
				default:
				}
			}
		})
		errChan <- err
	}()

	if err := cat.NewEmitter(conn, logger).Query(want); err != nil {
		fmt.Fprintf(os.Stderr, "Write error: %v\n", err)
		os.Exit(2)
	}

	// Wait for answer or timeout
	select {
	case m := <-answer:
		fmt.Printf("SUCCESS: %s\n", m.Raw)
		fmt.Printf("  %s\n", cat.Describe(m))
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(queryTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No answer within %d seconds\n", queryTimeout)
		os.Exit(1)
	}

	return nil
}

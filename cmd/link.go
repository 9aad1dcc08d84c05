// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/andromeda/pkg/cat"
)

var linkDuration time.Duration

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Check that a CAT link stays up",
	Long: `Hold the connection open and print every chunk of bytes received, then
report how much arrived and how many CAT messages it held.

Exit codes:
  0 - Link stayed up for the whole duration
  1 - Link dropped
  2 - Connection could not be opened`,
	RunE: runLink,
}

func init() {
	linkCmd.Flags().DurationVar(&linkDuration, "duration", 30*time.Second, "How long to listen")
	rootCmd.AddCommand(linkCmd)
}

type linkResult struct {
	bytes    int
	chunks   int
	messages int
	errors   int
}

func (r linkResult) print(elapsed time.Duration, verdict string) {
	fmt.Printf("\n--- Link Results ---\n")
	fmt.Printf("Duration: %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("Chunks received: %d\n", r.chunks)
	fmt.Printf("Bytes received: %d\n", r.bytes)
	fmt.Printf("CAT messages: %d (%d errors)\n", r.messages, r.errors)
	fmt.Printf("Result: %s\n", verdict)
}

func runLink(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Andromeda CAT Link Check\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Duration: %v\n\n", linkDuration)

	readChan := make(chan []byte, 100)
	errChan := make(chan error, 1)

	go func() {
		buf := make([]byte, 256)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- err
				return
			}
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				readChan <- data
			}
		}
	}()

	start := time.Now()
	deadline := time.After(linkDuration)
	heartbeat := time.NewTicker(time.Second)
	defer heartbeat.Stop()

	decoder := cat.NewDecoder()
	var res linkResult

	fmt.Printf("Listening...\n\n")

	for {
		select {
		case data := <-readChan:
			res.bytes += len(data)
			res.chunks++
			fmt.Printf("[%s] %d bytes: %q\n", time.Now().Format("15:04:05.000"), len(data), data)
			for _, b := range data {
				msg, err := decoder.DecodeByte(b)
				switch {
				case err != nil:
					res.errors++
				case msg != nil:
					res.messages++
				}
			}

		case err := <-errChan:
			fmt.Printf("\n[%s] Connection error: %v\n", time.Now().Format("15:04:05.000"), err)
			res.print(time.Since(start), "FAILED (link dropped)")
			os.Exit(1)

		case <-heartbeat.C:
			remaining := linkDuration - time.Since(start)
			fmt.Printf("[%s] Still connected (%.0fs remaining)\n",
				time.Now().Format("15:04:05.000"), remaining.Seconds())

		case <-deadline:
			res.print(time.Since(start), "PASSED (link stable)")
			return nil
		}
	}
}

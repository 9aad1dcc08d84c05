// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/andromeda/pkg/panel"
)

// Statistics tracks message counts and error rates on a CAT link
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalMessages   uint64
	ValidMessages   uint64
	Queries         uint64
	UnknownCommands uint64
	Malformed       uint64
	Overflows       uint64
	OtherErrors     uint64
	PerCommand      map[panel.CommandID]uint64

	// Rates (calculated)
	MessageRate float64 // messages/sec
	ErrorRate   float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
		PerCommand:     make(map[panel.CommandID]uint64),
	}
}

// Update records a decoded message or a decode error
func (s *Statistics) Update(msg *Message, decodeErr error) {
	if msg == nil && decodeErr == nil {
		return
	}
	s.TotalMessages++
	s.LastUpdateTime = time.Now()

	if decodeErr != nil {
		switch {
		case errors.Is(decodeErr, ErrUnknownCommand):
			s.UnknownCommands++
		case errors.Is(decodeErr, ErrMalformed):
			s.Malformed++
		case errors.Is(decodeErr, ErrOverflow):
			s.Overflows++
		default:
			s.OtherErrors++
		}
		return
	}

	s.ValidMessages++
	if msg.IsQuery {
		s.Queries++
	}
	s.PerCommand[msg.Command]++
}

// Errors returns the total error count
func (s *Statistics) Errors() uint64 {
	return s.UnknownCommands + s.Malformed + s.Overflows + s.OtherErrors
}

// CalculateRates calculates message and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.MessageRate = float64(s.TotalMessages) / elapsed
		s.ErrorRate = float64(s.Errors()) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	percent := func(n uint64) float64 {
		if s.TotalMessages == 0 {
			return 0
		}
		return float64(n) * 100.0 / float64(s.TotalMessages)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== Statistics (%.0f seconds) ===\n", time.Since(s.StartTime).Seconds())
	fmt.Fprintf(&b, "Total Messages:  %8d\n", s.TotalMessages)
	fmt.Fprintf(&b, "Valid Messages:  %8d (%.1f%%)\n", s.ValidMessages, percent(s.ValidMessages))

	for _, cmd := range panel.Commands() {
		if n := s.PerCommand[cmd]; n > 0 {
			fmt.Fprintf(&b, "  %s %-19s %5d\n", Mnemonic(cmd), cmd.String()+":", n)
		}
	}
	if s.Queries > 0 {
		fmt.Fprintf(&b, "  Queries:                 %5d\n", s.Queries)
	}
	if s.UnknownCommands > 0 {
		fmt.Fprintf(&b, "Unknown Cmds:    %8d (%.1f%%)\n", s.UnknownCommands, percent(s.UnknownCommands))
	}
	if s.Malformed > 0 {
		fmt.Fprintf(&b, "Malformed:       %8d (%.1f%%)\n", s.Malformed, percent(s.Malformed))
	}
	if s.Overflows > 0 {
		fmt.Fprintf(&b, "Overflows:       %8d (%.1f%%)\n", s.Overflows, percent(s.Overflows))
	}
	if s.OtherErrors > 0 {
		fmt.Fprintf(&b, "Other Errors:    %8d (%.1f%%)\n", s.OtherErrors, percent(s.OtherErrors))
	}

	fmt.Fprintf(&b, "Message Rate:    %8.1f msgs/sec\n", s.MessageRate)
	fmt.Fprintf(&b, "Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	b.WriteString("================================\n")
	return b.String()
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cat

import (
	"time"

	"github.com/Thermoquad/andromeda/pkg/panel"
)

// Message is a decoded CAT message
type Message struct {
	Command   panel.CommandID
	Param     int
	IsQuery   bool
	Raw       string
	Timestamp time.Time
}

// Handler receives dispatched inbound commands. *panel.Controller
// implements it.
type Handler interface {
	OnNumericCommand(cmd panel.CommandID, param int)
	OnQueryCommand(cmd panel.CommandID)
}

// Dispatch forwards the message to the handler method matching its form
func (m *Message) Dispatch(h Handler) {
	if m.IsQuery {
		h.OnQueryCommand(m.Command)
		return
	}
	h.OnNumericCommand(m.Command, m.Param)
}

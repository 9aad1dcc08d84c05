// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cat

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/Thermoquad/andromeda/pkg/panel"
	"go.uber.org/zap"
)

// EncodeMessage formats a command with parameter. The parameter is clipped
// to the command's range before formatting.
func EncodeMessage(cmd panel.CommandID, param int) ([]byte, error) {
	f, ok := formats[cmd]
	if !ok {
		return nil, fmt.Errorf("%w: command %d", ErrUnknownCommand, int(cmd))
	}
	param = panel.Clip(param, cmd)

	buf := make([]byte, 0, MnemonicSize+f.Digits+1)
	buf = append(buf, f.Mnemonic...)
	digits := strconv.Itoa(param)
	for i := len(digits); i < f.Digits; i++ {
		buf = append(buf, '0')
	}
	buf = append(buf, digits...)
	buf = append(buf, Terminator)
	return buf, nil
}

// EncodeQuery formats a command without parameter
func EncodeQuery(cmd panel.CommandID) ([]byte, error) {
	f, ok := formats[cmd]
	if !ok {
		return nil, fmt.Errorf("%w: command %d", ErrUnknownCommand, int(cmd))
	}
	return append([]byte(f.Mnemonic), Terminator), nil
}

// MustEncodeMessage is EncodeMessage for commands known to exist.
// Panics on an unknown command.
func MustEncodeMessage(cmd panel.CommandID, param int) []byte {
	data, err := EncodeMessage(cmd, param)
	if err != nil {
		panic(fmt.Sprintf("cat: encode error: %v", err))
	}
	return data
}

// Emitter writes CAT messages to a connection. It implements
// panel.MessageEmitter and is safe for concurrent use.
type Emitter struct {
	mu  sync.Mutex
	w   io.Writer
	log *zap.Logger

	sent uint64
}

// NewEmitter creates an emitter writing to w. log may be nil.
func NewEmitter(w io.Writer, log *zap.Logger) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{w: w, log: log}
}

// EmitMessage sends a command with parameter. Write failures are logged;
// the panel core has no use for them.
func (e *Emitter) EmitMessage(cmd panel.CommandID, param int) {
	if err := e.Send(cmd, param); err != nil {
		e.log.Warn("CAT send failed", zap.Stringer("cmd", cmd), zap.Int("param", param), zap.Error(err))
	}
}

// Send sends a command with parameter
func (e *Emitter) Send(cmd panel.CommandID, param int) error {
	data, err := EncodeMessage(cmd, param)
	if err != nil {
		return err
	}
	return e.write(data)
}

// Query sends a command without parameter
func (e *Emitter) Query(cmd panel.CommandID) error {
	data, err := EncodeQuery(cmd)
	if err != nil {
		return err
	}
	return e.write(data)
}

// Sent returns the number of messages written successfully
func (e *Emitter) Sent() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sent
}

func (e *Emitter) write(data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.w.Write(data); err != nil {
		return fmt.Errorf("write %q: %w", data, err)
	}
	e.sent++
	e.log.Debug("CAT sent", zap.ByteString("msg", data))
	return nil
}

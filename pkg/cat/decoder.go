// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cat

import (
	"errors"
	"fmt"
	"time"
)

// Decoder errors
var (
	ErrUnknownCommand = errors.New("unknown CAT command")
	ErrMalformed      = errors.New("malformed CAT message")
	ErrOverflow       = errors.New("CAT message too long")
)

// Decoder states (internal)
const (
	stateIdle = iota
	stateMessage
)

// Decoder implements the CAT message decoder state machine. Bytes outside a
// message are skipped until the start of a mnemonic ('Z').
type Decoder struct {
	state  int
	buffer []byte
}

// NewDecoder creates a new CAT decoder
func NewDecoder() *Decoder {
	return &Decoder{
		state:  stateIdle,
		buffer: make([]byte, 0, MaxMessageSize),
	}
}

// Reset discards any partial message
func (d *Decoder) Reset() {
	d.state = stateIdle
	d.buffer = d.buffer[:0]
}

// DecodeByte processes a single byte through the decoder state machine.
// It returns a completed message, or nil if the message is incomplete.
// It returns an error if a complete message cannot be decoded.
func (d *Decoder) DecodeByte(b byte) (*Message, error) {
	b = upper(b)

	switch d.state {
	case stateIdle:
		if b == 'Z' {
			d.buffer = append(d.buffer[:0], b)
			d.state = stateMessage
		}
		return nil, nil

	case stateMessage:
		if b == Terminator {
			raw := string(d.buffer)
			d.Reset()
			return parseMessage(raw)
		}
		if len(d.buffer) >= MaxMessageSize {
			d.Reset()
			return nil, fmt.Errorf("%w: more than %d bytes", ErrOverflow, MaxMessageSize)
		}
		d.buffer = append(d.buffer, b)
		return nil, nil

	default:
		d.Reset()
		return nil, fmt.Errorf("invalid state: %d", d.state)
	}
}

// Decode decodes every complete message in data. Decoding continues after
// errors; all errors are returned joined.
func (d *Decoder) Decode(data []byte) ([]*Message, error) {
	var msgs []*Message
	var errs []error
	for _, b := range data {
		m, err := d.DecodeByte(b)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if m != nil {
			msgs = append(msgs, m)
		}
	}
	return msgs, errors.Join(errs...)
}

// DecodeMessage decodes a single complete message such as "ZZZP121;"
func DecodeMessage(data []byte) (*Message, error) {
	d := NewDecoder()
	for _, b := range data {
		m, err := d.DecodeByte(b)
		if err != nil || m != nil {
			return m, err
		}
	}
	return nil, fmt.Errorf("%w: missing terminator", ErrMalformed)
}

func parseMessage(raw string) (*Message, error) {
	if len(raw) < MnemonicSize {
		return nil, fmt.Errorf("%w: %q too short", ErrMalformed, raw)
	}

	mnemonic := raw[:MnemonicSize]
	cmd, ok := Lookup(mnemonic)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, mnemonic)
	}

	msg := &Message{
		Command:   cmd,
		Raw:       raw + string(Terminator),
		Timestamp: time.Now(),
	}

	digits := raw[MnemonicSize:]
	if len(digits) == 0 {
		msg.IsQuery = true
		return msg, nil
	}
	if len(digits) > formats[cmd].Digits {
		return nil, fmt.Errorf("%w: %q has %d digits, want at most %d",
			ErrMalformed, raw, len(digits), formats[cmd].Digits)
	}

	param := 0
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("%w: %q has non-digit parameter", ErrMalformed, raw)
		}
		param = param*10 + int(c-'0')
	}
	msg.Param = param
	return msg, nil
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

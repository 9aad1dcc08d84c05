// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Thermoquad/andromeda/internal/settings"
	"github.com/Thermoquad/andromeda/pkg/cat"
	"github.com/Thermoquad/andromeda/pkg/panel"
	"github.com/Thermoquad/andromeda/pkg/vpanel"
)

var emulatePersist bool

var emulateCmd = &cobra.Command{
	Use:   "emulate",
	Short: "Run a virtual front panel in the terminal",
	Long: `Run the panel controller against a virtual button matrix and drive it from
the keyboard.

Every CAT message the panel emits is shown in the log. When --port or --url
is given the messages are also sent to the host, and commands from the host
are applied to the virtual panel.

Keys:
  up/down   select a button        enter  short press
  l         long press             space  hold/release
  [ ]       select an encoder      - +    turn the selected encoder
  , .       turn the VFO           b      hold/release the brightness button
  :         type an inbound command (e.g. ZZZI021;)
  q         quit`,
	RunE: runEmulate,
}

func init() {
	emulateCmd.Flags().BoolVar(&emulatePersist, "persist", false, "Keep divisors and brightness in the settings file")
	rootCmd.AddCommand(emulateCmd)
}

// catLine is one entry of the emulator message log
type catLine struct {
	at       time.Time
	outbound bool
	raw      string
	text     string
	isError  bool
}

// catLog collects the messages the virtual panel sends and receives.
// The TUI polls it, so the controller never waits on the UI.
type catLog struct {
	mu      sync.Mutex
	lines   []catLine
	max     int
	forward *cat.Emitter
}

func newCatLog(size int, forward *cat.Emitter) *catLog {
	return &catLog{max: size, forward: forward}
}

// EmitMessage implements panel.MessageEmitter
func (l *catLog) EmitMessage(cmd panel.CommandID, param int) {
	data, err := cat.EncodeMessage(cmd, param)
	if err != nil {
		l.add(catLine{outbound: true, text: err.Error(), isError: true})
		return
	}
	l.addMessage(true, data)
	if l.forward != nil {
		l.forward.EmitMessage(cmd, param)
	}
}

func (l *catLog) addMessage(outbound bool, data []byte) {
	line := catLine{outbound: outbound, raw: string(data)}
	if m, err := cat.DecodeMessage(data); err != nil {
		line.text = err.Error()
		line.isError = true
	} else {
		line.text = cat.Describe(m)
	}
	l.add(line)
}

func (l *catLog) addError(err error) {
	l.add(catLine{text: err.Error(), isError: true})
}

func (l *catLog) add(line catLine) {
	if line.at.IsZero() {
		line.at = time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
	if len(l.lines) > l.max {
		l.lines = l.lines[len(l.lines)-l.max:]
	}
}

// Tail returns up to n of the newest lines
func (l *catLog) Tail(n int) []catLine {
	l.mu.Lock()
	defer l.mu.Unlock()
	start := max(len(l.lines)-n, 0)
	out := make([]catLine, len(l.lines)-start)
	copy(out, l.lines[start:])
	return out
}

func runEmulate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The TUI owns the terminal
	log := zap.NewNop()

	var forward *cat.Emitter
	conn, connInfo, err := OpenConnection()
	switch {
	case errors.Is(err, ErrNoConnection):
		connInfo = "standalone"
	case err != nil:
		return err
	default:
		defer conn.Close()
		forward = cat.NewEmitter(conn, log)
	}
	msgLog := newCatLog(200, forward)

	brightness := uint8(cfg.Panel.Brightness)
	divisors := panel.DefaultDivisors()
	vcfg := vpanel.Config{
		Emitter:            msgLog,
		Scan:               cfg.ScanConfig(),
		Version:            cfg.Version(),
		BrightnessScanCode: cfg.Panel.BrightnessScanCode,
		Logger:             log,
	}

	var store *settings.Store
	if emulatePersist {
		store, err = settings.Open(cfg.Settings.Path, settings.DefaultImage(brightness), cfg.Settings.FlushDelay, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("settings not saved", zap.Error(err))
			}
		}()
		im := store.Image()
		brightness, divisors = im.Brightness, im.Divisors()
		vcfg.DivisorStore = store
		vcfg.BrightnessStore = store
	}
	vcfg.Brightness = brightness
	vcfg.Divisors = divisors

	vp, err := vpanel.New(vcfg)
	if err != nil {
		return err
	}

	go func() {
		_ = vp.Run(ctx, cfg.Panel.TickInterval)
	}()
	if store != nil {
		go flushSettings(ctx, store, msgLog)
	}
	if conn != nil {
		go func() {
			err := readLoop(ctx, conn, func(m *cat.Message, err error) {
				if err != nil {
					msgLog.addError(err)
					return
				}
				msgLog.addMessage(false, []byte(m.Raw))
				vp.HandleMessage(m)
			})
			if err != nil && ctx.Err() == nil {
				msgLog.addError(fmt.Errorf("connection lost: %w", err))
			}
		}()
	}

	m := initialEmulatorModel(vp, msgLog, connInfo, cfg.ScanConfig())
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

func flushSettings(ctx context.Context, store *settings.Store, msgLog *catLog) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Tick(); err != nil {
				msgLog.addError(err)
			}
		}
	}
}

// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/andromeda/pkg/cat"
	"github.com/Thermoquad/andromeda/pkg/panel"
	"github.com/Thermoquad/andromeda/pkg/vpanel"
)

const (
	emulatorRefresh = 50 * time.Millisecond
	emulatorLogRows = 12
)

// buttonItem is one matrix position with a report code
type buttonItem struct {
	code   int
	column int
	row    int
}

func (b buttonItem) Title() string { return fmt.Sprintf("Button %d", b.code) }

func (b buttonItem) Description() string {
	d := fmt.Sprintf("column %d row %d", b.column, b.row)
	switch b.code {
	case panel.ButtonDiversity:
		d += " diversity"
	case panel.ButtonShift:
		d += " shift"
	case panel.ButtonRitXit:
		d += " RIT/XIT"
	}
	return d
}

func (b buttonItem) FilterValue() string { return strconv.Itoa(b.code) }

// buttonItems lists every mapped matrix position by report code
func buttonItems(t *panel.Translator) []list.Item {
	var buttons []buttonItem
	for col := 0; col < t.Columns(); col++ {
		for row := 0; row < t.Rows(); row++ {
			if code := t.Translate(t.ScanCode(col, row)); code != 0 {
				buttons = append(buttons, buttonItem{code: code, column: col, row: row})
			}
		}
	}
	sort.Slice(buttons, func(i, j int) bool { return buttons[i].code < buttons[j].code })

	items := make([]list.Item, len(buttons))
	for i, b := range buttons {
		items[i] = b
	}
	return items
}

// emulatorModel is the Bubble Tea model for the virtual panel
type emulatorModel struct {
	vp       *vpanel.Panel
	log      *catLog
	connInfo string

	shortTicks int
	longTicks  int

	buttons list.Model
	input   textinput.Model
	typing  bool

	encoder        int
	held           map[int]bool
	brightnessHeld bool
	brightnessCode int
	state          vpanel.State
	status         string
	width          int
	height         int
	quitting       bool
}

type emulatorTickMsg time.Time

func initialEmulatorModel(vp *vpanel.Panel, log *catLog, connInfo string, scan panel.ScanConfig) emulatorModel {
	ti := textinput.New()
	ti.Placeholder = "ZZZI021;"
	ti.CharLimit = cat.MaxMessageSize
	ti.Width = 20

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	buttons := list.New(buttonItems(panel.DefaultTranslator()), delegate, 30, 20)
	buttons.Title = "Buttons"
	buttons.SetShowStatusBar(false)
	buttons.SetShowHelp(false)
	buttons.SetFilteringEnabled(false)

	// A short press must clear debounce on both edges and stay well under
	// the long-press threshold.
	short := min(scan.DebounceTicks*4, scan.LongPressTicks/2)

	return emulatorModel{
		vp:             vp,
		log:            log,
		connInfo:       connInfo,
		shortTicks:     max(short, 1),
		longTicks:      scan.LongPressTicks + scan.DebounceTicks*4,
		buttons:        buttons,
		input:          ti,
		encoder:        0,
		held:           make(map[int]bool),
		brightnessCode: cfg.Panel.BrightnessScanCode,
		state:          vp.Snapshot(),
		width:          80,
		height:         24,
	}
}

func (m emulatorModel) Init() tea.Cmd {
	return emulatorTickCmd()
}

func emulatorTickCmd() tea.Cmd {
	return tea.Tick(emulatorRefresh, func(t time.Time) tea.Msg {
		return emulatorTickMsg(t)
	})
}

func (m emulatorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.typing {
			return m.handleInputKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.buttons.SetSize(30, max(msg.Height-4, 6))

	case emulatorTickMsg:
		m.state = m.vp.Snapshot()
		return m, emulatorTickCmd()
	}
	return m, nil
}

func (m emulatorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "enter":
		m.press(m.shortTicks, "pressed")

	case "l":
		m.press(m.longTicks, "long-pressed")

	case " ":
		m.toggleHold()

	case "[":
		m.encoder = prevEncoder(m.encoder)
	case "]":
		m.encoder = nextEncoder(m.encoder)

	case "-":
		m.turn(-1)
	case "+", "=":
		m.turn(1)

	case ",":
		m.vp.TurnVFO(-1)
	case ".":
		m.vp.TurnVFO(1)

	case "b":
		if m.brightnessHeld {
			m.vp.ReleaseScanCode(m.brightnessCode)
			m.status = "brightness released"
		} else if err := m.vp.PressScanCode(m.brightnessCode, vpanel.HoldUntilReleased); err != nil {
			m.status = err.Error()
			return m, nil
		} else {
			m.status = "brightness held, turn an encoder"
		}
		m.brightnessHeld = !m.brightnessHeld

	case ":":
		m.typing = true
		m.input.SetValue("")
		return m, m.input.Focus()

	case "up", "down", "k", "j", "pgup", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.buttons, cmd = m.buttons.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m emulatorModel) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.typing = false
		m.input.Blur()
		return m, nil

	case "enter":
		m.typing = false
		m.input.Blur()
		m.inject(m.input.Value())
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// inject applies a typed command as if the host had sent it
func (m *emulatorModel) inject(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if !strings.HasSuffix(text, string(cat.Terminator)) {
		text += string(cat.Terminator)
	}
	msg, err := cat.DecodeMessage([]byte(text))
	if err != nil {
		m.log.addError(err)
		m.status = err.Error()
		return
	}
	m.log.addMessage(false, []byte(msg.Raw))
	m.vp.HandleMessage(msg)
	m.status = "injected " + msg.Raw
}

func (m *emulatorModel) selected() (buttonItem, bool) {
	b, ok := m.buttons.SelectedItem().(buttonItem)
	return b, ok
}

// nextEncoder and prevEncoder cycle through encoders 0..NumEncoders-1
func nextEncoder(encoder int) int {
	return (encoder + 1) % panel.NumEncoders
}

func prevEncoder(encoder int) int {
	return (encoder + panel.NumEncoders - 1) % panel.NumEncoders
}

func (m *emulatorModel) turn(detents int) {
	if err := m.vp.TurnEncoder(m.encoder, detents); err != nil {
		m.status = err.Error()
	}
}

func (m *emulatorModel) toggleHold() {
	b, ok := m.selected()
	if !ok {
		return
	}
	if m.held[b.code] {
		if err := m.vp.Release(b.code); err != nil {
			m.status = err.Error()
			return
		}
		delete(m.held, b.code)
		m.status = fmt.Sprintf("released button %d", b.code)
		return
	}
	if err := m.vp.Press(b.code, vpanel.HoldUntilReleased); err != nil {
		m.status = err.Error()
		return
	}
	m.held[b.code] = true
	m.status = fmt.Sprintf("holding button %d", b.code)
}

func (m *emulatorModel) press(ticks int, verb string) {
	b, ok := m.selected()
	if !ok {
		return
	}
	if err := m.vp.Press(b.code, ticks); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("%s button %d", verb, b.code)
}

func (m emulatorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	s.WriteString(titleStyle.Render("ANDROMEDA PANEL"))
	s.WriteString(" ")
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | q=quit :=inject", m.connInfo)))
	s.WriteString("\n\n")

	status := m.renderStatus(labelStyle, valueStyle, warningStyle)
	right := lipgloss.JoinVertical(lipgloss.Left,
		boxStyle.Render(status),
		boxStyle.Render(m.renderLog(labelStyle, valueStyle, errorStyle)))
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.buttons.View(), " ", right))
	s.WriteString("\n")

	if m.typing {
		s.WriteString(labelStyle.Render("Command: "))
		s.WriteString(m.input.View())
	} else if m.status != "" {
		s.WriteString(headerStyle.Render(m.status))
	}
	s.WriteString("\n")

	return s.String()
}

func (m emulatorModel) renderStatus(labelStyle, valueStyle, warningStyle lipgloss.Style) string {
	var s strings.Builder
	st := m.state

	row := func(label, value string) {
		s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", label)), valueStyle.Render(value)))
	}

	row("Diversity:", onOff(st.Modes.DiversityActive))
	row("Shift:", onOff(st.Modes.ShiftActive))
	row("RIT/XIT:", st.Modes.RitXit.String())
	row("Divisors:", fmt.Sprintf("encoder %d, VFO %d", st.Divisors.Normal, st.Divisors.VFO))
	row("Version:", fmt.Sprintf("%d (product %d, hw %d, sw %d)",
		st.Version.Param(), st.Version.ProductID, st.Version.HWVersion, st.Version.SWVersion))
	row("Scanner:", fmt.Sprintf("%s, column %d", st.Scan.State, st.Scan.Column))
	row("Brightness:", strconv.Itoa(int(st.Brightness)))
	row("Encoder:", strconv.Itoa(m.encoder))
	row("Ticks:", strconv.FormatUint(st.Ticks, 10))

	var leds strings.Builder
	for _, on := range st.LEDs {
		if on {
			leds.WriteString("●")
		} else {
			leds.WriteString("○")
		}
	}
	row("Indicators:", leds.String())

	held := "none"
	if len(st.Held) > 0 {
		codes := make([]string, len(st.Held))
		for i, c := range st.Held {
			codes[i] = strconv.Itoa(c)
		}
		held = strings.Join(codes, " ")
	}
	row("Held:", held)

	if m.brightnessHeld {
		s.WriteString(warningStyle.Render("brightness modifier held"))
		s.WriteString("\n")
	}
	return strings.TrimRight(s.String(), "\n")
}

func (m emulatorModel) renderLog(labelStyle, valueStyle, errorStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(labelStyle.Render("Messages"))

	lines := m.log.Tail(emulatorLogRows)
	if len(lines) == 0 {
		s.WriteString("\n(none yet)")
		return s.String()
	}
	for _, l := range lines {
		s.WriteString("\n")
		stamp := l.at.Format("15:04:05.000")
		switch {
		case l.isError:
			s.WriteString(errorStyle.Render(fmt.Sprintf("%s ! %s", stamp, l.text)))
		case l.outbound:
			s.WriteString(fmt.Sprintf("%s > %s %s", stamp, valueStyle.Render(fmt.Sprintf("%-12s", l.raw)), l.text))
		default:
			s.WriteString(fmt.Sprintf("%s < %s %s", stamp, labelStyle.Render(fmt.Sprintf("%-12s", l.raw)), l.text))
		}
	}
	return s.String()
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}

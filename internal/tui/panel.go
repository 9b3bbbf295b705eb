// Package tui renders the module front panel in the terminal: three CV
// meters, three gate lamps and the freeze banner, with keys standing in for
// the knobs, buttons and the freeze input.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/chaoscv/internal/config"
	"github.com/san-kum/chaoscv/internal/engine"
	"github.com/san-kum/chaoscv/internal/event"
	"github.com/san-kum/chaoscv/internal/physics"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

const (
	pollEvery  = 10 * time.Millisecond
	historyCap = 120
	knobStep   = 2.5
)

type state int

const (
	stateCalibrating state = iota
	statePanel
)

type model struct {
	ctrl  *engine.Controller
	queue *event.Queue
	b1    *event.Button
	b2    *event.Button
	level *event.Level

	calibSteps int
	calibIndex int

	// Virtual front-panel inputs.
	speed     float64
	threshold float64
	frozen    bool

	st      state
	history []float64
	width   int
	height  int
	err     error
}

func newModel(cfg *config.Config) model {
	queue := event.NewQueue()
	ctrl := engine.New(physics.All(cfg.Dt), queue, nil, nil, engine.Options{
		Period:    time.Duration(cfg.PeriodMs * float64(time.Millisecond)),
		Threshold: cfg.Threshold,
		Range:     cfg.Range,
		MaxOutput: cfg.MaxOutput,
		Detail:    cfg.Detail,
		Seed:      cfg.Seed,
	})
	return model{
		ctrl:       ctrl,
		queue:      queue,
		b1:         event.NewButton(queue, event.ShortPress1, event.LongPress1),
		b2:         event.NewButton(queue, event.ShortPress2, event.LongPress2),
		level:      event.NewLevel(queue),
		calibSteps: cfg.CalibSteps,
		speed:      50,
		threshold:  50,
		history:    make([]float64, 0, historyCap),
	}
}

// Speed and Threshold implement engine.Knobs from the virtual knob positions.
func (m model) Speed() float64     { return m.speed }
func (m model) Threshold() float64 { return m.threshold }

type calibDoneMsg int

type calibFailMsg struct{ err error }

func (m model) calibrate(i int) tea.Cmd {
	return func() tea.Msg {
		if err := m.ctrl.CalibrateOne(i, m.calibSteps); err != nil {
			return calibFailMsg{err}
		}
		return calibDoneMsg(i)
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(pollEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd {
	return m.calibrate(0)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case calibFailMsg:
		m.err = msg.err
		return m, tea.Quit
	case calibDoneMsg:
		m.calibIndex = int(msg) + 1
		if m.calibIndex < m.ctrl.Len() {
			return m, m.calibrate(m.calibIndex)
		}
		m.ctrl.Start()
		m.st = statePanel
		return m, tea.Batch(tea.ClearScreen, tick())
	case tickMsg:
		if m.st != statePanel {
			return m, nil
		}
		if m.ctrl.Poll(m, time.Time(msg)) {
			m.history = append(m.history, m.ctrl.Snapshot().Scaled[0])
			if len(m.history) > historyCap {
				m.history = m.history[1:]
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left", "[":
		m.speed = clamp(m.speed-knobStep, 0, 100)
	case "right", "]":
		m.speed = clamp(m.speed+knobStep, 0, 100)
	case "down", "-":
		m.threshold = clamp(m.threshold-knobStep, 0, 100)
	case "up", "=":
		m.threshold = clamp(m.threshold+knobStep, 0, 100)
	// A key press is an instantaneous press/release pair, so the button
	// classifier always reads it as short. Long presses get their own keys.
	case "r":
		now := time.Now()
		m.b1.Press(now)
		m.b1.Release(now)
	case "R":
		now := time.Now()
		m.b2.Press(now)
		m.b2.Release(now)
	case "m":
		m.queue.Push(event.LongPress1)
	case "d":
		m.queue.Push(event.LongPress2)
	case "f":
		m.frozen = !m.frozen
		m.level.Set(m.frozen)
	}
	return m, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m model) View() string {
	switch m.st {
	case stateCalibrating:
		return m.viewCalibrating()
	case statePanel:
		return m.viewPanel()
	}
	return ""
}

func (m model) viewCalibrating() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("          " + cyan.Render("c h a o s c v") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")
	b.WriteString("      " + white.Render("Initialising...") + "\n\n")

	for i := 0; i < m.ctrl.Len(); i++ {
		name := m.ctrl.ModelName(i)
		switch {
		case i < m.calibIndex:
			b.WriteString("      " + green.Render("✓ ") + dim.Render(name) + "\n")
		case i == m.calibIndex:
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(name) + "\n")
		default:
			b.WriteString("        " + dimmer.Render(name) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      estimating output ranges") + "\n")
	return b.String()
}

func (m model) viewPanel() string {
	snap := m.ctrl.Snapshot()
	var b strings.Builder

	freeze := ""
	if snap.Frozen {
		freeze = "  " + yellow.Render("FREEZE")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s%s\n\n",
		green.Render("●"), cyan.Render(snap.Model), freeze))

	if snap.Detail {
		for i := 0; i < 3; i++ {
			b.WriteString(fmt.Sprintf("   %s %s\n",
				dim.Render(fmt.Sprintf("%d:", i+1)),
				white.Render(fmt.Sprintf("%6.1f", snap.Scaled[i]))))
		}
		b.WriteString(fmt.Sprintf("\n   %s %s   %s %s   %s %s\n",
			dim.Render("S:"), white.Render(fmt.Sprintf("%dms", snap.Period/time.Millisecond)),
			dim.Render("T:"), white.Render(fmt.Sprintf("%d", snap.Threshold)),
			dim.Render("R:"), white.Render(fmt.Sprintf("%d", snap.Range))))
	} else {
		for i := 0; i < 3; i++ {
			b.WriteString(fmt.Sprintf("   %s %s\n",
				dim.Render(fmt.Sprintf("%d:", i+1)),
				meter(snap.Scaled[i], 30)))
		}
	}

	b.WriteString("\n   ")
	for i, g := range snap.Gates {
		label := fmt.Sprintf(" %d ", i+4)
		if g {
			b.WriteString(magenta.Render(label))
		} else {
			b.WriteString(dimmer.Render(label))
		}
	}
	b.WriteString("\n")

	if snap.Detail && len(m.history) > 1 {
		gw := 60
		if m.width > 28 && m.width-8 < gw {
			gw = m.width - 8
		}
		graph := asciigraph.Plot(m.history,
			asciigraph.Height(6),
			asciigraph.Width(gw),
		)
		b.WriteString("\n" + dim.Render(indent(graph, "   ")) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render(fmt.Sprintf("   speed %3.0f  threshold %3.0f", m.speed, m.threshold)) + "\n")
	b.WriteString(dimmer.Render("   ←→ speed  ↑↓ threshold  r/R range  m model  d detail  f freeze  q quit") + "\n")
	return b.String()
}

// meter draws one scaled axis as a bar. Values outside 0-100 happen once the
// trajectory leaves its calibrated bounds; the bar just pins.
func meter(scaled float64, width int) string {
	filled := int(clamp(scaled, 0, 100) / 100 * float64(width))
	return cyan.Render(strings.Repeat("█", filled)) +
		dimmer.Render(strings.Repeat("─", width-filled))
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}

// Run launches the front panel and blocks until it quits.
func Run(cfg *config.Config) error {
	p := tea.NewProgram(newModel(cfg), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(model); ok && m.err != nil {
		return m.err
	}
	return nil
}

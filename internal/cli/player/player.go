// Package player renders a typewriter engine live in the terminal.
//
// The engine runs on its own timers. Transitions reach the bubbletea
// program as TransitionMsg values through an engine observer, and key
// presses reach the engine through commands, so neither side ever blocks
// the other's goroutine.
package player

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/typewriter/internal/typewriter"
)

// Controller is the engine surface the player drives.
type Controller interface {
	Start() error
	Pause()
	Resume()
	PauseAtEndOfCurrentString()
	Snapshot() typewriter.Snapshot
}

// TransitionMsg carries one engine transition into the program.
type TransitionMsg typewriter.Transition

// startedMsg reports the result of starting the engine.
type startedMsg struct{ err error }

// blinkMsg toggles the cursor.
type blinkMsg struct{}

// BlinkInterval is the cursor blink period.
const BlinkInterval = 530 * time.Millisecond

var (
	textStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

// Model is the bubbletea model for the player.
type Model struct {
	ctrl    Controller
	title   string
	snap    typewriter.Snapshot
	warning string
	cursor  bool
	err     error
	width   int
}

// New creates a player model over ctrl.
func New(ctrl Controller, title string) Model {
	return Model{
		ctrl:   ctrl,
		title:  title,
		snap:   ctrl.Snapshot(),
		cursor: true,
	}
}

// Init starts the engine and the cursor blink.
func (m Model) Init() tea.Cmd {
	ctrl := m.ctrl
	return tea.Batch(
		func() tea.Msg { return startedMsg{err: ctrl.Start()} },
		blink(),
	)
}

func blink() tea.Cmd {
	return tea.Tick(BlinkInterval, func(time.Time) tea.Msg {
		return blinkMsg{}
	})
}

// Update handles keys, engine transitions and window changes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case TransitionMsg:
		m.snap = msg.Snapshot
		if msg.Warning != nil {
			m.warning = msg.Warning.Error()
		}
		return m, nil

	case startedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		return m, nil

	case blinkMsg:
		m.cursor = !m.cursor
		return m, blink()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	}

	return m, nil
}

// handleKey maps keys to engine controls. Controls run as commands so a
// control that ends up delivering transitions never blocks Update on Send.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.ctrl
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "p":
		return m, func() tea.Msg { ctrl.Pause(); return nil }
	case "r":
		return m, func() tea.Msg { ctrl.Resume(); return nil }
	case "e":
		return m, func() tea.Msg { ctrl.PauseAtEndOfCurrentString(); return nil }
	}
	return m, nil
}

// Err returns the error that stopped the player, if any.
func (m Model) Err() error {
	return m.err
}

// View renders the current text with a status line.
func (m Model) View() string {
	var b strings.Builder

	if m.title != "" {
		b.WriteString(dimStyle.Render(m.title))
		b.WriteString("\n")
	}

	cursor := " "
	if m.cursor && !m.snap.IsPaused {
		cursor = "|"
	}
	line := textStyle.Render(m.snap.Text) + cursorStyle.Render(cursor)
	frame := frameStyle
	if m.width > 4 {
		frame = frame.Width(m.width - 4)
	}
	b.WriteString(frame.Render(line))
	b.WriteString("\n")

	b.WriteString(dimStyle.Render(m.status()))
	b.WriteString("\n")
	if m.warning != "" {
		b.WriteString(warnStyle.Render(m.warning))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("p pause  r resume  e pause at end  q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) status() string {
	state := m.snap.PhaseName
	switch {
	case m.snap.IsPaused:
		state += " (paused)"
	case m.snap.IsPausingAtEnd:
		state += " (pausing at end)"
	}
	status := fmt.Sprintf("%s  string %d/%d  pass %d",
		state, m.snap.StringIndex+1, m.snap.StringCount, m.snap.Iteration)
	if m.snap.HasPendingReplacement {
		status += "  replacement pending"
	}
	return status
}

// Run plays eng until the user quits, then disposes it.
func Run(eng *typewriter.Engine, title string, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(New(eng, title), opts...)

	unsubscribe := eng.Subscribe(func(tr typewriter.Transition) {
		p.Send(TransitionMsg(tr))
	})

	final, err := p.Run()
	eng.Dispose()
	unsubscribe()
	if err != nil {
		return fmt.Errorf("player: %w", err)
	}
	if m, ok := final.(Model); ok && m.Err() != nil {
		return fmt.Errorf("player: %w", m.Err())
	}
	return nil
}

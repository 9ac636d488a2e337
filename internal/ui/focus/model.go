// Package focus is the full-screen focus timer.
package focus

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"learnsphere/internal/output"
	"learnsphere/internal/timer"
)

// KeyMap holds the timer key bindings.
type KeyMap struct {
	Toggle key.Binding
	Start  key.Binding
	Reset  key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(key.WithKeys(" ", "space", "p"), key.WithHelp("space", "pause/resume")),
		Start:  key.NewBinding(key.WithKeys("s", "enter"), key.WithHelp("s", "start")),
		Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// TickMsg carries the timer state after a tick.
type TickMsg timer.Snapshot

// CompleteMsg is sent once when the countdown reaches zero.
type CompleteMsg timer.Snapshot

// Model is the bubbletea model of the focus timer.
type Model struct {
	timer    *timer.Timer
	minutes  int
	keys     KeyMap
	snap     timer.Snapshot
	finished int

	clock lipgloss.Style
	state lipgloss.Style
	help  lipgloss.Style
}

// New creates a model over t. minutes is used by the start key.
func New(t *timer.Timer, minutes int, theme string) Model {
	pal, ok := output.Palettes[theme]
	if !ok {
		pal = output.Palettes["dark"]
	}
	return Model{
		timer:   t,
		minutes: minutes,
		keys:    DefaultKeyMap(),
		snap:    t.Snapshot(),
		clock:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(pal.Accent)).Padding(1, 4),
		state:   lipgloss.NewStyle().Foreground(lipgloss.Color(pal.Muted)),
		help:    lipgloss.NewStyle().Foreground(lipgloss.Color(pal.Muted)),
	}
}

// Snapshot returns the last state the model saw.
func (m Model) Snapshot() timer.Snapshot { return m.snap }

// Finished returns how many sessions completed.
func (m Model) Finished() int { return m.finished }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.timer.Close()
			m.snap = m.timer.Snapshot()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			m.snap = m.timer.TogglePause()
		case key.Matches(msg, m.keys.Start):
			if m.snap.State != timer.StateRunning {
				m.snap = m.timer.Start(m.minutes)
			}
		case key.Matches(msg, m.keys.Reset):
			m.snap = m.timer.Reset()
		}
	case TickMsg:
		m.snap = timer.Snapshot(msg)
	case CompleteMsg:
		m.snap = timer.Snapshot(msg)
		m.finished++
		return m, tea.Println("focus session complete")
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.clock.Render(timer.Format(m.snap.RemainingSeconds)))
	sb.WriteString("\n")
	label := string(m.snap.State)
	if m.snap.State == timer.StateComplete {
		label = "complete - time for a break"
	}
	sb.WriteString(m.state.Render(label))
	sb.WriteString("\n\n")

	var hints []string
	for _, b := range []key.Binding{m.keys.Start, m.keys.Toggle, m.keys.Reset, m.keys.Quit} {
		h := b.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	sb.WriteString(m.help.Render(strings.Join(hints, " | ")))
	sb.WriteString("\n")
	return sb.String()
}

// Run starts a countdown of minutes and shows it until the user quits.
// It returns the final state.
func Run(ctx context.Context, t *timer.Timer, minutes int, theme string, in io.Reader, out io.Writer) (timer.Snapshot, error) {
	t.Start(minutes)
	defer t.Close()

	p := tea.NewProgram(New(t, minutes, theme), tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	t.OnTick(func(s timer.Snapshot) { p.Send(TickMsg(s)) })
	t.OnComplete(func(s timer.Snapshot) { p.Send(CompleteMsg(s)) })

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		return fm.Snapshot(), err
	}
	return t.Snapshot(), err
}

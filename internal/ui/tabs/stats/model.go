// Package stats provides the stats tab: streaks, skill progress, cuisine mix
// and the weekly activity chart.
package stats

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/mise/internal/app"
	"github.com/j-veylop/mise/internal/ui/components"
)

type keyMap struct {
	ToggleRange key.Binding
	Up          key.Binding
	Down        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the stats tab state.
type Model struct {
	state    *app.State
	commands *app.Commands
	keys     keyMap
	viewport viewport.Model
	bar      components.ProgressBar
	now      func() time.Time
	width    int
	height   int
}

// New creates a new stats model.
func New(state *app.State, commands *app.Commands) *Model {
	return &Model{
		state:    state,
		commands: commands,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		bar:      components.NewProgressBar(),
		now:      time.Now,
	}
}

// Init is a no-op; the root model loads stats at startup.
func (m *Model) Init() tea.Cmd {
	return nil
}

// InputFocused always returns false; the stats tab has no text input.
func (m *Model) InputFocused() bool {
	return false
}

// Update handles messages for the stats tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		return m, m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.ToggleRange) {
		rng := m.state.CycleTimeRange()
		return tea.Batch(
			m.commands.LoadStats(),
			m.commands.NotifyInfo("Showing "+rng.String()),
		)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// SetSize sets the available size for the stats tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.ToggleRange}
}

func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange},
		{m.keys.Up, m.keys.Down},
	}
}

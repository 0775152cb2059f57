// Package info provides the info tab: configuration, model rotation state and
// the AI attempt log.
package info

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/mise/internal/app"
	"github.com/j-veylop/mise/internal/config"
	"github.com/j-veylop/mise/internal/models"
	"github.com/j-veylop/mise/internal/ui/styles"
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous call"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next call"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "f", " "),
			key.WithHelp("pgdn", "scroll down"),
		),
	}
}

// Model represents the info tab state.
type Model struct {
	state    *app.State
	config   *config.Config
	table    table.Model
	keys     keyMap
	viewport viewport.Model
	now      func() time.Time
	width    int
	height   int
}

func callColumns(width int) []table.Column {
	labelWidth := min(max(width-62, 12), 30)
	return []table.Column{
		{Title: "When", Width: 14},
		{Title: "Call", Width: labelWidth},
		{Title: "Model", Width: 22},
		{Title: "Key", Width: 4},
		{Title: "Outcome", Width: 9},
		{Title: "Took", Width: 7},
	}
}

// New creates a new info model.
func New(state *app.State, cfg *config.Config) *Model {
	t := table.New(
		table.WithColumns(callColumns(80)),
		table.WithFocused(true),
		table.WithHeight(8),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgLight).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state:    state,
		config:   cfg,
		table:    t,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		now:      time.Now,
	}
}

// Init initializes the info tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// InputFocused always returns false; the info tab has no text input.
func (m *Model) InputFocused() bool {
	return false
}

// Update handles messages for the info tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.DiagnosticsLoadedMsg, app.ServiceEventMsg:
		m.syncRows()

	case tea.KeyMsg:
		var cmd tea.Cmd
		if key.Matches(msg, m.keys.Up, m.keys.Down) {
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// syncRows copies the attempt log from shared state into the table.
func (m *Model) syncRows() {
	calls := m.state.Diagnostics().RecentCalls
	now := m.now()
	rows := make([]table.Row, 0, len(calls))
	for _, c := range calls {
		rows = append(rows, table.Row{
			humanize.RelTime(c.Timestamp, now, "ago", "from now"),
			c.Label,
			c.Model,
			fmt.Sprintf("#%d", c.KeyIndex+1),
			c.Outcome,
			formatDuration(c.DurationMs),
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// selectedCall returns the highlighted attempt, if any.
func (m *Model) selectedCall() (models.AICall, bool) {
	calls := m.state.Diagnostics().RecentCalls
	i := m.table.Cursor()
	if i < 0 || i >= len(calls) {
		return models.AICall{}, false
	}
	return calls[i], true
}

func formatDuration(ms int) string {
	d := time.Duration(ms) * time.Millisecond
	if d < time.Second {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// SetSize sets the available size for the info tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.table.SetColumns(callColumns(width))
}

func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Up, m.keys.Down}
}

func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down},
		{m.keys.PageUp, m.keys.PageDown},
	}
}

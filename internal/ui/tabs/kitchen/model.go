// Package kitchen provides the kitchen tab: generate recipes from
// ingredients, preview a described dish and log what was cooked.
package kitchen

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/mise/internal/app"
	"github.com/j-veylop/mise/internal/models"
	"github.com/j-veylop/mise/internal/ui/components"
)

// inputMode selects what the prompt submits.
type inputMode int

const (
	modeIngredients inputMode = iota
	modeDish
)

func (m inputMode) String() string {
	if m == modeDish {
		return "Dish"
	}
	return "Ingredients"
}

func (m inputMode) placeholder() string {
	if m == modeDish {
		return "Describe a dish, e.g. crispy pork belly with rice"
	}
	return "rice, tomatoes, garlic (empty uses the pantry)"
}

type keyMap struct {
	Focus    key.Binding
	Submit   key.Binding
	Blur     key.Binding
	Mode     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Cooked   key.Binding
	Grocery  key.Binding
	ClearAll key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Focus:    key.NewBinding(key.WithKeys("i", "/"), key.WithHelp("i", "type")),
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Blur:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop typing")),
		Mode:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "ingredients/dish")),
		Next:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "next recipe")),
		Prev:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "prev recipe")),
		Cooked:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "mark cooked")),
		Grocery:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "grocery list")),
		ClearAll: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear results")),
	}
}

// Model represents the kitchen tab state.
type Model struct {
	state    *app.State
	commands *app.Commands
	input    textinput.Model
	activity components.Activity
	keys     keyMap
	viewport viewport.Model
	now      func() time.Time
	mode     inputMode
	width    int
	height   int
}

// New creates a new kitchen model.
func New(state *app.State, commands *app.Commands) *Model {
	input := textinput.New()
	input.Prompt = "› "
	input.CharLimit = 300
	input.Width = 60
	input.Placeholder = modeIngredients.placeholder()

	return &Model{
		state:    state,
		commands: commands,
		input:    input,
		activity: components.NewActivity(),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		now:      time.Now,
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// InputFocused reports whether the prompt has focus.
func (m *Model) InputFocused() bool {
	return m.input.Focused()
}

// Update handles messages for the kitchen tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.input.Focused() {
			return m, m.updateInput(msg)
		}
		return m, m.handleKeyMsg(msg)

	case app.StartLoadingMsg:
		if msg.Resource == app.ResourceKitchen {
			return m, m.activity.Start(msg.Label, m.now())
		}

	case spinner.TickMsg:
		if m.state.IsLoading(app.ResourceKitchen) {
			var cmd tea.Cmd
			m.activity, cmd = m.activity.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Blur):
		m.input.Blur()
		return nil
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// submit sends the prompt according to the current mode.
func (m *Model) submit() tea.Cmd {
	value := m.input.Value()
	if m.state.IsLoading(app.ResourceKitchen) {
		return m.commands.NotifyWarning("Still working on the last request")
	}

	switch m.mode {
	case modeDish:
		if strings.TrimSpace(value) == "" {
			return m.commands.NotifyWarning("Describe the dish first")
		}
		m.finishInput()
		return m.commands.PreviewDish(value)
	default:
		if len(app.ParseIngredients(value)) == 0 && len(m.state.Pantry()) == 0 {
			return m.commands.NotifyWarning("Type some ingredients or stock the pantry")
		}
		m.finishInput()
		return m.commands.GenerateRecipes(value)
	}
}

func (m *Model) finishInput() {
	m.input.Reset()
	m.input.Blur()
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Focus):
		return m.input.Focus()
	case key.Matches(msg, m.keys.Mode):
		m.toggleMode()
	case key.Matches(msg, m.keys.Next):
		m.state.MoveSelection(1)
	case key.Matches(msg, m.keys.Prev):
		m.state.MoveSelection(-1)
	case key.Matches(msg, m.keys.Cooked):
		if r := m.state.SelectedRecipe(); r != nil {
			return m.commands.MarkCooked(*r)
		}
	case key.Matches(msg, m.keys.Grocery):
		if r := m.state.SelectedRecipe(); r != nil {
			return m.commands.BuildGroceryList([]models.Recipe{*r})
		}
	case key.Matches(msg, m.keys.ClearAll):
		m.state.SetRecipes(nil)
		m.state.SetPreview(nil)
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) toggleMode() {
	if m.mode == modeIngredients {
		m.mode = modeDish
	} else {
		m.mode = modeIngredients
	}
	m.input.Placeholder = m.mode.placeholder()
}

// SetSize sets the available size for the kitchen tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-16, 20)
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Focus, m.keys.Mode, m.keys.Next, m.keys.Cooked, m.keys.Grocery, m.keys.ClearAll,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Focus, m.keys.Submit, m.keys.Blur, m.keys.Mode},
		{m.keys.Next, m.keys.Prev},
		{m.keys.Cooked, m.keys.Grocery, m.keys.ClearAll},
	}
}

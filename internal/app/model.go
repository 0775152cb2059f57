package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/mise/internal/services"
	"github.com/j-veylop/mise/internal/services/ai"
	"github.com/j-veylop/mise/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	TabKitchen TabID = iota
	TabStats
	TabInfo
)

var tabNames = []string{"Kitchen", "Stats", "Info"}

// String returns the display name of the tab.
func (t TabID) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return "Unknown"
	}
	return tabNames[t]
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Tab, tea.Cmd)
	View() string
	SetSize(width, height int)

	// InputFocused reports whether the tab is capturing keystrokes, in which
	// case global shortcuts other than ctrl+c are not applied.
	InputFocused() bool

	ShortHelp() []key.Binding
	FullHelp() [][]key.Binding
}

// KeyMap defines the global keybindings.
type KeyMap struct {
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab1:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "kitchen")),
		Tab2:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "stats")),
		Tab3:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "info")),
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Refresh: key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3},
		{k.NextTab, k.PrevTab},
		{k.Refresh, k.Help, k.Quit},
	}
}

// Styles defines the application chrome styles.
type Styles struct {
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style

	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	Content   lipgloss.Style
	Toast     lipgloss.Style
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	return Styles{
		TabBar: lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).BorderForeground(styles.Subtle),
		ActiveTab:   lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Padding(0, 2),
		InactiveTab: lipgloss.NewStyle().Foreground(styles.TextSecondary).Padding(0, 2),

		NotificationSuccess: lipgloss.NewStyle().Foreground(styles.Success).Padding(0, 1),
		NotificationError:   lipgloss.NewStyle().Foreground(styles.Error).Bold(true).Padding(0, 1),
		NotificationWarning: lipgloss.NewStyle().Foreground(styles.Warning).Padding(0, 1),
		NotificationInfo:    lipgloss.NewStyle().Foreground(styles.Info).Padding(0, 1),

		Content:   lipgloss.NewStyle().Padding(1, 2),
		Toast:     styles.ToastStyle,
		Title:     lipgloss.NewStyle().Bold(true).Foreground(styles.Primary),
		Subtle:    lipgloss.NewStyle().Foreground(styles.Subtle),
		Highlight: lipgloss.NewStyle().Foreground(styles.Secondary),
	}
}

// Model is the root application model.
type Model struct {
	activeTab TabID
	tabs      []Tab

	state    *State
	services *services.Manager
	commands *Commands
	keymap   KeyMap
	styles   Styles
	spinner  spinner.Model

	width  int
	height int

	showHelp bool
	ready    bool

	eventChannel chan services.ServiceEvent
}

// NewModel initializes the root model. Tabs are attached with SetTabs.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	state := NewState()
	return &Model{
		activeTab: TabKitchen,
		tabs:      make([]Tab, len(tabNames)),
		state:     state,
		services:  mgr,
		commands:  NewCommands(mgr, state),
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
	}
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

func (m *Model) GetState() *State {
	return m.state
}

func (m *Model) GetCommands() *Commands {
	return m.commands
}

func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// Init starts the spinner, the tick loop, the service subscription and the
// initial load.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading kitchen...")

	cmds := []tea.Cmd{m.spinner.Tick, defaultTickCmd()}
	if m.services != nil {
		cmds = append(cmds,
			subscribeToServicesCmd(m.services),
			loadInitialData(m.services, m.state.TimeRange()),
		)
	}
	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.updateTabSizes()
	case tea.KeyMsg:
		if cmd, handled := m.handleKeyMsg(msg); handled {
			return m, cmd
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	default:
		cmds = append(cmds, m.handleAppMsg(msg)...)
	}

	if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd())
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEvent(msg.Event))
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}
	case StartLoadingMsg:
		m.state.SetLoading(msg.Resource, true)
		m.state.SetLoadingNotification(msg.Label)
	case StatsLoadedMsg:
		m.state.FinishInitialLoad()
		m.state.SetLoading(ResourceStats, false)
		if msg.Error != nil {
			cmds = append(cmds, notifyErrorCmd("Stats: "+describeError(msg.Error)))
		} else {
			m.state.SetStats(msg.Snapshot, msg.Recent)
		}
	case DiagnosticsLoadedMsg:
		m.state.SetLoading(ResourceDiagnostics, false)
		if msg.Error == nil {
			m.state.SetDiagnostics(msg.Diagnostics)
		}
	case PantryLoadedMsg:
		m.state.SetLoading(ResourcePantry, false)
		if msg.Error == nil {
			m.state.SetPantry(msg.Items)
		}
	case RecipesGeneratedMsg:
		cmds = append(cmds, m.handleRecipes(msg))
	case DishPreviewedMsg:
		cmds = append(cmds, m.handlePreview(msg))
	case GroceryListMsg:
		m.state.SetLoading(ResourceKitchen, false)
		if msg.Error != nil {
			cmds = append(cmds, notifyErrorCmd("Grocery list: "+describeError(msg.Error)))
		} else {
			m.state.SetGrocery(msg.List)
		}
	case CookedMsg:
		cmds = append(cmds, m.handleCooked(msg))
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ErrorMsg:
		cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("%s: %s", msg.Context, describeError(msg.Error))))
	case RefreshMsg:
		cmds = append(cmds, m.refresh(msg.Resource))
	case TabSwitchMsg:
		m.switchTab(msg.Tab)
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}

	if !m.state.AnyLoading() {
		m.state.ClearLoadingNotification()
	}
	return cmds
}

func (m *Model) handleRecipes(msg RecipesGeneratedMsg) tea.Cmd {
	m.state.SetLoading(ResourceKitchen, false)
	if msg.Error != nil {
		return notifyErrorCmd("Recipes: " + describeError(msg.Error))
	}
	m.state.SetRecipes(msg.Recipes)
	return notifySuccessCmd(fmt.Sprintf("%d recipes ready", len(msg.Recipes)))
}

func (m *Model) handlePreview(msg DishPreviewedMsg) tea.Cmd {
	m.state.SetLoading(ResourceKitchen, false)
	if msg.Error != nil {
		return notifyErrorCmd("Preview: " + describeError(msg.Error))
	}
	m.state.SetPreview(msg.Preview)
	name := "dish"
	if id := msg.Preview.Identification; id != nil && id.DishName != "" {
		name = id.DishName
	}
	if msg.Preview.Image == nil {
		return notifyInfoCmd("Identified " + name)
	}
	return notifySuccessCmd("Preview ready for " + name)
}

func (m *Model) handleCooked(msg CookedMsg) tea.Cmd {
	if msg.Error != nil {
		return notifyErrorCmd("Cooked log: " + describeError(msg.Error))
	}
	cmds := []tea.Cmd{notifySuccessCmd("Logged " + msg.Event.Entry.Recipe.Title)}
	if msg.Event.LevelUp {
		cmds = append(cmds, notifySuccessCmd("Level up! You are now a "+msg.Event.Snapshot.Skill.Current.Name))
	}
	return tea.Batch(cmds...)
}

func (m *Model) refresh(r Resource) tea.Cmd {
	if m.services == nil {
		return nil
	}
	switch r {
	case ResourceStats:
		return m.commands.LoadStats()
	case ResourceDiagnostics:
		return m.commands.LoadDiagnostics()
	case ResourcePantry:
		return m.commands.LoadPantry()
	default:
		return loadInitialData(m.services, m.state.TimeRange())
	}
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.CookedLoggedEvent:
		return m.refresh(ResourceStats)
	case services.LogChangedEvent:
		return tea.Batch(m.refresh(ResourceStats), m.refresh(ResourcePantry))
	case services.AICallEvent:
		m.state.PushAICall(e.Call)
		return m.refresh(ResourceDiagnostics)
	case services.PantryChangedEvent:
		return m.refresh(ResourcePantry)
	case services.ErrorEvent:
		return notifyErrorCmd(fmt.Sprintf("[%s] %s", e.Service, describeError(e.Error)))
	}
	return nil
}

// describeError shortens orchestrator errors for a toast.
func describeError(err error) string {
	if err == nil {
		return "unknown error"
	}
	var exhausted *ai.ExhaustedError
	switch {
	case errors.As(err, &exhausted):
		return fmt.Sprintf("every model and key failed (%d attempts): %v", exhausted.Attempts, exhausted.Last)
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, ai.ErrImageNotConfigured):
		return "image generation is not configured"
	}
	return err.Error()
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	tab := m.currentTab()
	if tab == nil {
		return nil
	}
	var cmd tea.Cmd
	m.tabs[m.activeTab], cmd = tab.Update(msg)
	return cmd
}

func (m *Model) currentTab() Tab {
	if int(m.activeTab) < len(m.tabs) {
		return m.tabs[m.activeTab]
	}
	return nil
}

func (m *Model) switchTab(id TabID) {
	if len(m.tabs) == 0 {
		return
	}
	m.activeTab = TabID((int(id) + len(m.tabs)) % len(m.tabs))
	m.updateTabSizes()
}

func (m *Model) updateTabSizes() {
	contentHeight := max(m.height-5, 0)
	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

// handleKeyMsg applies global shortcuts. It reports false when the key
// should reach the active tab instead.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit, true
	}
	if tab := m.currentTab(); tab != nil && tab.InputFocused() {
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit, true
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return nil, true
	case m.showHelp && key.Matches(msg, m.keymap.Escape):
		m.showHelp = false
		return nil, true
	case key.Matches(msg, m.keymap.Tab1):
		m.switchTab(TabKitchen)
	case key.Matches(msg, m.keymap.Tab2):
		m.switchTab(TabStats)
	case key.Matches(msg, m.keymap.Tab3):
		m.switchTab(TabInfo)
	case key.Matches(msg, m.keymap.NextTab):
		m.switchTab(m.activeTab + 1)
	case key.Matches(msg, m.keymap.PrevTab):
		m.switchTab(m.activeTab - 1)
	case key.Matches(msg, m.keymap.Refresh):
		return m.refresh(""), true
	default:
		return nil, false
	}
	// Tab switches are forwarded so the new tab can react to TabSwitchMsg.
	return func() tea.Msg { return TabSwitchMsg{Tab: m.activeTab} }, true
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(m.spinner.View() + " Loading..."))
		return b.String()
	}

	if tab := m.currentTab(); tab != nil {
		b.WriteString(tab.View())
	} else {
		b.WriteString(m.styles.Content.Render(m.styles.Subtle.Render("Nothing to show here yet.")))
	}

	view := b.String()
	if m.showHelp {
		view = m.overlayCentered(view, m.renderHelp())
	}
	if toasts := m.renderNotifications(); len(toasts) > 0 {
		view = m.overlayToasts(view, toasts)
	}
	return view
}

func (m *Model) renderNavbar() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if TabID(i) == m.activeTab {
			tabs[i] = m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name))
		} else {
			tabs[i] = m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name))
		}
	}
	return m.styles.TabBar.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.Notifications()
	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		style, prefix := m.styles.NotificationInfo, "[INFO]"
		switch n.Type {
		case NotificationSuccess:
			style, prefix = m.styles.NotificationSuccess, "[OK]"
		case NotificationError:
			style, prefix = m.styles.NotificationError, "[ERR]"
		case NotificationWarning:
			style, prefix = m.styles.NotificationWarning, "[WARN]"
		case NotificationLoading:
			prefix = m.spinner.View()
		}
		toasts = append(toasts, m.styles.Toast.Render(style.Render(prefix+" "+n.Message)))
	}
	return toasts
}

// overlayCentered draws overlay over the middle of base.
func (m *Model) overlayCentered(base, overlay string) string {
	y := max((m.height-lipgloss.Height(overlay))/2, 0)
	x := max((m.width-lipgloss.Width(overlay))/2, 0)
	return overlayAt(base, overlay, x, y)
}

// overlayToasts stacks toasts in the top-right corner below the navbar.
func (m *Model) overlayToasts(base string, toasts []string) string {
	stack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	x := max(m.width-lipgloss.Width(stack)-2, 0)
	return overlayAt(base, stack, x, 2)
}

// overlayAt splices overlay into base with its top-left corner at (x, y),
// keeping whatever of base lies to the right of it.
func overlayAt(base, overlay string, x, y int) string {
	lines := strings.Split(base, "\n")
	width := lipgloss.Width(overlay)

	for i, row := range strings.Split(overlay, "\n") {
		idx := y + i
		if idx >= len(lines) {
			break
		}
		left := ansi.Truncate(lines[idx], x, "")
		if pad := x - lipgloss.Width(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		right := ansi.TruncateLeft(lines[idx], x+width, "")
		lines[idx] = left + row + right
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHelp() string {
	lines := []string{
		m.styles.Title.Render("Keyboard Shortcuts"),
		"",
		m.styles.Highlight.Render("Navigation"),
		"  1-3        Switch tabs",
		"  Tab        Next tab",
		"  Shift+Tab  Previous tab",
		"",
		m.styles.Highlight.Render("Actions"),
		"  r          Refresh",
		"  ?          Toggle help",
		"  q/Ctrl+C   Quit",
	}

	if tab := m.currentTab(); tab != nil {
		if bindings := tab.ShortHelp(); len(bindings) > 0 {
			lines = append(lines, "", m.styles.Highlight.Render(m.activeTab.String()+" Tab"))
			for _, b := range bindings {
				lines = append(lines, fmt.Sprintf("  %-10s %s", b.Help().Key, b.Help().Desc))
			}
		}
	}

	lines = append(lines, "", m.styles.Subtle.Render("Press ? or Esc to close"))
	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/mise/internal/ui/styles"
)

// elapsedAfter is how long a request runs before the elapsed time is shown.
const elapsedAfter = 3 * time.Second

// Activity is a spinner that tracks how long the current AI request has been
// running. A fallback loop over several models can take a while, so the
// elapsed time appears once it passes elapsedAfter.
type Activity struct {
	spinner   spinner.Model
	label     string
	startedAt time.Time
	labelSty  lipgloss.Style
	timeSty   lipgloss.Style
}

// NewActivity returns an idle activity indicator.
func NewActivity() Activity {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return Activity{
		spinner:  s,
		labelSty: lipgloss.NewStyle().Foreground(styles.TextSecondary),
		timeSty:  lipgloss.NewStyle().Foreground(styles.TextMuted),
	}
}

// Start begins a new activity at now and returns the first tick.
func (a *Activity) Start(label string, now time.Time) tea.Cmd {
	a.label = label
	a.startedAt = now
	return a.spinner.Tick
}

// Update advances the spinner on its own tick messages only.
func (a Activity) Update(msg tea.Msg) (Activity, tea.Cmd) {
	var cmd tea.Cmd
	a.spinner, cmd = a.spinner.Update(msg)
	return a, cmd
}

func (a Activity) Label() string {
	return a.label
}

// Elapsed returns how long the activity has been running at now.
func (a Activity) Elapsed(now time.Time) time.Duration {
	if a.startedAt.IsZero() || now.Before(a.startedAt) {
		return 0
	}
	return now.Sub(a.startedAt)
}

// View renders the spinner, label and, for slow requests, the elapsed seconds.
func (a Activity) View(now time.Time) string {
	out := a.spinner.View() + " " + a.labelSty.Render(a.label)
	if d := a.Elapsed(now); d >= elapsedAfter {
		out += " " + a.timeSty.Render(fmt.Sprintf("(%ds)", int(d.Seconds())))
	}
	return out
}

package info

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/mise/internal/ui/styles"
	"github.com/j-veylop/mise/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	m.syncRows()

	sections := []string{
		m.renderTitle(),
		m.renderRotationCard(),
		m.renderCallsCard(),
		m.renderModelStatsCard(),
		m.renderConfigCard(),
		m.renderAboutCard(),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 50)
}

func (m *Model) card(title string, rows ...string) string {
	content := append([]string{styles.CardTitleStyle.Render(title), ""}, rows...)
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, content...))
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("AI backends, configuration and application information")
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func renderRow(label, value string) string {
	return styles.LabelStyle.Render(label+":") + " " + styles.ValueStyle.Render(value)
}

func (m *Model) renderRotationCard() string {
	r := m.state.Diagnostics().Rotation
	if len(r.Models) == 0 {
		return m.card("Model Rotation", styles.HelpStyle.Render("Waiting for diagnostics..."))
	}

	rows := []string{renderRow("Provider", string(r.Provider))}
	for i, name := range r.Models {
		marker := "  "
		line := name
		if i == r.LastModelIndex {
			marker = styles.SuccessTextStyle.Render("● ")
			line = styles.SuccessTextStyle.Render(name) + styles.HelpStyle.Render("  last success, tried first")
		}
		rows = append(rows, fmt.Sprintf("  %s%d. %s", marker, i+1, line))
	}
	rows = append(rows,
		"",
		renderRow("Active key", fmt.Sprintf("#%d of %d", r.KeyIndex+1, r.KeyCount)),
	)
	image := styles.MutedTextStyle.Render("not configured")
	if r.ImageEnabled {
		image = styles.SuccessTextStyle.Render("enabled")
	}
	rows = append(rows, styles.LabelStyle.Render("Image backend:")+" "+image)
	return m.card("Model Rotation", rows...)
}

func (m *Model) renderCallsCard() string {
	if len(m.table.Rows()) == 0 {
		return m.card("Recent AI Calls", styles.HelpStyle.Render("No AI calls yet"))
	}
	rows := []string{m.table.View()}
	if c, ok := m.selectedCall(); ok {
		detail := styles.GetOutcomeStyle(c.Outcome).Render(strings.ToUpper(c.Outcome))
		if c.Error != "" {
			detail += " " + lipgloss.NewStyle().Width(m.cardWidth()-20).Render(c.Error)
		}
		rows = append(rows, "", detail)
		if c.RequestID != "" {
			rows = append(rows, styles.HelpStyle.Render("request "+c.RequestID))
		}
	}
	return m.card("Recent AI Calls", rows...)
}

func (m *Model) renderModelStatsCard() string {
	stats := m.state.Diagnostics().ModelStats
	if len(stats) == 0 {
		return m.card("Model Stats", styles.HelpStyle.Render("No attempts recorded"))
	}

	rows := []string{styles.MutedTextStyle.Render(fmt.Sprintf("%-24s %8s %8s %6s %6s %8s  %s",
		"Model", "Attempts", "Success", "Retry", "Fatal", "Avg", "Last used"))}
	now := m.now()
	for _, s := range stats {
		rate := s.SuccessRate()
		rows = append(rows, fmt.Sprintf("%-24s %8s %8s %6d %6d %8s  %s",
			truncate(s.Model, 24),
			humanize.Comma(int64(s.Attempts)),
			styles.GetRateStyle(rate).Render(fmt.Sprintf("%7.0f%%", rate)),
			s.Retryable,
			s.Terminal,
			formatDuration(int(s.AvgDurationMs)),
			humanize.RelTime(s.LastUsed, now, "ago", "from now"),
		))
	}
	return m.card("Model Stats", rows...)
}

// truncate fits s into n terminal cells.
func truncate(s string, n int) string {
	return ansi.Truncate(s, n, "...")
}

func (m *Model) renderConfigCard() string {
	if m.config == nil {
		return m.card("Configuration", styles.HelpStyle.Render("Configuration not loaded"))
	}
	c := m.config

	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = "default"
	}
	logPath := c.LogPath
	if logPath == "" {
		logPath = "disabled"
	}
	notifications := "off"
	if c.Notifications {
		notifications = "on"
	}

	return m.card("Configuration",
		renderRow("Provider", string(c.Provider)),
		renderRow("Base URL", baseURL),
		renderRow("Models", strings.Join(c.Models, ", ")),
		renderRow("API keys", fmt.Sprintf("%d configured", len(c.APIKeys))),
		renderRow("Request timeout", c.RequestTimeout.String()),
		renderRow("Database", c.DatabasePath),
		renderRow("History limit", fmt.Sprintf("%d entries", c.HistoryLimit)),
		renderRow("Log file", logPath),
		renderRow("Log level", c.LogLevel),
		renderRow("Notifications", notifications),
	)
}

func (m *Model) renderAboutCard() string {
	return m.card("About "+version.Name,
		renderRow("Version", version.GetVersion()),
		renderRow("Build Date", version.GetDate()),
		renderRow("Git Commit", version.GetCommit()),
		renderRow("Go Version", runtime.Version()),
		renderRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	)
}

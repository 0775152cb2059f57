package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/mise/internal/models"
	"github.com/j-veylop/mise/internal/ui/components"
	"github.com/j-veylop/mise/internal/ui/styles"
)

// View renders the stats tab.
func (m *Model) View() string {
	snap := m.state.Snapshot()
	if snap == nil {
		if m.state.IsInitialLoading() {
			return m.renderLoading()
		}
		return m.renderEmpty()
	}

	sections := []string{
		m.renderHeader(snap),
		m.renderOverview(snap),
		m.renderSkill(snap),
		m.renderActivity(snap),
		m.renderCuisines(snap),
	}
	if snap.Nutrition.Dishes > 0 {
		sections = append(sections, m.renderNutrition(snap.Nutrition))
	}
	sections = append(sections, m.renderRecent())

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func (m *Model) card(icon, title string, rows ...string) string {
	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render(icon)
	head := fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render(title))
	content := append([]string{head, ""}, rows...)
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, content...))
}

func (m *Model) renderLoading() string {
	return styles.CenterBoth(styles.HelpStyle.Render("Loading cooking stats..."), m.width, m.height)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Stats"),
		"",
		styles.HelpStyle.Render("No cooking history yet."),
		styles.HelpStyle.Render("Mark a recipe cooked in the kitchen tab to start a streak."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader(snap *models.Snapshot) string {
	title := styles.TitleStyle.Render("Stats")

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)
	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] %s", snap.Range))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)

	subtitle := ""
	if updated := m.state.LastUpdated(); !updated.IsZero() {
		subtitle = styles.HelpStyle.Render("Updated " + humanize.RelTime(updated, m.now(), "ago", "from now"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func statRow(label, value string) string {
	return styles.LabelStyle.Render(label) + styles.StatValueStyle.Render(value)
}

func (m *Model) renderOverview(snap *models.Snapshot) string {
	streak := plural(snap.CurrentStreak, "day", "days")
	if snap.CurrentStreak > 0 {
		streak = "🔥 " + streak
	}
	return m.card("🍳", "Overview",
		statRow("Dishes", humanize.Comma(int64(snap.TotalDishes))),
		statRow("All time", humanize.Comma(int64(snap.AllTimeDishes))),
		statRow("Cooking time", formatMinutes(snap.TotalCookingMinutes)),
		statRow("Avg per dish", formatMinutes(int(snap.AvgMinutesPerDish()+0.5))),
		statRow("Current streak", streak),
		statRow("Longest streak", plural(snap.LongestStreak, "day", "days")),
	)
}

func (m *Model) renderSkill(snap *models.Snapshot) string {
	return m.card("🏅", "Skill", components.RenderSkill(m.bar, snap.Skill, snap.AllTimeDishes, m.cardWidth()-6))
}

func (m *Model) renderActivity(snap *models.Snapshot) string {
	chart := components.RenderActivityChart(snap.WeeklyActivity, max(m.cardWidth()-14, 30), 6)
	var rows []string
	for line := range strings.SplitSeq(chart, "\n") {
		rows = append(rows, "  "+line)
	}
	return m.card("📈", "Last 7 Days", rows...)
}

func (m *Model) renderCuisines(snap *models.Snapshot) string {
	rows := []string{components.RenderCuisineBars(snap.TopCuisines, m.cardWidth()-6)}
	if extra := len(snap.Cuisines) - len(snap.TopCuisines); extra > 0 {
		rows = append(rows, "", styles.HelpStyle.Render(fmt.Sprintf("+%d more", extra)))
	}
	return m.card("🌍", "Cuisines", rows...)
}

func (m *Model) renderNutrition(n models.NutritionTotals) string {
	return m.card("🥗", "Nutrition",
		statRow("Calories", humanize.Comma(int64(n.Calories+0.5))),
		statRow("Avg per dish", fmt.Sprintf("%.0f kcal", n.AvgCalories())),
		statRow("Protein", fmt.Sprintf("%.0f g", n.ProteinG)),
		statRow("Carbs", fmt.Sprintf("%.0f g", n.CarbsG)),
		statRow("Fat", fmt.Sprintf("%.0f g", n.FatG)),
		styles.HelpStyle.Render(fmt.Sprintf("from %s with nutrition data", plural(n.Dishes, "dish", "dishes"))),
	)
}

func (m *Model) renderRecent() string {
	recent := m.state.Recent()
	if len(recent) == 0 {
		return m.card("🕑", "Recently Cooked", styles.HelpStyle.Render("Nothing logged yet"))
	}
	now := m.now()
	rows := make([]string, 0, len(recent))
	for _, entry := range recent {
		meta := humanize.RelTime(entry.CookedAt, now, "ago", "from now")
		if c := entry.Recipe.Cuisine; c != "" {
			meta = c + " · " + meta
		}
		rows = append(rows, fmt.Sprintf("  %s  %s", entry.Recipe.Title, styles.HelpStyle.Render(meta)))
	}
	return m.card("🕑", "Recently Cooked", rows...)
}

// formatMinutes renders 95 as "1h 35m".
func formatMinutes(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	d := time.Duration(minutes) * time.Minute
	h, mins := int(d.Hours()), minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", mins)
	case mins == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, mins)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/mise/internal/models"
	"github.com/j-veylop/mise/internal/ui/styles"
)

// ProgressBar renders a labeled gradient bar with a percentage.
type ProgressBar struct {
	progress progress.Model
}

// NewProgressBar creates a bar that runs from basil to saffron.
func NewProgressBar() ProgressBar {
	return ProgressBar{
		progress: progress.New(
			progress.WithScaledGradient("#87af5f", "#ff8700"),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

// View renders percent (0-100) with label on the left.
func (p ProgressBar) View(percent float64, label string, width int) string {
	percent = clampPercent(percent)
	p.progress.Width = max(width-24, 10)

	bar := p.progress.ViewAs(percent / 100)
	percentStr := styles.StatValueStyle.Width(6).Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", percent))

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		styles.ProgressLabelStyle.Render(label),
		bar,
		" ",
		percentStr,
	)
}

// ViewCompact renders the bar and percentage without a label.
func (p ProgressBar) ViewCompact(percent float64, width int) string {
	percent = clampPercent(percent)
	p.progress.Width = max(width-6, 5)
	bar := p.progress.ViewAs(percent / 100)
	return lipgloss.JoinHorizontal(lipgloss.Center, bar, " ",
		styles.StatValueStyle.Render(fmt.Sprintf("%.0f%%", percent)))
}

// RenderSkill renders the skill rung, the bar toward the next rung and the
// dishes still needed.
func RenderSkill(bar ProgressBar, skill models.SkillStatus, totalDishes, width int) string {
	name := styles.StatValueStyle.Render(skill.Current.Name)
	if skill.Next == nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			name,
			bar.View(100, "Top rung", width),
		)
	}

	remaining := skill.Next.MinDishes - totalDishes
	hint := styles.HelpStyle.Render(fmt.Sprintf("%d more %s to %s",
		remaining, plural(remaining, "dish", "dishes"), skill.Next.Name))
	return lipgloss.JoinVertical(lipgloss.Left,
		name,
		bar.View(skill.Progress, "Next: "+skill.Next.Name, width),
		hint,
	)
}

func clampPercent(p float64) float64 {
	return min(max(p, 0), 100)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/mise/internal/models"
	"github.com/j-veylop/mise/internal/ui/styles"
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	return asciigraph.Plot(data,
		asciigraph.Height(max(height, 3)),
		asciigraph.Width(max(width, 20)),
		asciigraph.LowerBound(0),
		asciigraph.Precision(0),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.DarkOrange),
	)
}

// RenderActivityChart plots dishes per day for the 7-day series, with a
// weekday strip underneath.
func RenderActivityChart(days []models.DailyActivity, width, height int) string {
	if len(days) == 0 {
		return styles.HelpStyle.Render("No activity yet")
	}

	data := make([]float64, len(days))
	for i, d := range days {
		data[i] = float64(d.Count)
	}

	chart := RenderLineChart(data, width, height, "Dishes cooked per day")
	return lipgloss.JoinVertical(lipgloss.Left, chart, "", RenderWeekStrip(days))
}

// RenderWeekStrip renders "Mon ▁ Tue █ ..." with the count after each bar.
func RenderWeekStrip(days []models.DailyActivity) string {
	peak := 0
	for _, d := range days {
		peak = max(peak, d.Count)
	}

	parts := make([]string, 0, len(days))
	for _, d := range days {
		level := 0
		if peak > 0 {
			level = d.Count * (len(sparkChars) - 1) / peak
		}
		bar := lipgloss.NewStyle().Foreground(styles.Primary).Render(string(sparkChars[level]))
		if d.Count == 0 {
			bar = styles.MutedTextStyle.Render(string(sparkChars[0]))
		}
		parts = append(parts, fmt.Sprintf("%s %s%d", d.Label, bar, d.Count))
	}
	return strings.Join(parts, "  ")
}

// RenderBarChart creates a horizontal bar chart of integer counts.
func RenderBarChart(values []int, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	peak := 1
	for _, v := range values {
		peak = max(peak, v)
	}

	labelWidth := 0
	for _, l := range labels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
	}

	barWidth := max(width-labelWidth-8, 10)
	barStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	lines := make([]string, 0, len(values))
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		barLen := max(v*barWidth/peak, 0)
		lines = append(lines, fmt.Sprintf("%-*s │%s %d",
			labelWidth, label, barStyle.Render(strings.Repeat("█", barLen)), v))
	}
	return strings.Join(lines, "\n")
}

// RenderCuisineBars renders the top cuisines as a bar chart.
func RenderCuisineBars(top []models.CuisineCount, width int) string {
	if len(top) == 0 {
		return styles.HelpStyle.Render("No dishes in this range")
	}
	values := make([]int, len(top))
	labels := make([]string, len(top))
	for i, c := range top {
		values[i] = c.Count
		labels[i] = c.Cuisine
	}
	return RenderBarChart(values, labels, width)
}

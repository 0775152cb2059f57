// Package styles defines the visual styling for the application.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/mise/internal/models"
)

// Color definitions for the mise theme.
var (
	Primary   = lipgloss.Color("208") // Saffron
	Secondary = lipgloss.Color("107") // Basil
	Subtle    = lipgloss.Color("240") // Gray

	Success = lipgloss.Color("42")
	Error   = lipgloss.Color("196")
	Warning = lipgloss.Color("220")
	Info    = lipgloss.Color("39")

	BgDark  = lipgloss.Color("235")
	BgLight = lipgloss.Color("237")

	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

var FocusedStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

var BlurredStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// InputBorderStyle frames the kitchen prompt. Its border color follows focus.
var InputBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(0, 1)

// ProgressLabelStyle styles progress bar labels.
var ProgressLabelStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Width(16)

var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

var LabelStyle = lipgloss.NewStyle().
	Width(18).
	Foreground(TextMuted)

var ValueStyle = lipgloss.NewStyle().
	Foreground(TextPrimary)

// StatValueStyle emphasizes headline numbers.
var StatValueStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

var (
	ErrorTextStyle   = lipgloss.NewStyle().Foreground(Error)
	SuccessTextStyle = lipgloss.NewStyle().Foreground(Success)
	WarningTextStyle = lipgloss.NewStyle().Foreground(Warning)
	InfoTextStyle    = lipgloss.NewStyle().Foreground(Info)
	MutedTextStyle   = lipgloss.NewStyle().Foreground(TextMuted)
)

// GetFreshnessStyle returns the style for a pantry item's freshness.
func GetFreshnessStyle(f models.Freshness) lipgloss.Style {
	switch f {
	case models.FreshnessFresh:
		return SuccessTextStyle
	case models.FreshnessExpiring:
		return WarningTextStyle
	default:
		return ErrorTextStyle
	}
}

// GetOutcomeStyle returns the style for an AI attempt outcome.
func GetOutcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case models.AttemptSuccess:
		return SuccessTextStyle
	case models.AttemptRetryable:
		return WarningTextStyle
	case models.AttemptTerminal:
		return ErrorTextStyle
	default:
		return MutedTextStyle
	}
}

// GetRateStyle colors a 0-100 success rate.
func GetRateStyle(percent float64) lipgloss.Style {
	switch {
	case percent >= 80:
		return SuccessTextStyle
	case percent >= 40:
		return WarningTextStyle
	default:
		return ErrorTextStyle
	}
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}

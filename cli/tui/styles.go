// Package tui provides Bubble Tea views for the filebridge CLI.
//
// TUI mode is opt-in (--tui) and read-only. Views render the same payloads
// as the json/table/yaml output; there is no TUI-only data.
package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor   = lipgloss.Color("#7C3AED")
	successColor   = lipgloss.Color("#10B981")
	warningColor   = lipgloss.Color("#F59E0B")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	highlightColor = lipgloss.Color("#3B82F6")
	whiteColor     = lipgloss.Color("#FFFFFF")
)

// stateColors maps ledger statuses and file presence markers to colors.
var stateColors = map[string]lipgloss.Color{
	"success": successColor,
	"present": successColor,
	"pending": warningColor,
	"failed":  errorColor,
	"missing": errorColor,
}

// Shared text styles.
var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).MarginBottom(1)
	LabelStyle = lipgloss.NewStyle().Foreground(mutedColor).Width(16)
	ValueStyle = lipgloss.NewStyle().Foreground(whiteColor)
	HelpStyle  = lipgloss.NewStyle().Foreground(mutedColor).MarginTop(1)
)

// StateStyle colors a run status or presence marker. Unknown states render
// as plain values.
func StateStyle(state string) lipgloss.Style {
	if c, ok := stateColors[state]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return ValueStyle
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(mutedColor).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.Foreground(whiteColor).Background(primaryColor)
	return s
}

// statBox renders a bordered counter tinted with color.
func statBox(label string, value int, color lipgloss.Color) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 2).
		Width(20).
		Align(lipgloss.Center)
	v := lipgloss.NewStyle().Bold(true).Foreground(color).Render(itoa(value))
	l := lipgloss.NewStyle().Foreground(mutedColor).Render(label)
	return box.Render(lipgloss.JoinVertical(lipgloss.Center, v, l))
}

package tui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// View types with a TUI.
const (
	ViewStatus  = "status"
	ViewHistory = "history"
)

// Run starts the TUI for a view type.
func Run(viewType string, data any) error {
	var model tea.Model
	switch viewType {
	case ViewStatus:
		m, err := NewStatusModel(data)
		if err != nil {
			return err
		}
		model = m
	case ViewHistory:
		m, err := NewHistoryModel(data)
		if err != nil {
			return err
		}
		model = m
	default:
		return fmt.Errorf("TUI mode is not supported for %s", viewType)
	}

	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// IsTUISupported reports whether the view type has a TUI.
func IsTUISupported(viewType string) bool {
	return slices.Contains(SupportedTUIViews(), viewType)
}

// SupportedTUIViews lists the view types with a TUI.
func SupportedTUIViews() []string {
	return []string{ViewStatus, ViewHistory}
}

type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
}

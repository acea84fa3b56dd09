package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Run starts the interactive dashboard and blocks until the user quits.
func Run(opts Options) error {
	applyColorProfilePreference()
	switch opts.Theme {
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	default:
		applyThemePreference()
	}

	m := newAppModel(opts)
	_, err := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	).Run()
	return err
}

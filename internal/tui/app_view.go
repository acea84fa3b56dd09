package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"pulseboard/internal/widget"
)

const helpLine = "a add · h hide/show · x remove · tab focus · arrows pan · drag title to move · drag ◢ to resize · q quit"

func (m appModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	switch m.mode {
	case modeLoading:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			styleMuted().Render("Loading dashboard…"))

	case modePicker:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			m.picker.View(),
		)

	case modeConfirmRemove:
		name := string(m.confirmTarget)
		if def, ok := widget.Lookup(m.confirmTarget); ok {
			name = def.Name
		}
		return renderConfirmModal(
			m.width, m.height,
			"Remove widget",
			fmt.Sprintf("Remove %q from your dashboard?\nIts position is forgotten.", name),
			"Remove", "Keep",
			m.confirmFocus,
		)

	default:
		canvasH := m.height - 2
		if canvasH < 0 {
			canvasH = 0
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			m.renderCanvas(m.width, canvasH),
			m.renderFooter(),
		)
	}
}

func (m appModel) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("pulseboard")
	right := ""
	if n := len(m.cfg.Active()); n > 0 {
		right = styleMuted().Render(fmt.Sprintf("%d widgets", n))
	}
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(right)
	return normalizePane(title+pad(gap)+right, m.width, 1)
}

func (m appModel) renderFooter() string {
	if m.statusErr != "" {
		return normalizePane(
			lipgloss.NewStyle().Foreground(colorErrorFg).Render(m.statusErr),
			m.width, 1)
	}
	return normalizePane(styleMuted().Render(helpLine), m.width, 1)
}

func pad(n int) string {
	if n <= 0 {
		return ""
	}
	s := make([]byte, n)
	for i := range s {
		s[i] = ' '
	}
	return string(s)
}

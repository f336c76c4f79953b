package tui

import "github.com/charmbracelet/lipgloss"

var (
	panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	running = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ff88"))

	failed = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ff4444"))

	barFull  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff"))
	barEmpty = lipgloss.NewStyle().Foreground(lipgloss.Color("#333344"))
)

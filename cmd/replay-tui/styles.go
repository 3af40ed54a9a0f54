package main

import "github.com/charmbracelet/lipgloss"

// Color palette and styles, grounded on
// pithecene-io-quarry/quarry/cli/tui/styles.go's inspect/stats TUI palette.
var (
	primaryColor = lipgloss.Color("#7C3AED")
	mutedColor   = lipgloss.Color("#6B7280")
	frameColor   = lipgloss.Color("#3B82F6")
	metaColor    = lipgloss.Color("#F59E0B")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	frameStyle = lipgloss.NewStyle().Foreground(frameColor)
	metaStyle  = lipgloss.NewStyle().Foreground(metaColor).Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)
)

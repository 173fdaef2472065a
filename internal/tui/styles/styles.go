// Package styles defines shared lipgloss styles for the TUI.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor   = lipgloss.Color("#5FAFAF") // Teal accent
	secondaryColor = lipgloss.Color("#666666") // Gray for secondary text
	resultColor    = lipgloss.Color("#3B82F6") // Blue for task results
	panelColor     = lipgloss.Color("#F3F4F6") // Light panel background
	successColor   = lipgloss.Color("#87AF87") // Muted sage for success
	errorColor     = lipgloss.Color("#AF5F5F") // Muted terracotta for errors

	// TitleStyle for the objective header
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// SubtleStyle for hints/help text
	SubtleStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	// HeaderStyle for panel headings
	HeaderStyle = lipgloss.NewStyle().
			Bold(true)

	// StatusBarStyle for bottom status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	// BoxStyle for panel borders
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)

	// ObjectiveStyle for the objective banner in the message pane
	ObjectiveStyle = lipgloss.NewStyle().
			Bold(true).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(secondaryColor)

	// TaskStyle for the next-task bubble, left aligned
	TaskStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#111827")).
			Background(panelColor).
			Padding(0, 1)

	// ResultStyle for the task-result bubble, right aligned
	ResultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(resultColor).
			Padding(0, 1)

	// ThinkingStyle for the running indicator
	ThinkingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(resultColor)

	// SuccessStyle for success messages
	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	// ErrorStyle for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)

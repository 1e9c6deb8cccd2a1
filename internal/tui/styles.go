package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Base colors
	primaryColor = lipgloss.Color("212")
	mutedColor   = lipgloss.Color("241")
	successColor = lipgloss.Color("42")
	errorColor   = lipgloss.Color("196")
	infoColor    = lipgloss.Color("45")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(successColor)
	subtleStyle = lipgloss.NewStyle().Foreground(mutedColor)

	// Action list
	cursorStyle   = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	actionStyle   = lipgloss.NewStyle()
	disabledStyle = lipgloss.NewStyle().Foreground(mutedColor)

	// Result panels
	responseStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	errorPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(errorColor).
			Padding(0, 1)
	infoPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(infoColor).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().Bold(true)
	errorTextStyle  = lipgloss.NewStyle().Foreground(errorColor)
	spinnerStyle    = lipgloss.NewStyle().Foreground(infoColor)
)

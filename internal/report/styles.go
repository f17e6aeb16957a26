package report

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("62")
	colorSuccess = lipgloss.Color("42")
	colorError   = lipgloss.Color("196")
	colorMuted   = lipgloss.Color("240")
	colorBorder  = lipgloss.Color("238")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(18)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)
)

const ruleWidth = 70

package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary = lipgloss.Color("#8B5CF6") // Vivid Purple
	Success = lipgloss.Color("#00B100") // Run green
	Error   = lipgloss.Color("#F43F5E") // Rose
	Accent  = lipgloss.Color("#F97316") // Orange
	TextDim = lipgloss.Color("#94A3B8") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Bold(true)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// States
var (
	StatusOK = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	StatusFailed = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarningHeader = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarningItem = lipgloss.NewStyle().
			Foreground(Error)

	Code = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)
)

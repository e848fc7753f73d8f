package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor   = lipgloss.Color("#22C55E") // Green
	secondaryColor = lipgloss.Color("#3B82F6") // Blue
	accentColor    = lipgloss.Color("#06B6D4") // Cyan
	successColor   = lipgloss.Color("#10B981") // Emerald
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	textColor      = lipgloss.Color("#F9FAFB") // Light gray

	// Fallback container when the terminal size is unknown
	boxStyle = lipgloss.NewStyle().
			Padding(2, 3).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Align(lipgloss.Left)

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(textColor).
			PaddingBottom(1)

	// Menu styles
	choiceStyle = lipgloss.NewStyle()

	selectedStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	inputFieldStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)

	// Status styles
	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true).
			PaddingBottom(1)

	highlightStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	progressTextStyle = lipgloss.NewStyle().
				Foreground(secondaryColor)

	// Activity pane
	sessionActionStyle = lipgloss.NewStyle().
				Foreground(textColor).
				Italic(true)

	sessionStatusStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	sessionSuccessValueStyle = lipgloss.NewStyle().Foreground(successColor)
	sessionWarningValueStyle = lipgloss.NewStyle().Foreground(warningColor)
	sessionErrorValueStyle   = lipgloss.NewStyle().Foreground(errorColor)
	sessionNeutralValueStyle = lipgloss.NewStyle().Foreground(textColor)
)

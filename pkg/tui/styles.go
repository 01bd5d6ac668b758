package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Header bar style
	HeaderStyle = lipgloss.NewStyle().
			Background(ColorBgDark).
			Foreground(ColorFg).
			Padding(0, 2).
			Bold(true)

	// Footer bar style
	FooterStyle = lipgloss.NewStyle().
			Background(ColorBgDark).
			Foreground(ColorMuted).
			Padding(0, 2)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)

	// Pane focus styles - for two-pane layouts
	PaneFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.ThickBorder()).
				BorderForeground(ColorPrimary)

	PaneUnfocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorMuted)

	// Text styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorFgDim)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// Status styles
	StatusOK = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	StatusWarn = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	StatusError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	// List item styles
	SelectedStyle = lipgloss.NewStyle().
			Background(ColorBgLight).
			Foreground(ColorFg).
			Bold(true)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(ColorFgDim)

	// Help styles
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorFgPrimary = lipgloss.Color("#ABB2BF")
	ColorFgMuted   = lipgloss.Color("#636B78")
	ColorRed       = lipgloss.Color("#E06C75")
	ColorGreen     = lipgloss.Color("#98C379")
	ColorYellow    = lipgloss.Color("#E5C07B")
	ColorBlue      = lipgloss.Color("#61AFEF")
	ColorMagenta   = lipgloss.Color("#C678DD")
	ColorBorder    = lipgloss.Color("#3F4451")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true).
			MarginBottom(1)

	GroupTitleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	TaskStyle = lipgloss.NewStyle().
			Foreground(ColorFgPrimary).
			PaddingLeft(2)

	SelectedTaskStyle = lipgloss.NewStyle().
				Foreground(ColorYellow).
				Bold(true).
				PaddingLeft(2)

	CompletedTaskStyle = lipgloss.NewStyle().
				Foreground(ColorFgMuted).
				Strikethrough(true).
				PaddingLeft(2)

	DescriptionStyle = lipgloss.NewStyle().
				Foreground(ColorFgMuted).
				PaddingLeft(6)

	EmptyStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			Italic(true).
			PaddingLeft(2)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StatusSuccessStyle = lipgloss.NewStyle().Foreground(ColorGreen)
	StatusErrorStyle   = lipgloss.NewStyle().Foreground(ColorRed)
)

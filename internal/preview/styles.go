package preview

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Accent    = lipgloss.Color("#2AABEE")
	DimGray   = lipgloss.Color("#6B7280")
	LightGray = lipgloss.Color("#9CA3AF")
	White     = lipgloss.Color("#F9FAFB")
	Red       = lipgloss.Color("#EF4444")
)

var (
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(0, 1)

	ImageStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Italic(true)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(lipgloss.Color("#374151")).
			Padding(0, 1)

	LinkButtonStyle = ButtonStyle.
			Foreground(Accent)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(Accent)
)

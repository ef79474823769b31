package cli

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorError   = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F6D"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	pinStyle    = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	idStyle     = lipgloss.NewStyle().Foreground(colorDim).Width(8).Align(lipgloss.Right)
	countStyle  = lipgloss.NewStyle().Foreground(colorDim).Width(6).Align(lipgloss.Right)
	markerStyle = lipgloss.NewStyle().Width(2)
)

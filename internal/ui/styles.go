package ui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"})

	fileStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"})

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"})

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})

	meterLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3CE074"))
	meterMidStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0C648"))
	meterHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F26256"))
	meterPeakStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFCD2"))
)

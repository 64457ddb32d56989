package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/geofilter/internal/model"
)

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // violet
	Secondary = lipgloss.Color("#06B6D4") // cyan
	Success   = lipgloss.Color("#22C55E") // green
	Warning   = lipgloss.Color("#F59E0B") // amber
	Error     = lipgloss.Color("#EF4444") // red
	Muted     = lipgloss.Color("#6B7280") // gray
	Text      = lipgloss.Color("#E5E7EB") // light gray

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Label = lipgloss.NewStyle().
		Foreground(Muted).
		Width(12)

	Value = lipgloss.NewStyle().
		Foreground(Text)

	StatusBar = lipgloss.NewStyle().
			Foreground(Muted).
			MarginTop(1)

	Border = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(0, 2)

	FocusedBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 2)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarningText = lipgloss.NewStyle().
			Foreground(Warning)

	OKText = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Secondary).
		Padding(0, 1)

	Cell = lipgloss.NewStyle().
		Foreground(Text).
		Padding(0, 1)
)

// Status renders a run status in its color.
func Status(status string) string {
	if status == model.RunOK {
		return OKText.Render(status)
	}
	return ErrorText.Render(status)
}

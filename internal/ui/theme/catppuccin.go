package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Overlay0 = lipgloss.Color("#6c7086")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Yellow   = lipgloss.Color("#f9e2af")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")

	App = lipgloss.NewStyle().
		Background(Base).
		Foreground(Text).
		Padding(1, 2)

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(0, 1)

	PaneActive = Pane.BorderForeground(Lavender)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)

	Cursor = lipgloss.NewStyle().Background(Surface0).Bold(true)

	valueUnset    = lipgloss.NewStyle().Foreground(Overlay0)
	valueRecorded = lipgloss.NewStyle().Foreground(Green)
	valueManual   = lipgloss.NewStyle().Foreground(Yellow)
	valueError    = lipgloss.NewStyle().Foreground(Red).Bold(true)
	valueLive     = lipgloss.NewStyle().Foreground(Sapphire).Italic(true)
)

// Value picks the style for a value from its style tag.
func Value(tag string, live bool) lipgloss.Style {
	if live {
		return valueLive
	}
	switch tag {
	case "recorded":
		return valueRecorded
	case "manual":
		return valueManual
	case "error":
		return valueError
	default:
		return valueUnset
	}
}

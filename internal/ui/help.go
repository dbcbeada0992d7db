package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/mytop/internal/monitor"
)

// Help overlay styles
var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorInfo).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true).
			MarginBottom(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			Width(14)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// RenderHelp renders a box listing the keyboard shortcuts and the command
// grammar, centered in width x height.
func RenderHelp(width, height int) string {
	var lines []string
	lines = append(lines, helpTitleStyle.Render("Keyboard Shortcuts"))

	for _, binding := range monitor.HelpBindings {
		lines = append(lines, helpKeyStyle.Render(binding.Key)+helpDescStyle.Render(binding.Desc))
	}

	lines = append(lines, "")
	lines = append(lines, helpDescStyle.Render(monitor.CommandHelp))
	lines = append(lines, "")
	lines = append(lines, helpDescStyle.Render("Press h or ? to close"))

	helpBox := helpBoxStyle.Render(strings.Join(lines, "\n"))

	if width <= 0 || height <= 0 {
		return helpBox
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, helpBox)
}

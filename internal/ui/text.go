package ui

import "github.com/charmbracelet/lipgloss"

func errorText(s string) string {
	return lipgloss.NewStyle().Foreground(ColorError).Bold(true).Render(s)
}

func warningText(s string) string {
	return lipgloss.NewStyle().Foreground(ColorWarning).Render(s)
}

func successText(s string) string {
	return lipgloss.NewStyle().Foreground(ColorSuccess).Render(s)
}

func mutedText(s string) string {
	return lipgloss.NewStyle().Foreground(ColorMuted).Render(s)
}

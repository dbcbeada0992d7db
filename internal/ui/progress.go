package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Meter block characters.
const (
	meterFilled = '|'
	meterEmpty  = ' '
)

// RenderMeter draws an htop-style usage meter.
// The percent parameter should be 0-100 (values outside this range are clamped).
// Output format: CPU [|||||||||        67.0%]
// The bar is colored by ThresholdColor.
func RenderMeter(label string, percent float64, width int) string {
	if width <= 0 {
		return ""
	}

	// Clamp percent to 0-100 range
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}

	filledCount := int((percent / 100.0) * float64(width))
	emptyCount := width - filledCount

	var sb strings.Builder
	sb.Grow(width)
	for i := 0; i < filledCount; i++ {
		sb.WriteRune(meterFilled)
	}
	for i := 0; i < emptyCount; i++ {
		sb.WriteRune(meterEmpty)
	}

	labelStyle := lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)
	barStyle := lipgloss.NewStyle().Foreground(ThresholdColor(percent))

	return fmt.Sprintf("%s [%s %5.1f%%]", labelStyle.Render(label), barStyle.Render(sb.String()), percent)
}

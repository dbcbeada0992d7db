package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/mytop/internal/system"
)

// HeaderInfo contains information to display above the process table.
type HeaderInfo struct {
	Version  string
	Source   string // "local" or a host display name
	Position string // e.g. "2/3" when cycling through hosts
	Tasks    int
	Running  int
	Sort     string
	Interval time.Duration
	Taken    time.Time

	// System is only available for the local machine.
	System *system.Summary
}

// HeaderWidth is the default width of the header divider
const HeaderWidth = 60

// RenderHeader renders the dashboard header: title line, optional system
// meters, task counts and a divider.
func RenderHeader(info HeaderInfo, width int) string {
	if width <= 0 {
		width = HeaderWidth
	}

	titleStyle := lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)
	sourceStyle := lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	var output strings.Builder

	// Title line: "mytop v0.1.0 | web (2/3)"
	output.WriteString(titleStyle.Render("mytop"))
	if info.Version != "" {
		output.WriteString(" " + mutedStyle.Render(info.Version))
	}
	output.WriteString(" | " + sourceStyle.Render(info.Source))
	if info.Position != "" {
		output.WriteString(mutedStyle.Render(" (" + info.Position + ")"))
	}
	if !info.Taken.IsZero() {
		output.WriteString(mutedStyle.Render(" " + info.Taken.Format("15:04:05")))
	}
	output.WriteString("\n")

	if s := info.System; s != nil {
		meterWidth := width/2 - 16
		if meterWidth < 10 {
			meterWidth = 10
		}
		output.WriteString(RenderMeter("CPU", s.CPUPercent, meterWidth))
		output.WriteString("  ")
		output.WriteString(RenderMeter("Mem", s.MemPercent, meterWidth))
		output.WriteString("\n")
		output.WriteString(fmt.Sprintf("Host: %s  Uptime: %s  Load average: %.2f %.2f %.2f\n",
			s.Hostname, system.FormatUptime(s.Uptime), s.Load1, s.Load5, s.Load15))
	}

	output.WriteString(fmt.Sprintf("Tasks: %d, %d running  Sort: %s  Refresh: %s\n",
		info.Tasks, info.Running, info.Sort, info.Interval))

	// Divider line
	output.WriteString(mutedStyle.Render(strings.Repeat("━", width)))
	output.WriteString("\n")

	return output.String()
}

package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/mytop/internal/process"
)

// TableOptions controls how the process table is drawn.
type TableOptions struct {
	Sort process.SortMode
	// Seeded hides CPU% because the batch has no previous snapshot.
	Seeded bool
	// ShowShared is false for remote hosts, which don't report SHR.
	ShowShared bool
	// MaxRows limits the number of process rows; 0 means no limit.
	MaxRows int
	// Width truncates every line; 0 means no limit.
	Width int
}

// TableStyle provides consistent styling for the process table.
type TableStyle struct {
	Header lipgloss.Style
	Sorted lipgloss.Style
}

// DefaultTableStyle returns the default table styling.
func DefaultTableStyle() TableStyle {
	return TableStyle{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Background(ColorSecondary),
		Sorted: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Background(ColorInfo),
	}
}

// tableColumn defines a table column with name and width. A negative
// width left-aligns.
type tableColumn struct {
	Title string
	Width int
}

var processColumns = []tableColumn{
	{"PID", 7},
	{"USER", -9},
	{"PRI", 4},
	{"NI", 4},
	{"VIRT", 10},
	{"RES", 10},
	{"SHR", 10},
	{"S", 2},
	{"CPU%", 6},
	{"MEM%", 6},
	{"TIME+", 10},
	{"COMMAND", 0},
}

// RenderProcessTable renders samples, in the order given, as a header line
// followed by one line per process.
func RenderProcessTable(samples []process.Sample, opts TableOptions) string {
	style := DefaultTableStyle()

	var b strings.Builder
	b.WriteString(renderTableHeader(opts, style))
	b.WriteString("\n")

	rows := samples
	if opts.MaxRows > 0 && len(rows) > opts.MaxRows {
		rows = rows[:opts.MaxRows]
	}
	for i := range rows {
		b.WriteString(truncate(formatRow(&rows[i], opts), opts.Width))
		b.WriteString("\n")
	}

	return b.String()
}

func renderTableHeader(opts TableOptions, style TableStyle) string {
	sortTitle := opts.Sort.String()

	var b strings.Builder
	width := 0
	for i, col := range processColumns {
		cell := pad(col.Title, col.Width)
		if i < len(processColumns)-1 {
			cell += " "
		}
		if opts.Width > 0 && width+lipgloss.Width(cell) > opts.Width {
			cell = truncate(cell, opts.Width-width)
		}
		width += lipgloss.Width(cell)

		if col.Title == sortTitle {
			b.WriteString(style.Sorted.Render(cell))
		} else {
			b.WriteString(style.Header.Render(cell))
		}
		if opts.Width > 0 && width >= opts.Width {
			break
		}
	}
	return b.String()
}

func formatRow(s *process.Sample, opts TableOptions) string {
	cpu := "-"
	if !opts.Seeded {
		cpu = strconv.FormatFloat(s.CPUPercent, 'f', 1, 64)
	}
	shr := "-"
	if opts.ShowShared {
		shr = FormatSize(s.Shr)
	}

	cells := []string{
		strconv.Itoa(s.PID),
		s.User,
		strconv.FormatInt(s.Priority, 10),
		strconv.FormatInt(s.Nice, 10),
		FormatSize(s.Virt),
		FormatSize(s.Res),
		shr,
		string(s.State),
		cpu,
		strconv.FormatFloat(s.MemPercent, 'f', 1, 64),
		FormatCPUTime(s.CPUTime),
		s.Name,
	}

	var b strings.Builder
	for i, col := range processColumns {
		b.WriteString(pad(cells[i], col.Width))
		if i < len(processColumns)-1 {
			b.WriteString(" ")
		}
	}
	return b.String()
}

// FormatSize renders a byte count the way top does: short, binary units.
func FormatSize(n uint64) string {
	if n == 0 {
		return "0"
	}
	return strings.ReplaceAll(humanize.IBytes(n), " ", "")
}

// FormatCPUTime renders cumulative CPU time as minutes:seconds.hundredths.
func FormatCPUTime(d time.Duration) string {
	cs := int64(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d.%02d", cs/6000, (cs/100)%60, cs%100)
}

// pad aligns s in width columns: right-aligned for positive widths,
// left-aligned for negative, untouched for zero. Overlong values are cut.
func pad(s string, width int) string {
	switch {
	case width > 0:
		s = truncate(s, width)
		return strings.Repeat(" ", width-lipgloss.Width(s)) + s
	case width < 0:
		s = truncate(s, -width)
		return s + strings.Repeat(" ", -width-lipgloss.Width(s))
	default:
		return s
	}
}

// truncate cuts plain text to at most width cells; width <= 0 means no limit.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}

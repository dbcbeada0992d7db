package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
	"github.com/rileyhilliard/mytop/internal/monitor"
	"github.com/rileyhilliard/mytop/internal/system"
)

// Screen draws dashboard frames on a terminal. It implements
// monitor.Renderer.
type Screen struct {
	out     *termenv.Output
	w       io.Writer
	version string

	// Size reports the terminal dimensions; nil means 80x24.
	Size func() (width, height int)
	// Summary supplies whole-machine figures for the local view; nil
	// leaves them out.
	Summary func() (*system.Summary, error)
}

// NewScreen creates a screen writing to w.
func NewScreen(w io.Writer, version string) *Screen {
	return &Screen{
		out:     termenv.NewOutput(w),
		w:       w,
		version: version,
	}
}

// Enter switches to the alternate screen and hides the cursor.
func (s *Screen) Enter() {
	s.out.AltScreen()
	s.out.HideCursor()
}

// Leave shows the cursor and returns to the normal screen.
func (s *Screen) Leave() {
	s.out.ShowCursor()
	s.out.ExitAltScreen()
}

// Render implements monitor.Renderer.
func (s *Screen) Render(f monitor.Frame) error {
	width, height := 80, 24
	if s.Size != nil {
		width, height = s.Size()
	}

	s.out.ClearScreen()
	_, err := io.WriteString(s.w, toRaw(s.compose(f, width, height)))
	return err
}

// compose builds the full screen contents for f.
func (s *Screen) compose(f monitor.Frame, width, height int) string {
	if f.ShowHelp {
		return RenderHelp(width, height-1)
	}

	info := HeaderInfo{
		Version:  s.version,
		Source:   f.Source,
		Tasks:    f.Batch.Len(),
		Running:  f.Batch.Running(),
		Sort:     f.Sort.String(),
		Interval: f.Interval,
		Taken:    f.Batch.Taken,
	}
	if !f.Local && f.HostCount > 0 {
		info.Position = fmt.Sprintf("%d/%d", f.HostIndex+1, f.HostCount)
	}
	if f.Local && s.Summary != nil {
		if sum, err := s.Summary(); err == nil {
			info.System = sum
		}
	}

	var b strings.Builder
	header := RenderHeader(info, width)
	b.WriteString(header)

	if f.Status != "" {
		b.WriteString(RenderStatus(f.Status))
		b.WriteString("\n")
	}

	// Leave room for the header, the table header and the status line.
	rows := height - strings.Count(header, "\n") - 3
	if rows < 1 {
		rows = 1
	}
	b.WriteString(RenderProcessTable(f.Batch.Samples, TableOptions{
		Sort:       f.Sort,
		Seeded:     f.Batch.Seeded,
		ShowShared: f.Local,
		MaxRows:    rows,
		Width:      width,
	}))

	return b.String()
}

// RenderStatus renders a one-line status message, e.g. for a disconnected host.
func RenderStatus(msg string) string {
	if msg == monitor.StatusDisconnected {
		return errorText(SymbolFail + " " + msg)
	}
	return warningText(msg)
}

// toRaw converts line endings for a terminal in raw mode, where "\n" only
// moves the cursor down.
func toRaw(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
)

// ConnectionAttempt represents a single host connection attempt.
type ConnectionAttempt struct {
	Host    string
	Status  ConnectionStatus
	Latency time.Duration
	Error   string
}

// ConnectionStatus represents the outcome of a connection attempt.
type ConnectionStatus int

const (
	// StatusTrying indicates the connection attempt is in progress.
	StatusTrying ConnectionStatus = iota
	// StatusSuccess indicates the connection attempt succeeded.
	StatusSuccess
	// StatusTimeout indicates the connection timed out.
	StatusTimeout
	// StatusRefused indicates the connection was refused.
	StatusRefused
	// StatusUnreachable indicates the host was unreachable.
	StatusUnreachable
	// StatusAuthFailed indicates authentication failed.
	StatusAuthFailed
	// StatusFailed indicates a generic failure.
	StatusFailed
	// StatusHostKey indicates the server's host key isn't trusted.
	StatusHostKey
)

// HostKeyHint is printed under the summary when a host was rejected for its
// host key.
const HostKeyHint = "Host keys are checked against ~/.ssh/known_hosts. Record them with ssh-keyscan, " +
	"or rerun with --insecure (or set ssh.strict_host_key_checking: false) to skip the check."

// String returns a human-readable description of the status.
func (s ConnectionStatus) String() string {
	switch s {
	case StatusTrying:
		return "trying"
	case StatusSuccess:
		return "connected"
	case StatusTimeout:
		return "timeout"
	case StatusRefused:
		return "refused"
	case StatusUnreachable:
		return "unreachable"
	case StatusAuthFailed:
		return "auth failed"
	case StatusFailed:
		return "failed"
	case StatusHostKey:
		return "host key not trusted"
	default:
		return "unknown"
	}
}

// ClassifyError maps a connection error to a status by its message.
func ClassifyError(err error) ConnectionStatus {
	if err == nil {
		return StatusSuccess
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "host key"):
		return StatusHostKey
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		return StatusTimeout
	case strings.Contains(msg, "connection refused"):
		return StatusRefused
	case strings.Contains(msg, "no route to host") || strings.Contains(msg, "network is unreachable") ||
		strings.Contains(msg, "no such host"):
		return StatusUnreachable
	case strings.Contains(msg, "unable to authenticate") || strings.Contains(msg, "password rejected"):
		return StatusAuthFailed
	default:
		return StatusFailed
	}
}

// ConnectionDisplay renders startup connection progress: a spinner while a
// host is being dialed and one result line per host.
//
// Example output:
//
//	● web (10.0.0.5)                                            0.3s
//	○ db (10.0.0.6)                                        auth failed
//	✗ 1 of 2 hosts unavailable
type ConnectionDisplay struct {
	mu       sync.Mutex
	w        io.Writer
	attempts []ConnectionAttempt
	spin     *spinner.Spinner
}

// NewConnectionDisplay creates a connection display writing to w.
func NewConnectionDisplay(w io.Writer) *ConnectionDisplay {
	return &ConnectionDisplay{
		w:        w,
		attempts: make([]ConnectionAttempt, 0),
		spin:     spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w)),
	}
}

// Trying shows the spinner for host. The spinner only animates when w is
// a terminal.
func (cd *ConnectionDisplay) Trying(host string) {
	cd.mu.Lock()
	defer cd.mu.Unlock()

	cd.spin.Stop()
	cd.spin.Suffix = " Connecting to " + host + "..."
	cd.spin.Start()
}

// AddAttempt records and displays a connection attempt.
func (cd *ConnectionDisplay) AddAttempt(host string, status ConnectionStatus, latency time.Duration, errMsg string) {
	cd.mu.Lock()
	defer cd.mu.Unlock()

	cd.spin.Stop()

	attempt := ConnectionAttempt{
		Host:    host,
		Status:  status,
		Latency: latency,
		Error:   errMsg,
	}
	cd.attempts = append(cd.attempts, attempt)

	fmt.Fprintln(cd.w, renderAttempt(attempt, true))
}

// Finish stops the spinner and prints a one-line summary.
func (cd *ConnectionDisplay) Finish() {
	cd.mu.Lock()
	defer cd.mu.Unlock()

	cd.spin.Stop()

	failed, hostKey := 0, false
	for _, a := range cd.attempts {
		if a.Status != StatusSuccess {
			failed++
		}
		if a.Status == StatusHostKey {
			hostKey = true
		}
	}

	switch {
	case len(cd.attempts) == 0:
		return
	case failed == 0:
		fmt.Fprintf(cd.w, "%s all %d hosts connected\n", successText(SymbolSuccess), len(cd.attempts))
	default:
		fmt.Fprintf(cd.w, "%s %d of %d hosts unavailable\n", errorText(SymbolFail), failed, len(cd.attempts))
		if hostKey {
			fmt.Fprintf(cd.w, "  %s\n", mutedText(HostKeyHint))
		}
	}
}

// Attempts returns a copy of all recorded connection attempts.
func (cd *ConnectionDisplay) Attempts() []ConnectionAttempt {
	cd.mu.Lock()
	defer cd.mu.Unlock()

	result := make([]ConnectionAttempt, len(cd.attempts))
	copy(result, cd.attempts)
	return result
}

// HasFailedAttempts returns true if any attempt failed.
func (cd *ConnectionDisplay) HasFailedAttempts() bool {
	cd.mu.Lock()
	defer cd.mu.Unlock()

	for _, a := range cd.attempts {
		if a.Status != StatusSuccess && a.Status != StatusTrying {
			return true
		}
	}
	return false
}

// RenderAttemptLine returns a formatted attempt line without colors.
func RenderAttemptLine(host string, status ConnectionStatus, latency time.Duration, errMsg string) string {
	return renderAttempt(ConnectionAttempt{Host: host, Status: status, Latency: latency, Error: errMsg}, false)
}

// renderAttempt formats one attempt.
// Format:   ○ db                                               auth failed
func renderAttempt(attempt ConnectionAttempt, styled bool) string {
	symbol := SymbolPending
	symbolColor := ColorMuted
	var status string

	switch attempt.Status {
	case StatusSuccess:
		symbol = SymbolComplete
		symbolColor = ColorSuccess
		status = formatDuration(attempt.Latency)
	case StatusTimeout:
		status = fmt.Sprintf("timeout (%s)", formatDuration(attempt.Latency))
	case StatusFailed:
		status = "failed"
		if attempt.Error != "" {
			status = attempt.Error
		}
	default:
		status = attempt.Status.String()
	}

	// Align status on the right; target width for host + padding is ~50 chars
	padding := 50 - lipgloss.Width(attempt.Host)
	if padding < 2 {
		padding = 2
	}

	if styled {
		symbol = lipgloss.NewStyle().Foreground(symbolColor).Render(symbol)
		status = mutedText(status)
	}

	return fmt.Sprintf("  %s %s%s%s", symbol, attempt.Host, strings.Repeat(" ", padding), status)
}

// formatDuration formats a duration for display (e.g., "0.3s", "2.1s").
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}

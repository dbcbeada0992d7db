package monitor

import (
	"sync"

	"golang.org/x/term"
)

// RawMode is the part of the terminal the loop needs: switch to raw mode
// for single-key input and back to cooked mode for line input.
type RawMode interface {
	MakeRaw() error
	Restore() error
}

// Terminal switches a file descriptor between raw and cooked mode and
// remembers the cooked state so it can always be put back.
type Terminal struct {
	mu    sync.Mutex
	fd    int
	saved *term.State
}

// NewTerminal wraps fd, usually os.Stdin.Fd().
func NewTerminal(fd int) *Terminal {
	return &Terminal{fd: fd}
}

// IsTerminal reports whether fd is a terminal.
func (t *Terminal) IsTerminal() bool {
	return term.IsTerminal(t.fd)
}

// MakeRaw puts the terminal in raw mode. Calling it while already raw is a
// no-op.
func (t *Terminal) MakeRaw() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.saved != nil {
		return nil
	}
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return err
	}
	t.saved = state
	return nil
}

// Restore returns the terminal to the state it had before MakeRaw. It is
// safe to call any number of times.
func (t *Terminal) Restore() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.saved == nil {
		return nil
	}
	err := term.Restore(t.fd, t.saved)
	t.saved = nil
	return err
}

// Raw reports whether the terminal is currently in raw mode.
func (t *Terminal) Raw() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saved != nil
}

// Size returns the terminal width and height, falling back to 80x24.
func (t *Terminal) Size() (width, height int) {
	w, h, err := term.GetSize(t.fd)
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

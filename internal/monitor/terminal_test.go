package monitor

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal_NotATTY(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "notatty")
	require.NoError(t, err)
	defer f.Close()

	term := NewTerminal(int(f.Fd()))
	assert.False(t, term.IsTerminal())
	assert.Error(t, term.MakeRaw(), "a regular file can't enter raw mode")
	assert.False(t, term.Raw())
	assert.NoError(t, term.Restore(), "restoring without raw mode is a no-op")

	w, h := term.Size()
	assert.Equal(t, 80, w)
	assert.Equal(t, 24, h)
}

package cli

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestVersionOutput(t *testing.T) {
	originalVersion, originalCommit, originalDate := version, commit, date
	defer SetVersionInfo(originalVersion, originalCommit, originalDate)

	SetVersionInfo("1.2.3", "abc1234", "2025-01-08T12:00:00Z")

	tests := []struct {
		name     string
		short    bool
		contains []string
		lines    int
	}{
		{
			name:  "full",
			short: false,
			contains: []string{
				"mytop v1.2.3",
				"commit: abc1234",
				"built: 2025-01-08T12:00:00Z",
				"go: " + runtime.Version(),
				"os/arch: " + runtime.GOOS + "/" + runtime.GOARCH,
			},
			lines: 5,
		},
		{
			name:     "short",
			short:    true,
			contains: []string{"1.2.3"},
			lines:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetOut(&buf)

			printVersion(cmd, tt.short)

			out := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), tt.lines)
		})
	}
}

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dev", "dev"},
		{"", ""},
		{"1.0.0", "v1.0.0"},
		{"v2.1.0", "v2.1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, formatVersion(tt.in))
		})
	}
}

func TestGetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	version = "9.9.9"
	assert.Equal(t, "9.9.9", GetVersion())
}

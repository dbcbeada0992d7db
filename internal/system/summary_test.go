package system

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "0m"},
		{5 * time.Minute, "5m"},
		{3*time.Hour + 7*time.Minute, "3h 7m"},
		{50*time.Hour + 1*time.Minute, "2d 2h 1m"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUptime(tt.in))
		})
	}
}

func TestLocal(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("procfs-backed figures are only checked on linux")
	}

	s, err := Local()
	require.NoError(t, err)
	assert.NotEmpty(t, s.Hostname)
	assert.GreaterOrEqual(t, s.MemPercent, 0.0)
	assert.LessOrEqual(t, s.MemPercent, 100.0)
	assert.GreaterOrEqual(t, s.CPUPercent, 0.0)
}

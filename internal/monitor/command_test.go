package monitor

import (
	"strings"
	"testing"

	"github.com/rileyhilliard/mytop/internal/monitor/parsers"
	"github.com/stretchr/testify/assert"
)

func TestListingCommand(t *testing.T) {
	assert.True(t, strings.HasPrefix(ListingCommand, "ps -A -o "))

	cols := strings.Split(strings.Fields(ListingCommand)[3], ",")
	assert.Len(t, cols, parsers.PSColumns, "every requested column must be parsed")
	assert.Equal(t, "pid", cols[0])
	assert.Equal(t, "comm", cols[len(cols)-1], "the command name must come last so spaces survive")
}

func TestKillCommand(t *testing.T) {
	tests := []struct {
		sig  int
		pid  int
		want string
	}{
		{15, 1234, "kill -15 1234"},
		{19, 1, "kill -19 1"},
		{18, 42, "kill -18 42"},
		{1, 99999, "kill -1 99999"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, KillCommand(tt.sig, tt.pid))
		})
	}
}

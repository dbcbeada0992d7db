package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/mytop/internal/system"
	"github.com/stretchr/testify/assert"
)

func TestRenderHeader_Remote(t *testing.T) {
	out := RenderHeader(HeaderInfo{
		Version:  "v1.2.3",
		Source:   "web",
		Position: "1/2",
		Tasks:    120,
		Running:  3,
		Sort:     "MEM%",
		Interval: 5 * time.Second,
	}, 40)

	assert.Contains(t, out, "mytop")
	assert.Contains(t, out, "v1.2.3")
	assert.Contains(t, out, "web")
	assert.Contains(t, out, "(1/2)")
	assert.Contains(t, out, "Tasks: 120, 3 running")
	assert.Contains(t, out, "Sort: MEM%")
	assert.Contains(t, out, "Refresh: 5s")
	assert.Contains(t, out, strings.Repeat("━", 40))
	assert.NotContains(t, out, "Load average", "remote hosts have no system summary")
}

func TestRenderHeader_Local(t *testing.T) {
	out := RenderHeader(HeaderInfo{
		Source: "local",
		System: &system.Summary{
			Hostname:   "box",
			Uptime:     3 * time.Hour,
			Load1:      0.5,
			Load5:      0.25,
			Load15:     0.125,
			CPUPercent: 42,
			MemPercent: 81,
		},
	}, 0)

	assert.Contains(t, out, "Host: box")
	assert.Contains(t, out, "Uptime: 3h 0m")
	assert.Contains(t, out, "Load average: 0.50 0.25 0.12")
	assert.Contains(t, out, "42.0%")
	assert.Contains(t, out, "81.0%")
	assert.Contains(t, out, strings.Repeat("━", HeaderWidth))
}

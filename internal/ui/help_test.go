package ui

import (
	"testing"

	"github.com/rileyhilliard/mytop/internal/monitor"
	"github.com/stretchr/testify/assert"
)

func TestRenderHelp(t *testing.T) {
	out := RenderHelp(0, 0)

	assert.Contains(t, out, "Keyboard Shortcuts")
	for _, b := range monitor.HelpBindings {
		assert.Contains(t, out, b.Desc)
	}
	assert.Contains(t, out, "kill <pid>")
}

func TestRenderHelp_Centered(t *testing.T) {
	out := RenderHelp(120, 40)
	assert.Contains(t, out, "Keyboard Shortcuts")
}

package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestThresholdColor(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		want    lipgloss.Color
	}{
		{"idle", 0, ColorSuccess},
		{"moderate", 59.9, ColorSuccess},
		{"warning boundary", 60, ColorWarning},
		{"busy", 79.9, ColorWarning},
		{"critical boundary", 80, ColorError},
		{"saturated", 100, ColorError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ThresholdColor(tt.percent))
		})
	}
}

package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderStatus(t *testing.T) {
	tests := []struct {
		phase string
		icon  string
	}{
		{"running", "→"},
		{"done", "✔"},
		{"warning", "!"},
		{"error", "✘"},
	}
	for _, tt := range tests {
		t.Run(tt.phase, func(t *testing.T) {
			result := RenderStatus(tt.phase, "Extracting Maven")

			assert.Contains(t, result, tt.icon)
			assert.Contains(t, result, "Extracting Maven")
		})
	}
}

func TestRenderStatus_Unknown(t *testing.T) {
	result := RenderStatus("", "plain")

	assert.Contains(t, result, "plain")
	assert.NotContains(t, result, "✔")
}

package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{200 * 1024 * 1024, "200.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.n))
		})
	}
}

func TestRenderProgress(t *testing.T) {
	bar := NewProgressBar(20)

	t.Run("known total", func(t *testing.T) {
		result := RenderProgress(bar, "fernflower.jar", 512, 1024)

		assert.Contains(t, result, "fernflower.jar")
		assert.Contains(t, result, "512 B / 1.0 KiB")
		assert.Contains(t, result, "50%")
	})

	t.Run("unknown total", func(t *testing.T) {
		result := RenderProgress(bar, "LuxDelux-linux.tgz", 2048, 0)

		assert.Contains(t, result, "LuxDelux-linux.tgz")
		assert.Contains(t, result, "2.0 KiB")
		assert.NotContains(t, result, "%")
	})
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlamourRenderer(t *testing.T) {
	r := NewGlamourRenderer(false)

	out, err := r.Render("# LUXXIT BUILD SUCCESS!\n\nRun `luxxit.sh` to start the server.", 80)

	require.NoError(t, err)
	assert.Contains(t, out, "LUXXIT BUILD SUCCESS!")
	assert.Contains(t, out, "luxxit.sh")
}

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	prev := version
	version = "1.2.3"
	t.Cleanup(func() { version = prev })

	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "corpus version 1.2.3\n", out)
}

func TestVersionCommandDefault(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "corpus version dev")
}

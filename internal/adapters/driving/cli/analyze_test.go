package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"main.go", "util.go", "readme.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("content"), 0o644))
	}

	out, err := runCommand(t, "analyze", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Scanned 3 files")
	assert.Contains(t, out, "code")
	assert.Contains(t, out, "documents")
	assert.Contains(t, out, "Suggested verticals:")
	assert.Contains(t, out, "cod (code): 2 files, chunk size 3000, overlap 200")
}

func TestAnalyzeCommandMissingRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("x"), 0o644))

	out, err := runCommand(t, "analyze", dir, filepath.Join(dir, "missing"))
	require.NoError(t, err)

	assert.Contains(t, out, "warning:")
	assert.Contains(t, out, "Scanned 1 files")
}

func TestAnalyzeCommandNoArgs(t *testing.T) {
	_, err := runCommand(t, "analyze")
	require.Error(t, err)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "2.0 KiB", formatSize(2048))
	assert.Equal(t, "1.5 MiB", formatSize(3*512*1024))
}

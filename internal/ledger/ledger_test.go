package ledger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idyllic-ai/trademark-indexer/internal/ledger"
)

func TestOpenMissingFile(t *testing.T) {
	l, err := ledger.Open(filepath.Join(t.TempDir(), "processed.txt"))
	require.NoError(t, err)
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.IsProcessed("apc240101.zip"))
}

func TestMarkProcessed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.txt")

	l, err := ledger.Open(path)
	require.NoError(t, err)

	require.NoError(t, l.MarkProcessed("apc240101.zip"))
	require.NoError(t, l.MarkProcessed("apc240102.zip"))

	assert.True(t, l.IsProcessed("apc240101.zip"))
	assert.True(t, l.IsProcessed("apc240102.zip"))
	assert.False(t, l.IsProcessed("apc240103.zip"))
	assert.Equal(t, 2, l.Len())

	content, err := os.ReadFile(path) //nolint:gosec
	require.NoError(t, err)
	assert.Equal(t, "apc240101.zip\napc240102.zip\n", string(content))
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.txt")

	l, err := ledger.Open(path)
	require.NoError(t, err)
	require.NoError(t, l.MarkProcessed("apc240101.zip"))

	reopened, err := ledger.Open(path)
	require.NoError(t, err)
	assert.True(t, reopened.IsProcessed("apc240101.zip"))
	assert.Equal(t, 1, reopened.Len())
}

func TestOpenSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.txt")
	require.NoError(t, os.WriteFile(path, []byte("apc240101.zip\n\n  \napc240102.zip\n"), 0o644))

	l, err := ledger.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Len())
	assert.True(t, l.IsProcessed("apc240102.zip"))
}

package domain_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idyllic-ai/trademark-indexer/internal/domain"
)

func writeStatusFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "live_codes.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAliveStatuses(t *testing.T) {
	path := writeStatusFile(t, `600 Abandoned - Incomplete response Dead
630 New application - record initialized Live

700 Registered Live
710 Cancelled - Section 8 Dead
`)

	statuses, err := domain.LoadAliveStatuses(path)
	require.NoError(t, err)

	assert.Len(t, statuses, 2)
	assert.True(t, statuses.Contains(630))
	assert.True(t, statuses.Contains(700))
	assert.False(t, statuses.Contains(600))
	assert.False(t, statuses.Contains(710))
	assert.False(t, statuses.Contains(999))
}

func TestLoadAliveStatusesInvalidCode(t *testing.T) {
	path := writeStatusFile(t, "not-a-code Registered Live\n")

	_, err := domain.LoadAliveStatuses(path)
	assert.Error(t, err)
}

func TestLoadAliveStatusesMissingFile(t *testing.T) {
	_, err := domain.LoadAliveStatuses(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

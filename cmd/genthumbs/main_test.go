package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlbumDirs(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"trip/thumbs/day1", "trip/day1", "city"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(d)), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "trip", "a.jpg"), nil, 0o644))

	got, err := albumDirs(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		root,
		filepath.Join(root, "city"),
		filepath.Join(root, "trip"),
		filepath.Join(root, "trip", "day1"),
	}, got)
}

func TestAlbumDirsMissingRoot(t *testing.T) {
	_, err := albumDirs(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

package testutil

import (
	"io/fs"
	"testing"

	"github.com/andisab/mise-en-place/pkg/filesystem"
	"github.com/andisab/mise-en-place/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertFileContent checks that path holds exactly expected
func AssertFileContent(t *testing.T, fsys types.FS, path, expected string, msgAndArgs ...interface{}) {
	t.Helper()

	data, err := fsys.ReadFile(path)
	require.NoError(t, err, msgAndArgs...)
	assert.Equal(t, expected, string(data), msgAndArgs...)
}

// AssertFileExists checks that path exists
func AssertFileExists(t *testing.T, fsys types.FS, path string, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, filesystem.Exists(fsys, path), msgAndArgs...)
}

// AssertNoFile checks that path does not exist
func AssertNoFile(t *testing.T, fsys types.FS, path string, msgAndArgs ...interface{}) {
	t.Helper()
	assert.False(t, filesystem.Exists(fsys, path), msgAndArgs...)
}

// AssertMode checks the permission bits of path
func AssertMode(t *testing.T, fsys types.FS, path string, mode fs.FileMode) {
	t.Helper()

	info, err := fsys.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, mode, info.Mode().Perm(), "mode of %s", path)
}

// AssertNoTempFiles checks that dir holds no leftover atomic-write temp files
func AssertNoTempFiles(t *testing.T, fsys types.FS, dir string) {
	t.Helper()

	entries, err := fsys.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".mep-tmp-", "leftover temp file in %s", dir)
	}
}

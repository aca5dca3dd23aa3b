// pkg/filesystem/atomic_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: afero memory filesystem, real temp dirs
// PURPOSE: Verify atomic writes, copies and text detection

package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/andisab/mise-en-place/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomic(t *testing.T) {
	fsys := filesystem.NewMemory()

	t.Run("creates_file_and_parents", func(t *testing.T) {
		path := "/home/u/.config/app/settings.conf"
		require.NoError(t, filesystem.WriteAtomic(fsys, path, []byte("a=1\n"), 0600))

		data, err := fsys.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "a=1\n", string(data))

		info, err := fsys.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("replaces_existing_content", func(t *testing.T) {
		path := "/home/u/.zshrc"
		require.NoError(t, fsys.WriteFile(path, []byte("old"), 0644))
		require.NoError(t, filesystem.WriteAtomic(fsys, path, []byte("new"), 0644))

		data, err := fsys.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("leaves_no_temp_files", func(t *testing.T) {
		entries, err := fsys.ReadDir("/home/u")
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".mep-tmp-")
		}
	})
}

func TestWriteAtomicOnDisk(t *testing.T) {
	fsys := filesystem.NewOS()
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	require.NoError(t, filesystem.WriteAtomic(fsys, path, []byte("hello"), 0640))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCopyFile(t *testing.T) {
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll("/repo", 0755))
	require.NoError(t, fsys.WriteFile("/repo/script.sh", []byte("#!/bin/sh\n"), 0755))

	require.NoError(t, filesystem.CopyFile(fsys, "/repo/script.sh", "/home/u/bin/script.sh"))

	info, err := fsys.Stat("/home/u/bin/script.sh")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	err = filesystem.CopyFile(fsys, "/repo", "/home/u/repo")
	assert.Error(t, err)
}

func TestExistsAndIsDir(t *testing.T) {
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll("/a/b", 0755))
	require.NoError(t, fsys.WriteFile("/a/file", []byte("x"), 0644))

	assert.True(t, filesystem.Exists(fsys, "/a/file"))
	assert.True(t, filesystem.Exists(fsys, "/a/b"))
	assert.False(t, filesystem.Exists(fsys, "/a/missing"))
	assert.True(t, filesystem.IsDir(fsys, "/a/b"))
	assert.False(t, filesystem.IsDir(fsys, "/a/file"))
}

func TestIsText(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"plain_ascii", []byte("export PATH=$HOME/bin\n"), true},
		{"utf8", []byte("café ☕"), true},
		{"empty", []byte{}, true},
		{"nul_byte", []byte{'a', 0, 'b'}, false},
		{"invalid_utf8", []byte{0xff, 0xfe, 0xfd}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filesystem.IsText(tt.data))
		})
	}
}

func TestWalkFiles(t *testing.T) {
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll("/repo/nvim/lua/plugins", 0755))
	require.NoError(t, fsys.WriteFile("/repo/nvim/init.lua", []byte("x"), 0644))
	require.NoError(t, fsys.WriteFile("/repo/nvim/lua/plugins/a.lua", []byte("x"), 0644))
	require.NoError(t, fsys.WriteFile("/repo/nvim/lua/opts.lua", []byte("x"), 0644))

	files, err := filesystem.WalkFiles(fsys, "/repo/nvim")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"init.lua",
		filepath.Join("lua", "opts.lua"),
		filepath.Join("lua", "plugins", "a.lua"),
	}, files)
}

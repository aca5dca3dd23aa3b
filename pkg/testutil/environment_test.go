// pkg/testutil/environment_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Verify the test environment builder and fault injection

package testutil_test

import (
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/andisab/mise-en-place/pkg/filesystem"
	"github.com/andisab/mise-en-place/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestEnvironment(t *testing.T) {
	for _, envType := range []testutil.EnvType{testutil.EnvMemoryOnly, testutil.EnvIsolated} {
		env := testutil.NewTestEnvironment(t, envType)

		assert.Equal(t, env.Root, env.Paths.DotfilesRoot())
		assert.Equal(t, env.Home, env.Paths.Home())
		assert.Equal(t, env.BackupDir, env.Paths.BackupDir())
		assert.Equal(t, env.OverlayDir, env.Paths.OverlayDir())
		assert.True(t, filesystem.IsDir(env.FS, env.Root))
		assert.True(t, filesystem.IsDir(env.FS, env.Home))
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)

	manifest := env.WriteManifest("zsh/.zshrc:.zshrc", "custom:work:.gitconfig")
	testutil.AssertFileContent(t, env.FS, manifest, "zsh/.zshrc:.zshrc\ncustom:work:.gitconfig\n")

	env.AddRepoFile("zsh/.zshrc", "repo")
	env.AddOverlay("work", "overlay")
	env.AddSystemFile(".zshrc", "system")

	testutil.AssertFileContent(t, env.FS, filepath.Join(env.Root, "zsh/.zshrc"), "repo")
	testutil.AssertFileContent(t, env.FS, filepath.Join(env.OverlayDir, "work"), "overlay")
	assert.Equal(t, "system", env.ReadSystemFile(".zshrc"))
	assert.Equal(t, "", env.ReadSystemFile(".absent"))

	env.WithFileTree(testutil.FileTree{
		"nvim": testutil.FileTree{
			"init.lua":     "-- init",
			"lua/opts.lua": "-- opts",
		},
	})
	testutil.AssertFileExists(t, env.FS, filepath.Join(env.Root, "nvim/lua/opts.lua"))
}

func TestFaultyFS(t *testing.T) {
	boom := stderrors.New("boom")
	fsys := testutil.NewFaultyFS(filesystem.NewMemory()).FailRenamesInto("/locked", boom)
	require.NoError(t, fsys.MkdirAll("/locked", 0755))
	require.NoError(t, fsys.MkdirAll("/open", 0755))

	err := filesystem.WriteAtomic(fsys, "/locked/file", []byte("x"), 0644)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	testutil.AssertNoFile(t, fsys, "/locked/file")
	testutil.AssertNoTempFiles(t, fsys, "/locked")

	require.NoError(t, filesystem.WriteAtomic(fsys, "/open/file", []byte("x"), 0644))
	testutil.AssertFileContent(t, fsys, "/open/file", "x")
}

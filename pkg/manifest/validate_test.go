// pkg/manifest/validate_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: afero memory filesystem
// PURPOSE: Verify batch validation of sources, overlays and destinations

package manifest_test

import (
	"strings"
	"testing"

	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/filesystem"
	"github.com/andisab/mise-en-place/pkg/manifest"
	"github.com/andisab/mise-en-place/pkg/paths"
	"github.com/andisab/mise-en-place/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, files ...string) (types.FS, *paths.Paths) {
	t.Helper()
	fsys := filesystem.NewMemory()
	for _, f := range files {
		require.NoError(t, filesystem.WriteAtomic(fsys, f, []byte("content\n"), 0644))
	}
	p, err := paths.New(paths.Options{Root: "/repo", Home: "/home/u", OverlayDir: "/overlay", BackupDir: "/bak"})
	require.NoError(t, err)
	return fsys, p
}

func parse(t *testing.T, input string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse(strings.NewReader(input))
	require.NoError(t, err)
	return m
}

func TestValidateReportsOnlyTheMissingSecondEntry(t *testing.T) {
	fsys, p := setup(t, "/repo/zsh/.zshrc")
	m := parse(t, "zsh/.zshrc:.zshrc\nvim/.vimrc:.vimrc\n")

	report := manifest.Validate(fsys, m, p)

	assert.False(t, report.OK())
	require.Len(t, report.Errors, 1)
	assert.True(t, errors.IsErrorCode(report.Errors[0], errors.ErrValidation))
	assert.Contains(t, report.Errors[0].Error(), "line 2")
	assert.Contains(t, report.Errors[0].Error(), "vim/.vimrc")
}

func TestValidateCollectsAllDefects(t *testing.T) {
	fsys, p := setup(t, "/repo/git/.gitconfig")
	m := parse(t, strings.Join([]string{
		"zsh/.zshrc:.zshrc",              // missing source
		"git/.gitconfig:.gitconfig",      // fine
		"custom:work:.gitconfig",         // overlay missing, fallback exists
		"custom:ssh:.ssh/config",         // overlay missing, no fallback
		"git/.gitconfig:/etc/gitconfig",  // destination outside home
		"vim/.vimrc:.vimrc",              // missing source
	}, "\n"))

	report := manifest.Validate(fsys, m, p)

	assert.Len(t, report.Errors, 4)
	assert.Equal(t, 4, report.Errors.Count(errors.ErrValidation))

	msgs := report.Errors.Error()
	assert.Contains(t, msgs, "line 1: source not found: zsh/.zshrc")
	assert.Contains(t, msgs, "line 4: custom file not found: ssh")
	assert.Contains(t, msgs, "line 5: invalid destination")
	assert.Contains(t, msgs, "line 6: source not found: vim/.vimrc")

	warnings := report.Warnings.Error()
	assert.Contains(t, warnings, "line 3: custom file not found: work")
	assert.Contains(t, warnings, "repository version git/.gitconfig will be used")
	assert.Contains(t, warnings, "line 5: git/.gitconfig is also mapped on line 2")
}

func TestValidateDuplicateDestinationIsWarning(t *testing.T) {
	fsys, p := setup(t, "/repo/a", "/repo/b")
	m := parse(t, "a:.zshrc\nb:.zshrc\n")

	report := manifest.Validate(fsys, m, p)

	assert.True(t, report.OK())
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0].Error(), "the later entry wins")
}

func TestValidateOverlayPresent(t *testing.T) {
	fsys, p := setup(t, "/overlay/work:gitconfig")
	m := parse(t, "custom:work:gitconfig:.gitconfig\n")

	report := manifest.Validate(fsys, m, p)
	assert.True(t, report.OK())
	assert.Empty(t, report.Warnings)
}

func TestValidateEmptyManifest(t *testing.T) {
	fsys, p := setup(t)
	report := manifest.Validate(fsys, parse(t, "# nothing\n\n"), p)

	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].Error(), "no file mappings")
}

func TestLoad(t *testing.T) {
	fsys, _ := setup(t)

	_, err := manifest.Load(fsys, "/repo/dotfiles.conf")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfig))

	require.NoError(t, fsys.WriteFile("/repo/dotfiles.conf", []byte("a:.a\nbroken\n"), 0644))
	m, err := manifest.Load(fsys, "/repo/dotfiles.conf")
	require.Error(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "/repo/dotfiles.conf", m.Path)
	assert.Len(t, m.Entries, 1)
}

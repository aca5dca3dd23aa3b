// pkg/template/processor_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Memory filesystem, FaultyFS, real temp dirs
// PURPOSE: Verify atomic template processing, backup and rollback

package template_test

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andisab/mise-en-place/pkg/backup"
	"github.com/andisab/mise-en-place/pkg/clock"
	"github.com/andisab/mise-en-place/pkg/environment"
	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/filesystem"
	"github.com/andisab/mise-en-place/pkg/template"
	"github.com/andisab/mise-en-place/pkg/testutil"
	"github.com/andisab/mise-en-place/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tplPath = "/repo/git/gitconfig"
	outPath = "/home/u/.gitconfig"
	bakDir  = "/backups"
)

func memEnvFS(t *testing.T, files map[string]string) types.FS {
	t.Helper()
	fsys := filesystem.NewMemory()
	for path, content := range files {
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, fsys.WriteFile(path, []byte(content), 0644))
	}
	return fsys
}

func newProcessor(fsys types.FS) *template.Processor {
	clk := clock.NewFake(time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local))
	return template.NewProcessor(fsys, backup.New(fsys, bakDir, clk))
}

var gitEnv = environment.FromMap(map[string]string{
	"EMAIL": "ada@example.com",
	"NAME":  "Ada",
}, "test")

func TestProcessWritesRenderedOutput(t *testing.T) {
	fsys := memEnvFS(t, map[string]string{
		tplPath: "[user]\n  name = ${NAME}\n  email = ${EMAIL}\n  key = ${SIGNING_KEY}\n",
	})
	require.NoError(t, fsys.MkdirAll("/home/u", 0755))

	res := newProcessor(fsys).Process(tplPath, gitEnv, outPath)
	require.NoError(t, res.Err)
	assert.True(t, res.Success)
	assert.Nil(t, res.Backup, "new destination needs no backup")
	assert.Equal(t, []string{"EMAIL", "NAME", "SIGNING_KEY"}, res.Variables)
	assert.Equal(t, []string{"SIGNING_KEY"}, res.Missing)
	require.Len(t, res.Warnings, 1)
	assert.True(t, errors.IsErrorCode(res.Warnings[0], errors.ErrTemplateWarning))

	testutil.AssertFileContent(t, fsys, outPath,
		"[user]\n  name = Ada\n  email = ada@example.com\n  key = ${SIGNING_KEY}\n")
	testutil.AssertNoTempFiles(t, fsys, "/home/u")
}

func TestProcessIsIdempotent(t *testing.T) {
	fsys := memEnvFS(t, map[string]string{tplPath: "email = ${EMAIL}\n"})
	p := newProcessor(fsys)

	first := p.Process(tplPath, gitEnv, outPath)
	require.True(t, first.Success)
	firstBytes, err := fsys.ReadFile(outPath)
	require.NoError(t, err)

	second := p.Process(tplPath, gitEnv, outPath)
	require.True(t, second.Success)
	secondBytes, err := fsys.ReadFile(outPath)
	require.NoError(t, err)

	assert.Equal(t, firstBytes, secondBytes)
	require.NotNil(t, second.Backup, "existing destination is backed up")
	testutil.AssertFileContent(t, fsys, second.Backup.BackupPath, string(firstBytes))
}

func TestProcessKeepsDestinationMode(t *testing.T) {
	fsys := memEnvFS(t, map[string]string{tplPath: "email = ${EMAIL}\n"})
	require.NoError(t, fsys.WriteFile(outPath, []byte("old"), 0600))

	res := newProcessor(fsys).Process(tplPath, gitEnv, outPath)
	require.True(t, res.Success)
	testutil.AssertMode(t, fsys, outPath, 0600)
}

func TestProcessUnwritableDestinationLeavesOriginal(t *testing.T) {
	boom := stderrors.New("permission denied")
	inner := memEnvFS(t, map[string]string{
		tplPath: "email = ${EMAIL}\n",
		outPath: "original content\n",
	})
	fsys := testutil.NewFaultyFS(inner).FailTempFilesIn("/home/u", boom)

	res := newProcessor(fsys).Process(tplPath, gitEnv, outPath)
	assert.False(t, res.Success)
	require.Error(t, res.Err)
	assert.True(t, errors.IsErrorCode(res.Err, errors.ErrIO))
	testutil.AssertFileContent(t, fsys, outPath, "original content\n")
}

func TestProcessRestoresCorruptedDestination(t *testing.T) {
	boom := stderrors.New("device error")
	inner := memEnvFS(t, map[string]string{
		tplPath: "email = ${EMAIL}\n",
		outPath: "original content\n",
	})
	fsys := testutil.NewFaultyFS(inner)
	failed := false
	fsys.RenameFunc = func(_, newpath string) error {
		if newpath == outPath && !failed {
			failed = true
			_ = inner.WriteFile(outPath, []byte("half-writ"), 0644)
			return boom
		}
		return nil
	}

	res := newProcessor(fsys).Process(tplPath, gitEnv, outPath)
	assert.False(t, res.Success)
	require.NotNil(t, res.Backup)
	testutil.AssertFileContent(t, inner, outPath, "original content\n")
}

func TestProcessReadOnlyDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	base := t.TempDir()
	tpl := filepath.Join(base, "tpl")
	dir := filepath.Join(base, "locked")
	out := filepath.Join(dir, "config")
	require.NoError(t, os.WriteFile(tpl, []byte("email = ${EMAIL}\n"), 0644))
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(out, []byte("keep me\n"), 0644))
	require.NoError(t, os.Chmod(dir, 0555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0755) })

	fsys := filesystem.NewOS()
	p := template.NewProcessor(fsys, backup.New(fsys, filepath.Join(base, "bak"), nil))

	res := p.Process(tpl, gitEnv, out)
	assert.False(t, res.Success)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "keep me\n", string(data))
}

func TestProcessRejectsBadInput(t *testing.T) {
	fsys := memEnvFS(t, map[string]string{"/repo/blob": "\x00\x01${EMAIL}"})
	p := newProcessor(fsys)

	res := p.Process("/repo/missing", gitEnv, outPath)
	assert.True(t, errors.IsErrorCode(res.Err, errors.ErrNotFound))

	res = p.Process("/repo/blob", gitEnv, outPath)
	assert.True(t, errors.IsErrorCode(res.Err, errors.ErrInvalidInput))
	testutil.AssertNoFile(t, fsys, outPath)
}

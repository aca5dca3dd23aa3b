// cmd/mep/root_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: testutil (isolated filesystem), cobra
// PURPOSE: Drive the command tree end to end and check output and exit codes

package mep_test

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andisab/mise-en-place/cmd/mep"
	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/testutil"
	"github.com/andisab/mise-en-place/pkg/types"
)

func setupCLI(t *testing.T) *testutil.TestEnvironment {
	t.Helper()
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	t.Setenv("MEP_HOME", env.Home)
	t.Setenv("DOTFILES_ROOT", env.Root)
	t.Setenv("DOTFILES_BACKUP_DIR", env.BackupDir)
	t.Setenv("DOTFILES_CUSTOM_DIR", env.OverlayDir)
	return env
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := mep.NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListJSON(t *testing.T) {
	env := setupCLI(t)
	env.WriteManifest("zsh/.zshrc:.zshrc")
	env.AddRepoFile("zsh/.zshrc", "export EDITOR=vi\n")

	out, err := execute(t, "--format", "json", "list")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "list", doc["operation"])
	assert.Equal(t, true, doc["success"])
}

func TestSyncForceSubstitutes(t *testing.T) {
	env := setupCLI(t)
	env.WriteManifest("git/gitconfig:.gitconfig")
	env.AddRepoFile("git/gitconfig", "[user]\n\tname = ${GIT_NAME}\n")
	env.AddSystemFile(".gitconfig", "[user]\n\tname = old\n")
	env.AddEnvFile(".env", "GIT_NAME=Ada Lovelace\n")

	_, err := execute(t, "--format", "text", "sync", "--force")
	require.NoError(t, err)

	assert.Equal(t, "[user]\n\tname = Ada Lovelace\n", env.ReadSystemFile(".gitconfig"))
}

func TestSyncDryRunLeavesSystem(t *testing.T) {
	env := setupCLI(t)
	env.WriteManifest("zsh/.zshrc:.zshrc")
	env.AddRepoFile("zsh/.zshrc", "new\n")
	env.AddSystemFile(".zshrc", "old\n")

	out, err := execute(t, "--format", "text", "sync", "--dry-run")
	require.NoError(t, err)

	assert.Equal(t, "old\n", env.ReadSystemFile(".zshrc"))
	assert.Contains(t, out, "+new")
}

func TestSyncDryRunConflictsWithForce(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "sync", "--dry-run", "--force")
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidInput, errors.GetErrorCode(err))
}

func TestValidateExitCode(t *testing.T) {
	env := setupCLI(t)
	env.WriteManifest("broken line")

	out, err := execute(t, "--format", "text", "validate")
	require.Error(t, err)

	var exitErr *mep.ExitError
	require.True(t, stderrors.As(err, &exitErr))
	assert.Equal(t, mep.ExitValidationError, exitErr.Code)
	assert.Contains(t, out, "CONFIG_ERROR")
}

func TestShellExports(t *testing.T) {
	env := setupCLI(t)
	env.WriteManifest("zsh/.zshrc:.zshrc")

	out, err := execute(t, "--format", "text", "shell-exports", "--shell", "zsh")
	require.NoError(t, err)
	assert.Contains(t, out, "export DOTFILES_REPO=")
	assert.Contains(t, out, env.Root)
}

func TestConfigInit(t *testing.T) {
	env := setupCLI(t)
	target := filepath.Join(env.Home, "settings.toml")

	out, err := execute(t, "--config", target, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, target)
	testutil.AssertFileExists(t, env.FS, target)

	_, err = execute(t, "--config", target, "config", "init")
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidInput, errors.GetErrorCode(err))
}

func TestConfigShowReflectsFlags(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "--manifest", "other.conf", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "other.conf")
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		result string
		want   int
	}{
		{"success", mep.ExitSuccess},
		{"partial-failure", mep.ExitPartialFailure},
		{"total-failure", mep.ExitTotalFailure},
		{"validation-error", mep.ExitValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.result, func(t *testing.T) {
			assert.Equal(t, tt.want, mep.ExitCodeFor(types.ResultCode(tt.result)))
		})
	}
}

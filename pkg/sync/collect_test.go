// pkg/sync/collect_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Memory filesystem via testutil
// PURPOSE: Verify copying system files back into the repository

package sync_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/andisab/mise-en-place/pkg/sync"
	"github.com/andisab/mise-en-place/pkg/testutil"
	"github.com/andisab/mise-en-place/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.AddRepoFile("zsh/.zshrc", "old\n")
	env.AddRepoFile("git/gitconfig", "email = ${EMAIL}\n")
	env.AddRepoFile("vim/.vimrc", "same\n")
	env.AddSystemFile(".zshrc", "edited on system\n")
	env.AddSystemFile(".gitconfig", "email = ada@example.com\n")
	env.AddSystemFile(".vimrc", "same\n")

	ctrl := newController(t, env, env.FS, nil,
		"zsh/.zshrc:.zshrc",
		"git/gitconfig:.gitconfig",
		"vim/.vimrc:.vimrc",
		"tmux/tmux.conf:.tmux.conf",
		"custom:work:.ssh/config",
	)

	summary := ctrl.Collect(context.Background())
	require.Len(t, summary.Results, 4, "overlay entries are not collected")

	assert.Equal(t, 1, summary.Applied)
	assert.Equal(t, 1, summary.Identical)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, types.CodeSuccess, summary.Code)

	testutil.AssertFileContent(t, env.FS, filepath.Join(env.Root, "zsh/.zshrc"), "edited on system\n")
	testutil.AssertFileContent(t, env.FS, filepath.Join(env.Root, "git/gitconfig"), "email = ${EMAIL}\n")

	assert.Equal(t, sync.ReasonTemplate, summary.Results[1].Reason)
	assert.Equal(t, sync.ReasonNotOnSystem, summary.Results[3].Reason)
}

// pkg/sync/controller_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Memory filesystem via testutil
// PURPOSE: Verify sync orchestration, decisions and failure isolation

package sync_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andisab/mise-en-place/pkg/backup"
	"github.com/andisab/mise-en-place/pkg/clock"
	"github.com/andisab/mise-en-place/pkg/environment"
	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/manifest"
	"github.com/andisab/mise-en-place/pkg/merge"
	"github.com/andisab/mise-en-place/pkg/sync"
	"github.com/andisab/mise-en-place/pkg/testutil"
	"github.com/andisab/mise-en-place/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEnv = environment.FromMap(map[string]string{"EMAIL": "ada@example.com"}, "test")

func newController(t *testing.T, env *testutil.TestEnvironment, fsys types.FS, decider merge.Decider, lines ...string) *sync.Controller {
	t.Helper()
	m, err := manifest.Load(env.FS, env.WriteManifest(lines...))
	require.NoError(t, err)

	clk := clock.NewFake(time.Date(2026, 5, 1, 12, 0, 0, 0, time.Local))
	return sync.New(sync.Config{
		FS:       fsys,
		Locator:  env.Paths,
		Manifest: m,
		Env:      testEnv,
		Backups:  backup.New(fsys, env.BackupDir, clk),
		Decider:  decider,
	})
}

func TestRunReplaceStrategy(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.AddRepoFile("zsh/.zshrc", "new zshrc\n")
	env.AddRepoFile("git/gitconfig", "email = ${EMAIL}\n")
	env.AddRepoFile("vim/.vimrc", "same\n")
	env.AddSystemFile(".zshrc", "old zshrc\n")
	env.AddSystemFile(".vimrc", "same\n")

	ctrl := newController(t, env, env.FS, nil,
		"zsh/.zshrc:.zshrc",
		"git/gitconfig:.gitconfig",
		"vim/.vimrc:.vimrc",
	)

	summary, err := ctrl.Run(context.Background(), sync.Options{
		Strategy:         types.StrategyReplace,
		ProcessTemplates: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Applied)
	assert.Equal(t, 1, summary.Identical)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 1, summary.TemplatesProcessed)
	assert.Equal(t, types.CodeSuccess, summary.Code)

	assert.Equal(t, "new zshrc\n", env.ReadSystemFile(".zshrc"))
	assert.Equal(t, "email = ada@example.com\n", env.ReadSystemFile(".gitconfig"))

	zsh := summary.Results[0]
	assert.Equal(t, types.StatusModified, zsh.Status)
	require.NotNil(t, zsh.Backup)
	testutil.AssertFileContent(t, env.FS, zsh.Backup.BackupPath, "old zshrc\n")

	git := summary.Results[1]
	assert.Equal(t, types.StatusNew, git.Status)
	assert.Nil(t, git.Backup)
	require.NotNil(t, git.Template)
	assert.Equal(t, []string{"EMAIL"}, git.Template.Variables)

	assert.Equal(t, sync.ReasonIdentical, summary.Results[2].Reason)
}

func TestRunQuitAfterTwoOfFour(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	var lines []string
	for _, name := range []string{"a", "b", "c", "d"} {
		env.AddRepoFile("files/"+name, "repo "+name+"\n")
		env.AddSystemFile("."+name, "system "+name+"\n")
		lines = append(lines, "files/"+name+":."+name)
	}

	decider := merge.Sequence(types.DecisionReplace, types.DecisionBackupAndReplace, types.DecisionQuit)
	ctrl := newController(t, env, env.FS, decider, lines...)

	summary, err := ctrl.Run(context.Background(), sync.Options{Strategy: types.StrategyAsk})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Applied)
	assert.Equal(t, 2, summary.Skipped)
	assert.True(t, summary.Quit)
	assert.Equal(t, types.CodeSuccess, summary.Code)
	assert.Len(t, decider.Prompts(), 3, "no prompt after quit")

	assert.Equal(t, "repo a\n", env.ReadSystemFile(".a"))
	assert.Equal(t, "repo b\n", env.ReadSystemFile(".b"))
	assert.Equal(t, "system c\n", env.ReadSystemFile(".c"))
	assert.Equal(t, "system d\n", env.ReadSystemFile(".d"))
	assert.Equal(t, sync.ReasonQuit, summary.Results[3].Reason)
}

func TestRunViewAgainReprompts(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.AddRepoFile("zsh/.zshrc", "one\ntwo\n")
	env.AddSystemFile(".zshrc", "one\n")

	decider := merge.Sequence(types.DecisionViewAgain, types.DecisionKeep)
	ctrl := newController(t, env, env.FS, decider, "zsh/.zshrc:.zshrc")

	summary, err := ctrl.Run(context.Background(), sync.Options{Strategy: types.StrategyAsk})
	require.NoError(t, err)

	prompts := decider.Prompts()
	require.Len(t, prompts, 2)
	assert.Equal(t, 1, prompts[0].Round)
	assert.Equal(t, 2, prompts[1].Round)
	assert.Len(t, prompts[0].Diff.Changes(), 1)

	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, sync.ReasonKept, summary.Results[0].Reason)
	assert.Equal(t, "one\n", env.ReadSystemFile(".zshrc"))
}

func TestRunForceSkipsPrompts(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.AddRepoFile("zsh/.zshrc", "repo\n")
	env.AddSystemFile(".zshrc", "system\n")

	ctrl := newController(t, env, env.FS, nil, "zsh/.zshrc:.zshrc")
	summary, err := ctrl.Run(context.Background(), sync.Options{Strategy: types.StrategyAsk, Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Applied)
	assert.Equal(t, "repo\n", env.ReadSystemFile(".zshrc"))
}

func TestRunAskWithoutDecider(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.AddRepoFile("zsh/.zshrc", "repo\n")

	ctrl := newController(t, env, env.FS, nil, "zsh/.zshrc:.zshrc")
	_, err := ctrl.Run(context.Background(), sync.Options{Strategy: types.StrategyAsk})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestRunSkipIsDryRun(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.AddRepoFile("zsh/.zshrc", "a\nb\n")
	env.AddRepoFile("git/gitconfig", "new\n")
	env.AddSystemFile(".zshrc", "a\n")

	ctrl := newController(t, env, env.FS, nil, "zsh/.zshrc:.zshrc", "git/gitconfig:.gitconfig")
	summary, err := ctrl.Run(context.Background(), sync.Options{Strategy: types.StrategySkip})
	require.NoError(t, err)

	assert.True(t, summary.DryRun)
	assert.Equal(t, 0, summary.Applied)
	assert.Equal(t, 2, summary.Skipped)
	assert.Contains(t, summary.Results[0].Diff, "+b")
	assert.Equal(t, types.StatusNew, summary.Results[1].Status)

	assert.Equal(t, "a\n", env.ReadSystemFile(".zshrc"))
	assert.Equal(t, "", env.ReadSystemFile(".gitconfig"))
	testutil.AssertNoFile(t, env.FS, env.BackupDir)
}

func TestRunIsolatesFailures(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.AddRepoFile("git/gitconfig", "ok\n")

	ctrl := newController(t, env, env.FS, nil, "missing/file:.missing", "git/gitconfig:.gitconfig")
	summary, err := ctrl.Run(context.Background(), sync.Options{Strategy: types.StrategyReplace})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Applied)
	assert.Equal(t, types.CodePartialFailure, summary.Code)
	assert.Contains(t, summary.FailedResults()[0].Reason, "source not found")
	assert.Equal(t, "ok\n", env.ReadSystemFile(".gitconfig"))
}

func TestRunTotalFailure(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)

	ctrl := newController(t, env, env.FS, nil, "missing/a:.a", "missing/b:.b")
	summary, err := ctrl.Run(context.Background(), sync.Options{Strategy: types.StrategyReplace})
	require.NoError(t, err)
	assert.Equal(t, types.CodeTotalFailure, summary.Code)
}

func TestRunWriteFailureKeepsDestination(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.AddRepoFile("zsh/.zshrc", "repo\n")
	env.AddRepoFile("git/gitconfig", "git\n")
	env.AddSystemFile(".zshrc", "system\n")

	zshrc := filepath.Join(env.Home, ".zshrc")
	fsys := testutil.NewFaultyFS(env.FS)
	fsys.RenameFunc = func(_, newpath string) error {
		if newpath == zshrc {
			return stderrors.New("read-only file system")
		}
		return nil
	}

	ctrl := newController(t, env, fsys, nil, "zsh/.zshrc:.zshrc", "git/gitconfig:.gitconfig")
	summary, err := ctrl.Run(context.Background(), sync.Options{Strategy: types.StrategyReplace})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Applied)
	assert.Equal(t, "system\n", env.ReadSystemFile(".zshrc"))
	assert.Equal(t, "git\n", env.ReadSystemFile(".gitconfig"))
	testutil.AssertNoTempFiles(t, env.FS, env.Home)
}

func TestRunUnwritableBackupDirAborts(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.AddRepoFile("zsh/.zshrc", "repo\n")
	env.AddSystemFile(".zshrc", "system\n")

	fsys := testutil.NewFaultyFS(env.FS).FailTempFilesIn(env.BackupDir, stderrors.New("permission denied"))
	ctrl := newController(t, env, fsys, nil, "zsh/.zshrc:.zshrc")

	summary, err := ctrl.Run(context.Background(), sync.Options{Strategy: types.StrategyReplace})
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.True(t, errors.IsErrorCode(err, errors.ErrIO))
	assert.Equal(t, "system\n", env.ReadSystemFile(".zshrc"))
}

func TestRunCancelledContext(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.AddRepoFile("zsh/.zshrc", "repo\n")
	env.AddRepoFile("git/gitconfig", "git\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctrl := newController(t, env, env.FS, nil, "zsh/.zshrc:.zshrc", "git/gitconfig:.gitconfig")
	summary, err := ctrl.Run(ctx, sync.Options{Strategy: types.StrategyReplace})
	require.NoError(t, err)

	assert.True(t, summary.Quit)
	assert.Equal(t, 2, summary.Skipped)
	for _, r := range summary.Results {
		assert.Equal(t, sync.ReasonCancelled, r.Reason)
	}
	assert.Equal(t, "", env.ReadSystemFile(".zshrc"))
}

func TestRunOverlayPrecedence(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.AddRepoFile("git/gitconfig", "repo\n")
	env.AddRepoFile("ssh/config", "repo ssh\n")
	env.AddOverlay("work-gitconfig", "overlay\n")

	ctrl := newController(t, env, env.FS, nil,
		"git/gitconfig:.gitconfig",
		"custom:work-gitconfig:.gitconfig",
		"ssh/config:.ssh/config",
		"custom:work-ssh:.ssh/config",
	)
	summary, err := ctrl.Run(context.Background(), sync.Options{Strategy: types.StrategyReplace})
	require.NoError(t, err)

	require.Len(t, summary.Results, 2)
	assert.Equal(t, "overlay\n", env.ReadSystemFile(".gitconfig"))
	assert.Equal(t, "repo ssh\n", env.ReadSystemFile(".ssh/config"), "missing overlay falls back to the repository")
}

func TestRunExpandsDirectories(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.WithFileTree(testutil.FileTree{
		"nvim": testutil.FileTree{
			"init.lua": "-- init\n",
			"lua": testutil.FileTree{
				"opts.lua": "-- opts\n",
			},
		},
	})

	ctrl := newController(t, env, env.FS, nil, "nvim:.config/nvim")
	summary, err := ctrl.Run(context.Background(), sync.Options{Strategy: types.StrategyReplace})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Applied)
	assert.Equal(t, "-- init\n", env.ReadSystemFile(".config/nvim/init.lua"))
	assert.Equal(t, "-- opts\n", env.ReadSystemFile(".config/nvim/lua/opts.lua"))
}

func TestRunCopiesBinaryVerbatim(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	blob := "\x00\x01${EMAIL}\xff"
	env.AddRepoFile("fonts/icon.bin", blob)
	env.AddSystemFile(".icon.bin", "\x00old")

	ctrl := newController(t, env, env.FS, nil, "fonts/icon.bin:.icon.bin")
	summary, err := ctrl.Run(context.Background(), sync.Options{Strategy: types.StrategyReplace, ProcessTemplates: true})
	require.NoError(t, err)

	assert.Equal(t, types.StatusBinary, summary.Results[0].Status)
	assert.Nil(t, summary.Results[0].Template)
	assert.Equal(t, blob, env.ReadSystemFile(".icon.bin"))
}

func TestRunDryRunBinaryHasNoTextDiff(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.AddRepoFile("bin/blob", "AAA\x00new\nline2\n")
	env.AddSystemFile("blob", "AAA\x00old\nline2\n")

	ctrl := newController(t, env, env.FS, nil, "bin/blob:blob")
	summary, err := ctrl.Run(context.Background(), sync.Options{Strategy: types.StrategySkip})
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.Equal(t, types.StatusBinary, summary.Results[0].Status)
	assert.Equal(t, types.OutcomeSkipped, summary.Results[0].Outcome)
	assert.Empty(t, summary.Results[0].Diff)
	assert.Equal(t, "AAA\x00old\nline2\n", env.ReadSystemFile("blob"))
}

func TestRunDryRunUsesDiffContext(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	var old, updated strings.Builder
	for i := 1; i <= 20; i++ {
		fmt.Fprintf(&old, "row %02d\n", i)
		if i == 10 {
			updated.WriteString("row changed\n")
			continue
		}
		fmt.Fprintf(&updated, "row %02d\n", i)
	}
	env.AddRepoFile("rc", updated.String())
	env.AddSystemFile(".rc", old.String())

	ctrl := newController(t, env, env.FS, nil, "rc:.rc")
	summary, err := ctrl.Run(context.Background(), sync.Options{Strategy: types.StrategySkip, DiffContext: 1})
	require.NoError(t, err)

	d := summary.Results[0].Diff
	assert.Contains(t, d, " row 09\n")
	assert.NotContains(t, d, " row 08\n")
}

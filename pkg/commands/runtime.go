// Package commands implements the operations behind each CLI command.
//
// Every operation returns a *types.Report so the CLI only has to pick a
// renderer. Operations never print; logging goes through pkg/logging.
//
// Operations:
//   - List            - manifest entries with overlay status
//   - Validate        - batch manifest and environment checks
//   - Sync            - repository to system reconciliation
//   - Collect         - system to repository copy
//   - AnalyzeTemplate - read-only placeholder report
//   - ProcessTemplate - render one template to a file
//   - SecretsFiles    - environment files in priority order
//   - ShellExports    - shell variables describing the setup
//   - Backups         - backup directory listing
package commands

import (
	stderrors "errors"

	"github.com/andisab/mise-en-place/pkg/backup"
	"github.com/andisab/mise-en-place/pkg/clock"
	"github.com/andisab/mise-en-place/pkg/config"
	"github.com/andisab/mise-en-place/pkg/environment"
	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/filesystem"
	"github.com/andisab/mise-en-place/pkg/manifest"
	"github.com/andisab/mise-en-place/pkg/merge"
	"github.com/andisab/mise-en-place/pkg/paths"
	"github.com/andisab/mise-en-place/pkg/types"
)

// Options wires a Runtime. Zero fields fall back to the real system.
type Options struct {
	Config  *config.Config
	FS      types.FS
	Paths   *paths.Paths
	Decider merge.Decider
	Clock   clock.Clock
	// ProcessEnv replaces os.Environ() for the lowest environment tier.
	ProcessEnv []string
}

// Runtime holds the resolved dependencies shared by all operations
type Runtime struct {
	cfg     *config.Config
	fs      types.FS
	paths   *paths.Paths
	decider merge.Decider
	clock   clock.Clock
	environ []string
}

// New resolves paths from the configuration unless given explicitly
func New(opts Options) (*Runtime, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Defaults()
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	p := opts.Paths
	if p == nil {
		var err error
		p, err = paths.New(paths.Options{
			Root:       cfg.Repo.Root,
			Home:       cfg.Paths.Home,
			BackupDir:  cfg.Paths.BackupDir,
			OverlayDir: cfg.Paths.OverlayDir,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConfig, "failed to resolve paths")
		}
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}

	return &Runtime{
		cfg:     cfg,
		fs:      fsys,
		paths:   p,
		decider: opts.Decider,
		clock:   clk,
		environ: opts.ProcessEnv,
	}, nil
}

// Paths exposes the resolved locations
func (r *Runtime) Paths() *paths.Paths {
	return r.paths
}

// ManifestPath is the manifest file in use
func (r *Runtime) ManifestPath() string {
	return r.paths.ManifestPath(r.cfg.Repo.Manifest)
}

func (r *Runtime) backups() *backup.Manager {
	return backup.New(r.fs, r.paths.BackupDir(), r.clock)
}

func (r *Runtime) envFiles() []string {
	if len(r.cfg.Environment.Files) == 0 {
		return r.paths.EnvFiles()
	}
	files := make([]string, len(r.cfg.Environment.Files))
	for i, f := range r.cfg.Environment.Files {
		files[i] = r.paths.Expand(f)
	}
	return files
}

// resolveEnv builds the snapshot and records rejections on report
func (r *Runtime) resolveEnv(report *types.Report) (*environment.Resolved, []environment.Rejection) {
	env, rejections := environment.Resolve(r.fs, environment.Options{
		Files:          r.envFiles(),
		IncludeProcess: r.cfg.Environment.IncludeProcess,
		ProcessEnv:     r.environ,
	})
	for _, rej := range rejections {
		report.Warn(string(errors.ErrSecurityRejection), "skipped unsafe environment file "+rej.Path+": "+rej.Reason)
	}
	return env, rejections
}

// loadManifest loads the manifest, turning every parse error into a report
// error. A nil manifest means the operation cannot continue.
func (r *Runtime) loadManifest(report *types.Report) *manifest.Manifest {
	m, ok := r.loadManifestPartial(report)
	if !ok {
		return nil
	}
	return m
}

// loadManifestPartial also returns the valid entries of a manifest that has
// bad lines. ok is false when any error was recorded.
func (r *Runtime) loadManifestPartial(report *types.Report) (*manifest.Manifest, bool) {
	m, err := manifest.Load(r.fs, r.ManifestPath())
	if err == nil {
		return m, true
	}

	var list errors.List
	if stderrors.As(err, &list) {
		for _, e := range list {
			report.Error(string(errors.GetErrorCode(e)), e.Error(), types.CodeValidationError)
		}
	} else {
		report.Error(string(errors.GetErrorCode(err)), err.Error(), types.CodeValidationError)
	}
	return m, false
}

package paths

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/andisab/mise-en-place/pkg/errors"
)

// Environment variable names
const (
	EnvDotfilesRoot = "DOTFILES_ROOT"
	EnvMepHome      = "MEP_HOME"
	EnvBackupDir    = "DOTFILES_BACKUP_DIR"
	EnvOverlayDir   = "DOTFILES_CUSTOM_DIR"
	EnvConfigDir    = "MEP_CONFIG_DIR"
	EnvHome         = "HOME"
)

// Default names
const (
	AppDirName       = "mise-en-place"
	ManifestFileName = "dotfiles.conf"
	ConfigFileName   = "config.toml"
	BackupDirName    = "dotfiles.bak"
	OverlayDirName   = "dotfiles.custom"
)

// Options overrides individual locations. Empty fields are resolved from
// the environment and defaults.
type Options struct {
	Root       string
	Home       string
	BackupDir  string
	OverlayDir string
}

// Paths holds every resolved location for one run
type Paths struct {
	root       string
	home       string
	backupDir  string
	overlayDir string
	configDir  string
	stateDir   string

	// usedFallback indicates the root is the cwd (for warning display)
	usedFallback bool
}

// New resolves all locations
func New(opts Options) (*Paths, error) {
	p := &Paths{}

	home, err := resolveHome(opts.Home)
	if err != nil {
		return nil, err
	}
	p.home = home

	if opts.Root == "" {
		root, usedFallback, err := findDotfilesRoot()
		if err != nil {
			return nil, err
		}
		p.root = root
		p.usedFallback = usedFallback
	} else {
		p.root = expandHomeWith(p.home, opts.Root)
	}

	absRoot, err := filepath.Abs(p.root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to get absolute path for dotfiles root")
	}
	p.root = absRoot

	p.backupDir = p.firstOf(opts.BackupDir, os.Getenv(EnvBackupDir), filepath.Join(p.home, ".config", BackupDirName))
	p.overlayDir = p.firstOf(opts.OverlayDir, os.Getenv(EnvOverlayDir), filepath.Join(p.home, ".config", OverlayDirName))
	p.setupXDGDirs()

	return p, nil
}

func resolveHome(explicit string) (string, error) {
	for _, candidate := range []string{explicit, os.Getenv(EnvMepHome)} {
		if candidate != "" {
			return filepath.Abs(candidate)
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv(EnvHome)
		if home == "" {
			return "", errors.Wrap(err, errors.ErrConfig, "cannot determine home directory")
		}
	}
	return filepath.Clean(home), nil
}

func (p *Paths) firstOf(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return filepath.Clean(expandHomeWith(p.home, c))
		}
	}
	return ""
}

// setupXDGDirs initializes XDG directories, respecting environment overrides.
// The XDG_* variables are read directly so changes after process start are
// honoured; adrg/xdg supplies platform defaults.
func (p *Paths) setupXDGDirs() {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.configDir = expandHomeWith(p.home, dir)
	} else if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		p.configDir = filepath.Join(base, AppDirName)
	} else {
		p.configDir = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		p.stateDir = filepath.Join(base, AppDirName)
	} else {
		p.stateDir = filepath.Join(xdg.StateHome, AppDirName)
	}
}

// findDotfilesRoot determines the repository root using the following priority:
// 1. DOTFILES_ROOT environment variable (if set)
// 2. Git repository root (found via 'git rev-parse --show-toplevel')
// 3. Current working directory (fallback)
func findDotfilesRoot() (string, bool, error) {
	if root := os.Getenv(EnvDotfilesRoot); root != "" {
		return ExpandHome(root), false, nil
	}

	if gitRoot, err := findGitRoot(); err == nil && gitRoot != "" {
		return gitRoot, false, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, errors.Wrapf(err, errors.ErrIO, "failed to get current directory")
	}
	return cwd, true, nil
}

func findGitRoot() (string, error) {
	output, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", err
	}

	gitRoot := strings.TrimSpace(string(output))
	if gitRoot == "" {
		return "", errors.New(errors.ErrNotFound, "git root is empty")
	}
	return gitRoot, nil
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv(EnvHome)
	}
	if home == "" {
		return path
	}
	return expandHomeWith(home, path)
}

func expandHomeWith(home, path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	if len(path) == 1 {
		return home
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(home, path[2:])
	}
	// ~user is left alone
	return path
}

// DotfilesRoot returns the repository root
func (p *Paths) DotfilesRoot() string { return p.root }

// UsedFallback returns true if the current working directory was used as fallback
func (p *Paths) UsedFallback() bool { return p.usedFallback }

// Home returns the directory destinations are relative to
func (p *Paths) Home() string { return p.home }

// BackupDir returns where backups are written
func (p *Paths) BackupDir() string { return p.backupDir }

// OverlayDir returns where custom overlay files live
func (p *Paths) OverlayDir() string { return p.overlayDir }

// ConfigDir returns the settings directory
func (p *Paths) ConfigDir() string { return p.configDir }

// ConfigFile returns the user settings file path
func (p *Paths) ConfigFile() string { return filepath.Join(p.configDir, ConfigFileName) }

// StateDir returns the state directory (logs)
func (p *Paths) StateDir() string { return p.stateDir }

// ManifestPath resolves the manifest location. A relative name is taken
// relative to the repository root; empty means the default file.
func (p *Paths) ManifestPath(name string) string {
	if name == "" {
		name = ManifestFileName
	}
	name = expandHomeWith(p.home, name)
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.root, name)
}

// RepoPath joins a manifest repository path onto the root
func (p *Paths) RepoPath(rel string) string {
	return filepath.Join(p.root, rel)
}

// OverlayPath joins an overlay name onto the overlay directory
func (p *Paths) OverlayPath(name string) string {
	return filepath.Join(p.overlayDir, name)
}

// SystemPath resolves a manifest destination below the home directory.
// Destinations that resolve to the home directory itself or outside it are
// rejected.
func (p *Paths) SystemPath(dest string) (string, error) {
	expanded := expandHomeWith(p.home, dest)
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(p.home, expanded)
	}
	expanded = filepath.Clean(expanded)

	if expanded == p.home {
		return "", errors.Newf(errors.ErrValidation, "refusing to manage home directory: %s", dest)
	}
	if !ContainsPath(p.home, expanded) {
		return "", errors.Newf(errors.ErrValidation, "destination outside home directory: %s", dest)
	}
	return expanded, nil
}

// Expand expands a leading ~ against the resolved home directory
func (p *Paths) Expand(path string) string {
	return expandHomeWith(p.home, path)
}

// EnvFiles returns the environment files in ascending priority
func (p *Paths) EnvFiles() []string {
	return []string{
		filepath.Join(p.home, ".env"),
		filepath.Join(p.home, ".config", "dotfiles", ".env"),
	}
}

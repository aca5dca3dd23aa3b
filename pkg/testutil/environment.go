// pkg/testutil/environment.go
// DEPENDENCIES: paths, filesystem
// PURPOSE: Build isolated dotfile environments for tests

package testutil

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andisab/mise-en-place/pkg/filesystem"
	"github.com/andisab/mise-en-place/pkg/paths"
	"github.com/andisab/mise-en-place/pkg/types"
)

// EnvType defines the type of test environment
type EnvType int

const (
	EnvMemoryOnly EnvType = iota // Pure in-memory, no real filesystem
	EnvIsolated                  // Real filesystem in temp directory
)

// TestEnvironment provides every location a sync needs
type TestEnvironment struct {
	Root       string
	Home       string
	BackupDir  string
	OverlayDir string

	FS    types.FS
	Paths *paths.Paths
	Type  EnvType

	t *testing.T
}

// NewTestEnvironment creates a new test environment
func NewTestEnvironment(t *testing.T, envType EnvType) *TestEnvironment {
	t.Helper()

	env := &TestEnvironment{t: t, Type: envType}

	var base string
	switch envType {
	case EnvMemoryOnly:
		base = "/virtual"
		env.FS = filesystem.NewMemory()
	case EnvIsolated:
		base = t.TempDir()
		env.FS = filesystem.NewOS()
	}

	env.Root = filepath.Join(base, "dotfiles")
	env.Home = filepath.Join(base, "home")
	env.BackupDir = filepath.Join(env.Home, ".config", paths.BackupDirName)
	env.OverlayDir = filepath.Join(env.Home, ".config", paths.OverlayDirName)

	for _, dir := range []string{env.Root, env.Home} {
		if err := env.FS.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	t.Setenv("HOME", env.Home)
	t.Setenv("XDG_STATE_HOME", filepath.Join(env.Home, ".local", "state"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(env.Home, ".config"))

	p, err := paths.New(paths.Options{
		Root:       env.Root,
		Home:       env.Home,
		BackupDir:  env.BackupDir,
		OverlayDir: env.OverlayDir,
	})
	if err != nil {
		t.Fatalf("Failed to create paths: %v", err)
	}
	env.Paths = p

	return env
}

// WriteManifest writes the default manifest from lines and returns its path
func (env *TestEnvironment) WriteManifest(lines ...string) string {
	env.t.Helper()
	path := env.Paths.ManifestPath("")
	env.write(path, strings.Join(lines, "\n")+"\n", 0644)
	return path
}

// AddRepoFile writes a file below the repository root
func (env *TestEnvironment) AddRepoFile(rel, content string) string {
	env.t.Helper()
	path := env.Paths.RepoPath(rel)
	env.write(path, content, 0644)
	return path
}

// AddOverlay writes a custom overlay file
func (env *TestEnvironment) AddOverlay(name, content string) string {
	env.t.Helper()
	path := env.Paths.OverlayPath(name)
	env.write(path, content, 0644)
	return path
}

// AddSystemFile writes a file below the home directory
func (env *TestEnvironment) AddSystemFile(rel, content string) string {
	env.t.Helper()
	path := filepath.Join(env.Home, rel)
	env.write(path, content, 0644)
	return path
}

// AddEnvFile writes an environment file below the home directory
func (env *TestEnvironment) AddEnvFile(rel, content string) string {
	env.t.Helper()
	path := filepath.Join(env.Home, rel)
	env.write(path, content, 0600)
	return path
}

// ReadSystemFile returns the content of a file below home, or "" if absent
func (env *TestEnvironment) ReadSystemFile(rel string) string {
	env.t.Helper()
	data, err := env.FS.ReadFile(filepath.Join(env.Home, rel))
	if err != nil {
		return ""
	}
	return string(data)
}

// WithFileTree creates a file tree below the repository root
func (env *TestEnvironment) WithFileTree(tree FileTree) {
	env.t.Helper()
	createFileTree(env.t, env.FS, env.Root, tree)
}

func (env *TestEnvironment) write(path, content string, perm fs.FileMode) {
	env.t.Helper()
	if err := env.FS.MkdirAll(filepath.Dir(path), 0755); err != nil {
		env.t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := env.FS.WriteFile(path, []byte(content), perm); err != nil {
		env.t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

// FileTree represents a directory structure for testing
type FileTree map[string]interface{}

// createFileTree recursively creates a file tree
func createFileTree(t *testing.T, fsys types.FS, basePath string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			if err := fsys.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
				t.Fatalf("Failed to create directory for %s: %v", fullPath, err)
			}
			if err := fsys.WriteFile(fullPath, []byte(v), 0644); err != nil {
				t.Fatalf("Failed to write file %s: %v", fullPath, err)
			}
		case FileTree:
			if err := fsys.MkdirAll(fullPath, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", fullPath, err)
			}
			createFileTree(t, fsys, fullPath, v)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}

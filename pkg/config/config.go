package config

import (
	"fmt"
	"strings"
)

// Config is the complete set of settings
type Config struct {
	Repo        RepoConfig        `koanf:"repo" toml:"repo"`
	Paths       PathsConfig       `koanf:"paths" toml:"paths"`
	Environment EnvironmentConfig `koanf:"environment" toml:"environment"`
	Sync        SyncConfig        `koanf:"sync" toml:"sync"`
	Log         LogConfig         `koanf:"log" toml:"log"`
	Output      OutputConfig      `koanf:"output" toml:"output"`
}

type RepoConfig struct {
	Root     string `koanf:"root" toml:"root"`
	Manifest string `koanf:"manifest" toml:"manifest"`
}

type PathsConfig struct {
	Home       string `koanf:"home" toml:"home"`
	BackupDir  string `koanf:"backup_dir" toml:"backup_dir"`
	OverlayDir string `koanf:"overlay_dir" toml:"overlay_dir"`
}

type EnvironmentConfig struct {
	Files          []string `koanf:"files" toml:"files"`
	IncludeProcess bool     `koanf:"include_process" toml:"include_process"`
}

type SyncConfig struct {
	Strategy         string `koanf:"strategy" toml:"strategy"`
	ProcessTemplates bool   `koanf:"process_templates" toml:"process_templates"`
	DiffContext      int    `koanf:"diff_context" toml:"diff_context"`
}

type LogConfig struct {
	MaxSize    int  `koanf:"max_size" toml:"max_size"`
	MaxBackups int  `koanf:"max_backups" toml:"max_backups"`
	MaxAge     int  `koanf:"max_age" toml:"max_age"`
	Compress   bool `koanf:"compress" toml:"compress"`
}

type OutputConfig struct {
	Format string `koanf:"format" toml:"format"`
}

var validStrategies = []string{"ask", "replace", "skip"}
var validFormats = []string{"auto", "term", "terminal", "text", "plain", "json", "yaml"}

// Validate checks enumerated values and ranges
func (c *Config) Validate() error {
	if !contains(validStrategies, strings.ToLower(c.Sync.Strategy)) {
		return fmt.Errorf("sync.strategy must be one of %s, got %q", strings.Join(validStrategies, ", "), c.Sync.Strategy)
	}
	if !contains(validFormats, strings.ToLower(c.Output.Format)) {
		return fmt.Errorf("output.format must be one of %s, got %q", strings.Join(validFormats, ", "), c.Output.Format)
	}
	if c.Sync.DiffContext < 0 {
		return fmt.Errorf("sync.diff_context must not be negative")
	}
	if c.Repo.Manifest == "" {
		return fmt.Errorf("repo.manifest must not be empty")
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

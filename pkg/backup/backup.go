// Package backup keeps timestamped copies of system files before they are
// overwritten. The backup directory is flat and append-only: names are
// unique per run and nothing is ever pruned.
package backup

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/andisab/mise-en-place/pkg/clock"
	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/filesystem"
	"github.com/andisab/mise-en-place/pkg/logging"
	"github.com/andisab/mise-en-place/pkg/types"
)

// TimestampLayout is the suffix format of backup names
const TimestampLayout = "20060102-150405"

// Record describes one backup copy
type Record = types.BackupRecord

var namePattern = regexp.MustCompile(`^(.+)\.backup\.(\d{8}-\d{6})(?:-(\d+))?$`)

// Manager writes backups into a single directory
type Manager struct {
	fs    types.FS
	dir   string
	clock clock.Clock
}

// New creates a manager for dir. A nil clock uses the system time.
func New(fsys types.FS, dir string, clk clock.Clock) *Manager {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Manager{fs: fsys, dir: dir, clock: clk}
}

// Dir returns the backup directory
func (m *Manager) Dir() string {
	return m.dir
}

// EnsureWritable creates the backup directory and proves a file can be
// written there.
func (m *Manager) EnsureWritable() error {
	if err := m.fs.MkdirAll(m.dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "backup directory %s cannot be created", m.dir).
			WithDetail("dir", m.dir)
	}
	probe, err := m.fs.CreateTemp(m.dir, ".mep-probe-*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrIO, "backup directory %s is not writable", m.dir).
			WithDetail("dir", m.dir)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = m.fs.Remove(name)
	return nil
}

// Backup copies path into the backup directory, keeping its permissions.
func (m *Manager) Backup(path string) (*Record, error) {
	logger := logging.GetLogger("backup")

	info, err := m.fs.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "cannot back up %s", path).WithDetail("path", path)
	}
	if info.IsDir() {
		return nil, errors.Newf(errors.ErrIO, "cannot back up directory %s", path).WithDetail("path", path)
	}

	if err := m.fs.MkdirAll(m.dir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "backup directory %s cannot be created", m.dir)
	}

	now := m.clock.Now()
	target := m.uniqueName(filepath.Base(path), now)

	if err := filesystem.CopyFile(m.fs, path, target); err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to back up %s", path).
			WithDetail("path", path).
			WithDetail("backup", target)
	}

	logger.Info().Str("original", path).Str("backup", target).Msg("Backup created")
	return &Record{OriginalPath: path, BackupPath: target, CreatedAt: now}, nil
}

// uniqueName returns a backup path that does not exist yet, appending -N
// when a backup of the same file was taken in the same second.
func (m *Manager) uniqueName(base string, at time.Time) string {
	stem := fmt.Sprintf("%s.backup.%s", base, at.Format(TimestampLayout))
	candidate := filepath.Join(m.dir, stem)
	for n := 1; filesystem.Exists(m.fs, candidate); n++ {
		candidate = filepath.Join(m.dir, fmt.Sprintf("%s-%d", stem, n))
	}
	return candidate
}

// Restore copies a backup over original atomically
func (m *Manager) Restore(original, backupPath string) error {
	if err := filesystem.CopyFile(m.fs, backupPath, original); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to restore %s from %s", original, backupPath).
			WithDetail("path", original).
			WithDetail("backup", backupPath)
	}
	logger := logging.GetLogger("backup")
	logger.Info().Str("original", original).Str("backup", backupPath).Msg("Backup restored")
	return nil
}

// List returns the backups in the directory, oldest first. OriginalPath
// holds only the base name since the layout is flat. A missing directory
// yields no records.
func (m *Manager) List() ([]Record, error) {
	if !filesystem.IsDir(m.fs, m.dir) {
		return nil, nil
	}
	entries, err := m.fs.ReadDir(m.dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to read backup directory %s", m.dir)
	}

	var records []Record
	seq := make(map[string]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := namePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		created, err := time.ParseInLocation(TimestampLayout, match[2], time.Local)
		if err != nil {
			continue
		}
		path := filepath.Join(m.dir, entry.Name())
		if match[3] != "" {
			seq[path], _ = strconv.Atoi(match[3])
		}
		records = append(records, Record{
			OriginalPath: match[1],
			BackupPath:   path,
			CreatedAt:    created,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.OriginalPath != b.OriginalPath {
			return a.OriginalPath < b.OriginalPath
		}
		return seq[a.BackupPath] < seq[b.BackupPath]
	})
	return records, nil
}

package template

import (
	"bytes"
	"io/fs"

	"github.com/andisab/mise-en-place/pkg/backup"
	"github.com/andisab/mise-en-place/pkg/environment"
	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/filesystem"
	"github.com/andisab/mise-en-place/pkg/logging"
	"github.com/andisab/mise-en-place/pkg/types"
)

// Result reports one template processing run
type Result struct {
	Success    bool                `json:"success" yaml:"success"`
	OutputPath string              `json:"output_path" yaml:"output_path"`
	Variables  []string            `json:"variables,omitempty" yaml:"variables,omitempty"`
	Missing    []string            `json:"missing,omitempty" yaml:"missing,omitempty"`
	Backup     *types.BackupRecord `json:"backup,omitempty" yaml:"backup,omitempty"`
	Warnings   []error             `json:"-" yaml:"-"`
	Err        error               `json:"-" yaml:"-"`
}

// Report converts the result to the summary form stored on sync results
func (r Result) Report() *types.TemplateReport {
	return &types.TemplateReport{Variables: r.Variables, Missing: r.Missing}
}

// Processor renders templates and commits files atomically
type Processor struct {
	fs      types.FS
	backups *backup.Manager
}

// NewProcessor creates a processor. A nil backup manager disables backups.
func NewProcessor(fsys types.FS, backups *backup.Manager) *Processor {
	return &Processor{fs: fsys, backups: backups}
}

// Process renders templatePath with env and writes the result to
// outputPath. The output keeps the existing destination's mode, or the
// template's mode for a new file.
func (p *Processor) Process(templatePath string, env *environment.Resolved, outputPath string) Result {
	logger := logging.GetLogger("template")
	res := Result{OutputPath: outputPath}

	info, err := p.fs.Stat(templatePath)
	if err != nil {
		res.Err = errors.Wrapf(err, errors.ErrNotFound, "template not found: %s", templatePath).
			WithDetail("path", templatePath)
		return res
	}
	content, err := p.fs.ReadFile(templatePath)
	if err != nil {
		res.Err = errors.Wrapf(err, errors.ErrIO, "failed to read template %s", templatePath)
		return res
	}
	if !filesystem.IsText(content) {
		res.Err = errors.Newf(errors.ErrInvalidInput, "%s is binary and cannot be processed as a template", templatePath)
		return res
	}

	for _, v := range Detect(content) {
		res.Variables = append(res.Variables, v.Name)
	}

	rendered, missing := Substitute(content, env)
	res.Missing = missing
	for _, name := range missing {
		logger.Warn().Str("template", templatePath).Str("variable", name).Msg("Template variable not set")
		res.Warnings = append(res.Warnings,
			errors.Newf(errors.ErrTemplateWarning, "variable %s is not set; left as ${%s}", name, name).
				WithDetail("variable", name).
				WithDetail("template", templatePath))
	}

	perm := info.Mode().Perm()
	if existing, err := p.fs.Stat(outputPath); err == nil && !existing.IsDir() {
		perm = existing.Mode().Perm()
	}

	rec, err := p.Write(outputPath, rendered, perm)
	res.Backup = rec
	if err != nil {
		res.Err = err
		return res
	}

	res.Success = true
	logger.Info().
		Str("template", templatePath).
		Str("output", outputPath).
		Int("variables", len(res.Variables)).
		Int("missing", len(res.Missing)).
		Msg("Template processed")
	return res
}

// Write commits data to outputPath. An existing destination is backed up
// first; if the commit fails and the destination no longer matches the
// backup, the backup is restored. The returned record is non-nil whenever
// a backup was taken.
func (p *Processor) Write(outputPath string, data []byte, perm fs.FileMode) (*types.BackupRecord, error) {
	if info, err := p.fs.Stat(outputPath); err == nil && info.IsDir() {
		return nil, errors.Newf(errors.ErrIO, "destination %s is a directory", outputPath).
			WithDetail("path", outputPath)
	}

	var rec *types.BackupRecord
	if p.backups != nil && filesystem.Exists(p.fs, outputPath) {
		r, err := p.backups.Backup(outputPath)
		if err != nil {
			return nil, err
		}
		rec = r
	}

	if err := filesystem.WriteAtomic(p.fs, outputPath, data, perm); err != nil {
		if rec != nil && !p.intact(outputPath, rec.BackupPath) {
			if rerr := p.backups.Restore(outputPath, rec.BackupPath); rerr != nil {
				logger := logging.GetLogger("template")
				logger.Error().Err(rerr).Str("path", outputPath).Msg("Restore after failed write also failed")
			}
		}
		return rec, errors.Wrapf(err, errors.ErrIO, "failed to write %s", outputPath).
			WithDetail("path", outputPath)
	}
	return rec, nil
}

// intact reports whether path still holds exactly the backed-up bytes
func (p *Processor) intact(path, backupPath string) bool {
	current, err := p.fs.ReadFile(path)
	if err != nil {
		return false
	}
	saved, err := p.fs.ReadFile(backupPath)
	if err != nil {
		return true
	}
	return bytes.Equal(current, saved)
}

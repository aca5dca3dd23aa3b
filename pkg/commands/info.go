package commands

import (
	"fmt"
	"strings"

	"github.com/andisab/mise-en-place/pkg/environment"
	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/manifest"
	"github.com/andisab/mise-en-place/pkg/types"
)

// SecretsFiles lists the environment files in ascending priority with the
// verdict for each.
func (r *Runtime) SecretsFiles() *types.Report {
	report := types.NewReport("secrets-files")

	files := make([]environment.File, 0, len(r.envFiles()))
	for _, path := range r.envFiles() {
		f := environment.LoadFile(r.fs, path)
		if f.Trust == environment.TrustRejected {
			report.Warn(string(errors.ErrSecurityRejection), fmt.Sprintf("%s would be skipped: %s", path, f.Reason))
		}
		files = append(files, f)
	}
	report.Data = files
	return report
}

// ShellExportsData is the payload of a ShellExports report
type ShellExportsData struct {
	Shell  string `json:"shell" yaml:"shell"`
	Script string `json:"script" yaml:"script"`
}

// ShellExports produces shell code exporting the repository location,
// entry count, backup and overlay directories and the mapping arrays.
func (r *Runtime) ShellExports(shell string) *types.Report {
	report := types.NewReport("shell-exports")

	if shell != "bash" && shell != "zsh" {
		report.Error(string(errors.ErrInvalidInput), fmt.Sprintf("unsupported shell %q (want bash or zsh)", shell), types.CodeValidationError)
		return report
	}

	m := r.loadManifest(report)
	if m == nil {
		return report
	}

	arrays, err := m.ShellArrays(shell)
	if err != nil {
		report.Error(string(errCode(err)), err.Error(), types.CodeValidationError)
		return report
	}

	var b strings.Builder
	fmt.Fprintf(&b, "export DOTFILES_REPO=%s\n", manifest.ShellQuote(r.paths.DotfilesRoot()))
	fmt.Fprintf(&b, "export DOTFILES_COUNT=%d\n", len(m.Standard()))
	fmt.Fprintf(&b, "export DOTFILES_BACKUP_DIR=%s\n", manifest.ShellQuote(r.paths.BackupDir()))
	fmt.Fprintf(&b, "export DOTFILES_CUSTOM_DIR=%s\n", manifest.ShellQuote(r.paths.OverlayDir()))
	b.WriteString(arrays)

	report.Data = &ShellExportsData{Shell: shell, Script: b.String()}
	return report
}

// Backups lists the backup directory, oldest first
func (r *Runtime) Backups() *types.Report {
	report := types.NewReport("backups")

	records, err := r.backups().List()
	if err != nil {
		report.Error(string(errCode(err)), err.Error(), types.CodeTotalFailure)
		return report
	}
	if records == nil {
		records = []types.BackupRecord{}
	}
	report.Data = records
	return report
}

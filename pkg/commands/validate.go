package commands

import (
	"fmt"

	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/logging"
	"github.com/andisab/mise-en-place/pkg/manifest"
	"github.com/andisab/mise-en-place/pkg/types"
)

// ValidateData is the payload of a Validate report
type ValidateData struct {
	Manifest string `json:"manifest" yaml:"manifest"`
	Entries  int    `json:"entries" yaml:"entries"`
	Errors   int    `json:"errors" yaml:"errors"`
	Warnings int    `json:"warnings" yaml:"warnings"`
}

func errCode(err error) errors.ErrorCode {
	return errors.GetErrorCode(err)
}

// Validate checks the manifest and environment files in one pass and
// reports every defect. Verbose adds a line per valid entry.
func (r *Runtime) Validate(verbose bool) *types.Report {
	logger := logging.GetLogger("commands.validate")
	report := types.NewReport("validate")
	data := &ValidateData{Manifest: r.ManifestPath()}
	report.Data = data

	m, _ := r.loadManifestPartial(report)
	parseErrors := len(report.Errors())

	result := &manifest.ValidationReport{}
	if m != nil {
		data.Entries = len(m.Entries)
		result = manifest.Validate(r.fs, m, r.paths)
	}
	for _, err := range result.Errors {
		report.Error(string(errCode(err)), err.Error(), types.CodeValidationError)
	}
	for _, w := range result.Warnings {
		report.Warn(string(errCode(w)), w.Error())
	}

	_, rejections := r.resolveEnv(report)

	if verbose && m != nil && result.OK() {
		for _, e := range m.Entries {
			report.Info(fmt.Sprintf("line %d: %s", e.Line, e.Label()))
		}
	}

	data.Errors = len(report.Errors())
	data.Warnings = len(report.Warnings())
	if report.Success {
		report.Info(fmt.Sprintf("%d entries valid", data.Entries))
	}

	logger.Info().
		Int("entries", data.Entries).
		Int("parse_errors", parseErrors).
		Int("errors", data.Errors).
		Int("rejections", len(rejections)).
		Msg("Validation finished")
	return report
}

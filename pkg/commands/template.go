package commands

import (
	"fmt"

	"github.com/andisab/mise-en-place/pkg/environment"
	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/template"
	"github.com/andisab/mise-en-place/pkg/types"
)

// AnalyzeData is the payload of an AnalyzeTemplate report
type AnalyzeData struct {
	Template string             `json:"template" yaml:"template"`
	Analysis template.Analysis  `json:"analysis" yaml:"analysis"`
	EnvFiles []environment.File `json:"envFiles" yaml:"envFiles"`
}

// AnalyzeTemplate reports which variables a template uses and where each
// value would come from. Nothing is written.
func (r *Runtime) AnalyzeTemplate(path string) *types.Report {
	report := types.NewReport("analyze")
	path = r.paths.Expand(path)

	content, err := r.fs.ReadFile(path)
	if err != nil {
		report.Error(string(errors.ErrNotFound), fmt.Sprintf("cannot read template %s: %v", path, err), types.CodeTotalFailure)
		return report
	}

	env, _ := r.resolveEnv(report)
	analysis := template.Analyze(content, env)

	if analysis.Binary {
		report.Warn(string(errors.ErrInvalidInput), path+" is binary; it would be copied verbatim")
	}
	for _, name := range analysis.Missing {
		report.Warn(string(errors.ErrTemplateWarning), fmt.Sprintf("variable %s is not set", name))
	}
	for name, defs := range analysis.Conflicts {
		report.Info(fmt.Sprintf("%s is defined in %d places; %s wins", name, len(defs), defs[len(defs)-1].Source))
	}

	report.Data = &AnalyzeData{Template: path, Analysis: analysis, EnvFiles: env.Files()}
	return report
}

// ProcessTemplate renders one template to outputPath
func (r *Runtime) ProcessTemplate(templatePath, outputPath string) *types.Report {
	report := types.NewReport("process")
	templatePath = r.paths.Expand(templatePath)
	outputPath = r.paths.Expand(outputPath)

	env, _ := r.resolveEnv(report)
	res := template.NewProcessor(r.fs, r.backups()).Process(templatePath, env, outputPath)
	report.Data = &res

	for _, w := range res.Warnings {
		report.Warn(string(errCode(w)), w.Error())
	}
	if res.Err != nil {
		report.Error(string(errCode(res.Err)), res.Err.Error(), types.CodeTotalFailure)
		return report
	}
	report.Info(fmt.Sprintf("wrote %s (%d variables, %d missing)", outputPath, len(res.Variables), len(res.Missing)))
	return report
}

package commands

import (
	"context"
	"fmt"

	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/logging"
	"github.com/andisab/mise-en-place/pkg/sync"
	"github.com/andisab/mise-en-place/pkg/types"
)

// SyncOptions selects how a sync treats differing files
type SyncOptions struct {
	// Strategy overrides the configured strategy when non-empty.
	Strategy types.Strategy
	Force    bool
}

// Sync reconciles the repository with the system. Manifest parse errors
// abort before anything is written.
func (r *Runtime) Sync(ctx context.Context, opts SyncOptions) *types.Report {
	logger := logging.GetLogger("commands.sync")
	report := types.NewReport("sync")

	strategy := opts.Strategy
	if strategy == "" {
		s, err := types.ParseStrategy(r.cfg.Sync.Strategy)
		if err != nil {
			report.Error(string(errors.ErrConfig), err.Error(), types.CodeValidationError)
			return report
		}
		strategy = s
	}

	m := r.loadManifest(report)
	if m == nil {
		return report
	}

	env, rejections := r.resolveEnv(report)
	ctrl := sync.New(sync.Config{
		FS:         r.fs,
		Locator:    r.paths,
		Manifest:   m,
		Env:        env,
		Rejections: rejections,
		Backups:    r.backups(),
		Decider:    r.decider,
	})

	summary, err := ctrl.Run(ctx, sync.Options{
		Strategy:         strategy,
		Force:            opts.Force,
		ProcessTemplates: r.cfg.Sync.ProcessTemplates,
		DiffContext:      r.cfg.Sync.DiffContext,
	})
	if err != nil {
		report.Error(string(errCode(err)), err.Error(), types.CodeTotalFailure)
		return report
	}

	r.applySummary(report, summary)
	logger.Info().Str("strategy", string(strategy)).Str("code", string(summary.Code)).Msg("Sync finished")
	return report
}

// Collect copies system files back into the repository
func (r *Runtime) Collect(ctx context.Context) *types.Report {
	report := types.NewReport("collect")

	m := r.loadManifest(report)
	if m == nil {
		return report
	}

	ctrl := sync.New(sync.Config{FS: r.fs, Locator: r.paths, Manifest: m})
	summary := ctrl.Collect(ctx)
	for _, res := range summary.Results {
		if res.Reason == sync.ReasonNotOnSystem {
			report.Warn(string(errors.ErrNotFound), fmt.Sprintf("%s not found on system", res.Source))
		}
	}
	r.applySummary(report, summary)
	return report
}

// applySummary copies a run's verdict and per-file problems onto report
func (r *Runtime) applySummary(report *types.Report, summary *types.SyncSummary) {
	report.Summary = summary
	for _, res := range summary.Results {
		if res.Template != nil {
			for _, name := range res.Template.Missing {
				report.Warn(string(errors.ErrTemplateWarning),
					fmt.Sprintf("%s: variable %s is not set", res.Destination, name))
			}
		}
		if res.Outcome == types.OutcomeFailed {
			report.Messages = append(report.Messages, types.Message{
				Level: types.LevelError,
				Code:  string(errors.ErrIO),
				Text:  fmt.Sprintf("line %d (%s): %s", res.Entry.Line, res.Entry.Label(), res.Reason),
			})
		}
	}

	report.Code = summary.Code
	report.Success = summary.Code == types.CodeSuccess
	switch {
	case summary.Quit:
		report.Info(fmt.Sprintf("stopped early: %d applied, %d skipped", summary.Applied, summary.Skipped))
	case summary.DryRun:
		report.Info("dry run: no files were changed")
	}
}

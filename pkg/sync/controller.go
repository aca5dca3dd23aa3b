package sync

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"

	"github.com/andisab/mise-en-place/pkg/backup"
	"github.com/andisab/mise-en-place/pkg/diff"
	"github.com/andisab/mise-en-place/pkg/environment"
	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/filesystem"
	"github.com/andisab/mise-en-place/pkg/logging"
	"github.com/andisab/mise-en-place/pkg/manifest"
	"github.com/andisab/mise-en-place/pkg/merge"
	"github.com/andisab/mise-en-place/pkg/template"
	"github.com/andisab/mise-en-place/pkg/types"
	"github.com/rs/zerolog"
)

// Reasons recorded on skipped results
const (
	ReasonIdentical = "identical"
	ReasonKept      = "kept system version"
	ReasonDryRun    = "dry run"
	ReasonQuit      = "not processed: sync stopped"
	ReasonCancelled = "not processed: cancelled"
)

// Options controls one run
type Options struct {
	Strategy         types.Strategy
	Force            bool
	ProcessTemplates bool
	DiffContext      int
}

// Config wires a controller
type Config struct {
	FS       types.FS
	Locator  manifest.Locator
	Manifest *manifest.Manifest
	Env      *environment.Resolved
	// Rejections are environment files skipped while resolving Env.
	Rejections []environment.Rejection
	Backups    *backup.Manager
	// Decider answers prompts for the ask strategy.
	Decider merge.Decider
}

// Controller runs syncs for one manifest
type Controller struct {
	cfg       Config
	processor *template.Processor
	logger    zerolog.Logger
}

// New creates a controller
func New(cfg Config) *Controller {
	if cfg.Env == nil {
		cfg.Env = environment.FromMap(nil, "")
	}
	return &Controller{
		cfg:       cfg,
		processor: template.NewProcessor(cfg.FS, cfg.Backups),
		logger:    logging.GetLogger("sync"),
	}
}

// Run syncs every planned entry. The error is non-nil only when the run
// could not start: no decider for an interactive run, or an unwritable
// backup directory. Per-file failures are reported in the summary.
func (c *Controller) Run(ctx context.Context, opts Options) (*types.SyncSummary, error) {
	done := logging.LogOperationStart(c.logger, "sync")
	defer done()

	if opts.DiffContext <= 0 {
		opts.DiffContext = diff.DefaultContext
	}

	decider := merge.ForStrategy(opts.Strategy, opts.Force)
	if decider == nil {
		decider = c.cfg.Decider
	}
	if decider == nil {
		return nil, errors.New(errors.ErrInvalidInput, "interactive sync needs a terminal; use --strategy replace or skip")
	}

	summary := &types.SyncSummary{DryRun: opts.Strategy == types.StrategySkip}
	for _, r := range c.cfg.Rejections {
		summary.SecurityRejections = append(summary.SecurityRejections, fmt.Sprintf("%s: %s", r.Path, r.Reason))
	}

	if !summary.DryRun && c.cfg.Backups != nil {
		if err := c.cfg.Backups.EnsureWritable(); err != nil {
			return nil, err
		}
	}

	run := &runState{ctrl: c, opts: opts, decider: decider, summary: summary}
	for _, entry := range c.cfg.Manifest.Plan() {
		run.entry(ctx, entry)
	}

	summary.Finalize()
	c.logger.Info().
		Int("applied", summary.Applied).
		Int("skipped", summary.Skipped).
		Int("identical", summary.Identical).
		Int("failed", summary.Failed).
		Str("code", string(summary.Code)).
		Msg("Sync finished")
	return summary, nil
}

type runState struct {
	ctrl    *Controller
	opts    Options
	decider merge.Decider
	summary *types.SyncSummary
	stopped string
}

func (r *runState) entry(ctx context.Context, e types.MappingEntry) {
	if r.checkStop(ctx) {
		r.summary.Add(types.SyncResult{Entry: e, Outcome: types.OutcomeSkipped, Reason: r.stopped})
		return
	}

	units, err := Expand(r.ctrl.cfg.FS, r.ctrl.cfg.Locator, e)
	if err != nil {
		r.ctrl.logger.Warn().Err(err).Int("line", e.Line).Msg("Entry failed")
		r.summary.Add(types.SyncResult{Entry: e, Outcome: types.OutcomeFailed, Reason: err.Error()})
		return
	}

	for _, u := range units {
		if r.checkStop(ctx) {
			r.summary.Add(types.SyncResult{
				Entry:       e,
				Source:      u.Source,
				Destination: u.Destination,
				Outcome:     types.OutcomeSkipped,
				Reason:      r.stopped,
			})
			continue
		}
		r.summary.Add(r.unit(ctx, u))
	}
}

// checkStop reports whether remaining work must be skipped
func (r *runState) checkStop(ctx context.Context) bool {
	if r.stopped == "" && ctx.Err() != nil {
		r.stopped = ReasonCancelled
		r.summary.Quit = true
	}
	return r.stopped != ""
}

func (r *runState) unit(ctx context.Context, u Unit) types.SyncResult {
	fsys := r.ctrl.cfg.FS
	res := types.SyncResult{Entry: u.Entry, Source: u.Source, Destination: u.Destination}

	fail := func(err error) types.SyncResult {
		r.ctrl.logger.Warn().Err(err).Str("destination", u.Destination).Msg("File failed")
		res.Outcome = types.OutcomeFailed
		res.Reason = err.Error()
		return res
	}

	content, err := fsys.ReadFile(u.Source)
	if err != nil {
		return fail(errors.Wrapf(err, errors.ErrIO, "failed to read %s", u.Source))
	}

	templated := r.opts.ProcessTemplates && template.HasPlaceholders(content)
	proposed := content
	if templated {
		proposed, _ = template.Substitute(content, r.ctrl.cfg.Env)
	}

	current, exists, err := readExisting(fsys, u.Destination)
	if err != nil {
		return fail(err)
	}

	switch {
	case !exists:
		res.Status = types.StatusNew
	case bytes.Equal(current, proposed):
		res.Status = types.StatusIdentical
		res.Outcome = types.OutcomeSkipped
		res.Reason = ReasonIdentical
		return res
	case !filesystem.IsText(current) || !filesystem.IsText(proposed):
		res.Status = types.StatusBinary
	default:
		res.Status = types.StatusModified
	}

	if r.summary.DryRun {
		if exists && res.Status != types.StatusBinary {
			res.Diff = diff.LinesContext(string(current), string(proposed), r.opts.DiffContext).
				Unified(u.Destination, u.Source)
		}
		res.Decision = types.DecisionKeep
		res.Outcome = types.OutcomeSkipped
		res.Reason = ReasonDryRun
		return res
	}

	if exists {
		decision, err := r.decide(ctx, u, res.Status, current, proposed)
		res.Decision = decision
		if err != nil {
			return fail(err)
		}
		switch decision {
		case types.DecisionQuit:
			res.Outcome = types.OutcomeSkipped
			res.Reason = r.stopped
			return res
		case types.DecisionKeep:
			res.Outcome = types.OutcomeSkipped
			res.Reason = ReasonKept
			return res
		}
	} else {
		res.Decision = types.DecisionReplace
	}

	if templated {
		out := r.ctrl.processor.Process(u.Source, r.ctrl.cfg.Env, u.Destination)
		res.Backup = out.Backup
		if out.Err != nil {
			return fail(out.Err)
		}
		res.Template = out.Report()
	} else {
		rec, err := r.ctrl.processor.Write(u.Destination, proposed, r.permFor(u))
		res.Backup = rec
		if err != nil {
			return fail(err)
		}
	}

	r.ctrl.logger.Info().Str("destination", u.Destination).Str("status", string(res.Status)).Msg("File synced")
	res.Outcome = types.OutcomeApplied
	return res
}

// decide asks the decider until it settles on something other than
// ViewAgain. Cancellation and Quit both stop the run.
func (r *runState) decide(ctx context.Context, u Unit, status types.FileStatus, current, proposed []byte) (types.Decision, error) {
	d := diff.Bytes(current, proposed)
	if !d.Binary {
		d = diff.LinesContext(string(current), string(proposed), r.opts.DiffContext)
	}

	for round := 1; ; round++ {
		decision, err := r.decider.Decide(ctx, merge.Prompt{
			Source:      u.Source,
			Destination: u.Destination,
			Status:      status,
			Diff:        d,
			Round:       round,
		})
		if err != nil {
			if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
				r.stopped = ReasonCancelled
				r.summary.Quit = true
				return types.DecisionQuit, nil
			}
			return decision, errors.Wrap(err, errors.ErrInternal, "failed to read decision")
		}

		switch decision {
		case types.DecisionViewAgain:
			continue
		case types.DecisionQuit:
			r.stopped = ReasonQuit
			r.summary.Quit = true
		}
		return decision, nil
	}
}

// permFor keeps the destination's mode when it exists, else the source's
func (r *runState) permFor(u Unit) fs.FileMode {
	fsys := r.ctrl.cfg.FS
	if info, err := fsys.Stat(u.Destination); err == nil {
		return info.Mode().Perm()
	}
	if info, err := fsys.Stat(u.Source); err == nil {
		return info.Mode().Perm()
	}
	return 0644
}

func readExisting(fsys types.FS, path string) ([]byte, bool, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, errors.ErrIO, "cannot inspect %s", path)
	}
	if info.IsDir() {
		return nil, false, errors.Newf(errors.ErrIO, "destination %s is a directory", path)
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, false, errors.Wrapf(err, errors.ErrIO, "failed to read %s", path)
	}
	return data, true, nil
}

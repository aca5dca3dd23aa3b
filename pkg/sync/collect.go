package sync

import (
	"bytes"
	"context"
	"path/filepath"

	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/filesystem"
	"github.com/andisab/mise-en-place/pkg/logging"
	"github.com/andisab/mise-en-place/pkg/template"
	"github.com/andisab/mise-en-place/pkg/types"
)

// Reasons recorded by Collect
const (
	ReasonNotOnSystem = "not found on system"
	ReasonTemplate    = "repository file is a template"
)

// Collect copies system files back into the repository for every standard
// entry. Missing system files and templated repository files are skipped.
// The repository is expected to be under version control so no backups
// are taken.
func (c *Controller) Collect(ctx context.Context) *types.SyncSummary {
	done := logging.LogOperationStart(c.logger, "collect")
	defer done()

	summary := &types.SyncSummary{}
	for _, e := range c.cfg.Manifest.Plan() {
		if e.IsOverlay() {
			continue
		}
		if ctx.Err() != nil {
			summary.Quit = true
			summary.Add(types.SyncResult{Entry: e, Outcome: types.OutcomeSkipped, Reason: ReasonCancelled})
			continue
		}
		for _, res := range c.collectEntry(e) {
			summary.Add(res)
		}
	}

	summary.Finalize()
	return summary
}

func (c *Controller) collectEntry(e types.MappingEntry) []types.SyncResult {
	fsys := c.cfg.FS
	repo := c.cfg.Locator.RepoPath(e.RepoPath)

	system, err := c.cfg.Locator.SystemPath(e.SystemPath)
	if err != nil {
		return []types.SyncResult{{Entry: e, Outcome: types.OutcomeFailed, Reason: err.Error()}}
	}
	if !filesystem.Exists(fsys, system) {
		c.logger.Warn().Str("path", system).Msg("System file missing, nothing to collect")
		return []types.SyncResult{{
			Entry:       e,
			Source:      system,
			Destination: repo,
			Outcome:     types.OutcomeSkipped,
			Reason:      ReasonNotOnSystem,
		}}
	}

	pairs := [][2]string{{system, repo}}
	if filesystem.IsDir(fsys, system) {
		files, err := filesystem.WalkFiles(fsys, system)
		if err != nil {
			return []types.SyncResult{{Entry: e, Source: system, Outcome: types.OutcomeFailed, Reason: err.Error()}}
		}
		pairs = pairs[:0]
		for _, rel := range files {
			pairs = append(pairs, [2]string{filepath.Join(system, rel), filepath.Join(repo, rel)})
		}
	}

	results := make([]types.SyncResult, 0, len(pairs))
	for _, p := range pairs {
		results = append(results, c.collectFile(e, p[0], p[1]))
	}
	return results
}

func (c *Controller) collectFile(e types.MappingEntry, src, dst string) types.SyncResult {
	fsys := c.cfg.FS
	res := types.SyncResult{Entry: e, Source: src, Destination: dst, Decision: types.DecisionReplace}

	data, err := fsys.ReadFile(src)
	if err != nil {
		res.Outcome = types.OutcomeFailed
		res.Reason = errors.Wrapf(err, errors.ErrIO, "failed to read %s", src).Error()
		return res
	}

	current, exists, err := readExisting(fsys, dst)
	switch {
	case err != nil:
		res.Outcome = types.OutcomeFailed
		res.Reason = err.Error()
		return res
	case !exists:
		res.Status = types.StatusNew
	case bytes.Equal(current, data):
		res.Status = types.StatusIdentical
		res.Outcome = types.OutcomeSkipped
		res.Reason = ReasonIdentical
		return res
	case template.HasPlaceholders(current):
		res.Status = types.StatusModified
		res.Outcome = types.OutcomeSkipped
		res.Reason = ReasonTemplate
		return res
	default:
		res.Status = types.StatusModified
	}

	if err := filesystem.CopyFile(fsys, src, dst); err != nil {
		res.Outcome = types.OutcomeFailed
		res.Reason = errors.Wrapf(err, errors.ErrIO, "failed to copy %s", src).Error()
		return res
	}
	c.logger.Info().Str("source", src).Str("destination", dst).Msg("File collected")
	res.Outcome = types.OutcomeApplied
	return res
}

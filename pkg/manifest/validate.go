package manifest

import (
	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/filesystem"
	"github.com/andisab/mise-en-place/pkg/types"
)

// Locator resolves manifest paths to filesystem locations
type Locator interface {
	RepoPath(rel string) string
	OverlayPath(name string) string
	SystemPath(dest string) (string, error)
}

// ValidationReport holds every defect found in one pass
type ValidationReport struct {
	Errors   errors.List
	Warnings errors.List
}

// OK reports whether the manifest can be synced
func (r *ValidationReport) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks every entry against the filesystem and reports all
// problems at once rather than stopping at the first.
func Validate(fsys types.FS, m *Manifest, loc Locator) *ValidationReport {
	report := &ValidationReport{}

	if len(m.Entries) == 0 {
		report.Errors.Add(errors.New(errors.ErrValidation, "no file mappings found in manifest"))
		return report
	}

	standardByDest := make(map[string]types.MappingEntry)
	for _, e := range m.Standard() {
		standardByDest[e.SystemPath] = e
	}

	seenDest := make(map[types.EntryKind]map[string]int)
	seenRepo := make(map[string]int)

	for _, e := range m.Entries {
		if _, err := loc.SystemPath(e.SystemPath); err != nil {
			report.Errors.Add(errors.Wrapf(err, errors.ErrValidation, "line %d: invalid destination", e.Line).
				WithDetail("line", e.Line))
		}

		if e.IsOverlay() {
			validateOverlay(fsys, loc, e, standardByDest, report)
		} else {
			source := loc.RepoPath(e.RepoPath)
			if !filesystem.Exists(fsys, source) {
				report.Errors.Add(errors.Newf(errors.ErrValidation, "line %d: source not found: %s", e.Line, e.RepoPath).
					WithDetail("line", e.Line).
					WithDetail("path", source))
			}
			if prev, ok := seenRepo[e.RepoPath]; ok {
				report.Warnings.Add(errors.Newf(errors.ErrValidation, "line %d: %s is also mapped on line %d", e.Line, e.RepoPath, prev).
					WithDetail("line", e.Line))
			}
			seenRepo[e.RepoPath] = e.Line
		}

		if seenDest[e.Kind] == nil {
			seenDest[e.Kind] = make(map[string]int)
		}
		if prev, ok := seenDest[e.Kind][e.SystemPath]; ok {
			report.Warnings.Add(errors.Newf(errors.ErrValidation,
				"line %d: destination %s is also mapped on line %d; the later entry wins", e.Line, e.SystemPath, prev).
				WithDetail("line", e.Line))
		}
		seenDest[e.Kind][e.SystemPath] = e.Line
	}

	return report
}

func validateOverlay(fsys types.FS, loc Locator, e types.MappingEntry, standardByDest map[string]types.MappingEntry, report *ValidationReport) {
	overlay := loc.OverlayPath(e.OverlayName)
	if filesystem.Exists(fsys, overlay) {
		return
	}

	if fallback, ok := standardByDest[e.SystemPath]; ok && filesystem.Exists(fsys, loc.RepoPath(fallback.RepoPath)) {
		report.Warnings.Add(errors.Newf(errors.ErrValidation,
			"line %d: custom file not found: %s (expected at %s), repository version %s will be used",
			e.Line, e.OverlayName, overlay, fallback.RepoPath).
			WithDetail("line", e.Line))
		return
	}

	report.Errors.Add(errors.Newf(errors.ErrValidation, "line %d: custom file not found: %s (expected at %s)",
		e.Line, e.OverlayName, overlay).
		WithDetail("line", e.Line).
		WithDetail("path", overlay))
}

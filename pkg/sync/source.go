package sync

import (
	"path/filepath"

	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/filesystem"
	"github.com/andisab/mise-en-place/pkg/manifest"
	"github.com/andisab/mise-en-place/pkg/types"
)

// Unit is one file to reconcile
type Unit struct {
	Entry       types.MappingEntry
	Source      string
	Destination string
}

// ResolveSource picks the file an entry syncs from. Overlay entries try
// the overlay file, then their repository fallback.
func ResolveSource(fsys types.FS, loc manifest.Locator, e types.MappingEntry) (string, error) {
	var candidates []string
	if e.IsOverlay() {
		candidates = append(candidates, loc.OverlayPath(e.OverlayName))
	}
	if e.RepoPath != "" {
		candidates = append(candidates, loc.RepoPath(e.RepoPath))
	}

	for _, c := range candidates {
		if filesystem.Exists(fsys, c) {
			return c, nil
		}
	}
	return "", errors.Newf(errors.ErrNotFound, "source not found for %s", e.Label()).
		WithDetail("line", e.Line).
		WithDetail("candidates", candidates)
}

// Expand resolves an entry into units. A directory source yields one unit
// per file below it, mirrored under the destination.
func Expand(fsys types.FS, loc manifest.Locator, e types.MappingEntry) ([]Unit, error) {
	src, err := ResolveSource(fsys, loc, e)
	if err != nil {
		return nil, err
	}
	dest, err := loc.SystemPath(e.SystemPath)
	if err != nil {
		return nil, err
	}

	if !filesystem.IsDir(fsys, src) {
		return []Unit{{Entry: e, Source: src, Destination: dest}}, nil
	}

	files, err := filesystem.WalkFiles(fsys, src)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to read directory %s", src)
	}
	units := make([]Unit, 0, len(files))
	for _, rel := range files {
		units = append(units, Unit{
			Entry:       e,
			Source:      filepath.Join(src, rel),
			Destination: filepath.Join(dest, rel),
		})
	}
	return units, nil
}

package manifest

import (
	"bufio"
	"bytes"
	stderrors "errors"
	"io"
	"io/fs"
	"strings"

	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/paths"
	"github.com/andisab/mise-en-place/pkg/types"
)

// Manifest is the ordered list of parsed entries
type Manifest struct {
	Path    string
	Entries []types.MappingEntry
}

// Load reads and parses the manifest at path. A missing or unreadable file
// is a CONFIG_ERROR and yields no manifest. Malformed lines yield a manifest
// holding the valid entries together with an errors.List.
func Load(fsys types.FS, path string) (*Manifest, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Newf(errors.ErrConfig, "manifest not found: %s", path).WithDetail("path", path)
		}
		return nil, errors.Wrapf(err, errors.ErrConfig, "cannot read manifest %s", path)
	}

	m, parseErr := Parse(bytes.NewReader(data))
	m.Path = path
	return m, parseErr
}

// Parse reads manifest lines from r. The returned manifest is never nil; the
// error, when present, is an errors.List with one CONFIG_ERROR per bad line.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	var errs errors.List

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := parseLine(lineNum, line)
		if err != nil {
			errs.Add(err)
			continue
		}
		m.Entries = append(m.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		errs.Add(errors.Wrap(err, errors.ErrConfig, "failed to read manifest"))
	}

	return m, errs.Err()
}

func parseLine(lineNum int, line string) (types.MappingEntry, error) {
	entry := types.MappingEntry{Line: lineNum, Kind: types.KindStandard}

	var source, dest string
	if strings.HasPrefix(line, types.CustomPrefix) {
		rest := line[len(types.CustomPrefix):]
		idx := strings.LastIndex(rest, ":")
		if idx < 0 {
			return entry, lineError(lineNum, line, "invalid custom format, expected custom:name:destination")
		}
		source, dest = rest[:idx], rest[idx+1:]
		entry.Kind = types.KindCustomOverlay
	} else {
		idx := strings.Index(line, ":")
		if idx < 0 {
			return entry, lineError(lineNum, line, "invalid format, expected repoPath:systemPath")
		}
		source, dest = line[:idx], line[idx+1:]
	}

	source = strings.TrimSpace(source)
	dest = strings.TrimSpace(dest)
	if source == "" || dest == "" {
		return entry, lineError(lineNum, line, "empty path")
	}
	if paths.IsDangerousDestination(dest) {
		return entry, lineError(lineNum, line, "refusing to manage root or home directory")
	}
	for _, p := range []string{source, dest} {
		if err := paths.ValidatePathSecurity(p); err != nil {
			return entry, errors.Wrapf(err, errors.ErrConfig, "line %d: invalid path %q", lineNum, p).
				WithDetail("line", lineNum).
				WithDetail("text", line)
		}
	}

	if entry.Kind == types.KindCustomOverlay {
		entry.OverlayName = source
	} else {
		entry.RepoPath = source
	}
	entry.SystemPath = dest
	return entry, nil
}

func lineError(lineNum int, line, reason string) error {
	return errors.Newf(errors.ErrConfig, "line %d: %s: %q", lineNum, reason, line).
		WithDetail("line", lineNum).
		WithDetail("text", line)
}

// Standard returns the entries that map repository files
func (m *Manifest) Standard() []types.MappingEntry {
	return m.filter(types.KindStandard)
}

// Overlays returns the custom overlay entries
func (m *Manifest) Overlays() []types.MappingEntry {
	return m.filter(types.KindCustomOverlay)
}

func (m *Manifest) filter(kind types.EntryKind) []types.MappingEntry {
	var out []types.MappingEntry
	for _, e := range m.Entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Plan merges entries into one sync unit per destination, ordered by the
// first line naming that destination. An overlay entry for a destination
// that also has a standard entry keeps the standard path as its fallback.
// When several entries of the same kind name one destination the last one
// wins.
func (m *Manifest) Plan() []types.MappingEntry {
	type slot struct {
		standard *types.MappingEntry
		overlay  *types.MappingEntry
	}
	var order []string
	slots := make(map[string]*slot)

	for i := range m.Entries {
		e := m.Entries[i]
		s, ok := slots[e.SystemPath]
		if !ok {
			s = &slot{}
			slots[e.SystemPath] = s
			order = append(order, e.SystemPath)
		}
		if e.IsOverlay() {
			s.overlay = &e
		} else {
			s.standard = &e
		}
	}

	plan := make([]types.MappingEntry, 0, len(order))
	for _, dest := range order {
		s := slots[dest]
		switch {
		case s.overlay == nil:
			plan = append(plan, *s.standard)
		case s.standard == nil:
			plan = append(plan, *s.overlay)
		default:
			merged := *s.overlay
			merged.RepoPath = s.standard.RepoPath
			plan = append(plan, merged)
		}
	}
	return plan
}

package types

import "fmt"

// EntryKind distinguishes plain repository mappings from overlay mappings
type EntryKind int

const (
	// KindStandard maps a repository path to a system path.
	KindStandard EntryKind = iota
	// KindCustomOverlay maps a file from the overlay directory to a system
	// path, falling back to the repository file when the overlay is absent.
	KindCustomOverlay
)

func (k EntryKind) String() string {
	switch k {
	case KindStandard:
		return "standard"
	case KindCustomOverlay:
		return "custom"
	default:
		return "unknown"
	}
}

// CustomPrefix starts every overlay line in the manifest
const CustomPrefix = "custom:"

// MappingEntry is one parsed manifest line. Entries are values and are not
// modified after parsing.
type MappingEntry struct {
	// Line is the 1-based manifest line the entry came from.
	Line int       `json:"line" yaml:"line"`
	Kind EntryKind `json:"kind" yaml:"kind"`
	// RepoPath is relative to the repository root. For overlay entries it
	// is the fallback path and may be empty.
	RepoPath string `json:"repoPath,omitempty" yaml:"repoPath,omitempty"`
	// OverlayName is relative to the overlay directory.
	OverlayName string `json:"overlayName,omitempty" yaml:"overlayName,omitempty"`
	// SystemPath is relative to the home directory.
	SystemPath string `json:"systemPath" yaml:"systemPath"`
}

// IsOverlay reports whether the entry resolves through the overlay directory
func (e MappingEntry) IsOverlay() bool {
	return e.Kind == KindCustomOverlay
}

// Label is how an entry is named in messages
func (e MappingEntry) Label() string {
	if e.IsOverlay() {
		return fmt.Sprintf("%s%s -> %s", CustomPrefix, e.OverlayName, e.SystemPath)
	}
	return fmt.Sprintf("%s -> %s", e.RepoPath, e.SystemPath)
}

// MarshalText renders the kind by name in json and yaml output
func (k EntryKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

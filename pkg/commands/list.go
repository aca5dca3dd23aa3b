package commands

import (
	"github.com/andisab/mise-en-place/pkg/filesystem"
	"github.com/andisab/mise-en-place/pkg/logging"
	"github.com/andisab/mise-en-place/pkg/types"
)

// Overlay statuses shown by List
const (
	OverlayActive   = "CUSTOM"
	OverlayNotFound = "CUSTOM NOT FOUND"
	OverlayOnly     = "CUSTOM ONLY"
)

// ListItem is one planned mapping
type ListItem struct {
	Entry         types.MappingEntry `json:"entry" yaml:"entry"`
	Source        string             `json:"source" yaml:"source"`
	Destination   string             `json:"destination" yaml:"destination"`
	SourceExists  bool               `json:"sourceExists" yaml:"sourceExists"`
	SystemExists  bool               `json:"systemExists" yaml:"systemExists"`
	OverlayStatus string             `json:"overlayStatus,omitempty" yaml:"overlayStatus,omitempty"`
}

// ListData is the payload of a List report
type ListData struct {
	Manifest string     `json:"manifest" yaml:"manifest"`
	Root     string     `json:"root" yaml:"root"`
	Items    []ListItem `json:"items" yaml:"items"`
}

// List shows every planned mapping with the source that would be used
func (r *Runtime) List() *types.Report {
	logger := logging.GetLogger("commands.list")
	report := types.NewReport("list")

	m := r.loadManifest(report)
	if m == nil {
		return report
	}

	data := &ListData{Manifest: m.Path, Root: r.paths.DotfilesRoot()}
	for _, e := range m.Plan() {
		item := ListItem{Entry: e}

		if dest, err := r.paths.SystemPath(e.SystemPath); err == nil {
			item.Destination = dest
			item.SystemExists = filesystem.Exists(r.fs, dest)
		} else {
			report.Warn(string(errCode(err)), err.Error())
		}

		switch {
		case !e.IsOverlay():
			item.Source = r.paths.RepoPath(e.RepoPath)
		case filesystem.Exists(r.fs, r.paths.OverlayPath(e.OverlayName)):
			item.Source = r.paths.OverlayPath(e.OverlayName)
			item.OverlayStatus = OverlayActive
			if e.RepoPath == "" {
				item.OverlayStatus = OverlayOnly
			}
		case e.RepoPath != "":
			item.Source = r.paths.RepoPath(e.RepoPath)
			item.OverlayStatus = OverlayNotFound
		default:
			item.Source = r.paths.OverlayPath(e.OverlayName)
			item.OverlayStatus = OverlayNotFound
		}
		item.SourceExists = filesystem.Exists(r.fs, item.Source)

		data.Items = append(data.Items, item)
	}

	report.Data = data
	logger.Info().Int("entries", len(data.Items)).Msg("Listed mappings")
	return report
}

// Package sync reconciles manifest entries against the live filesystem.
//
// A run walks the manifest plan in order. Each entry resolves its source
// (overlay first, then repository), expands directories into per-file
// units, diffs the proposed content against the system copy and asks a
// merge.Decider what to do. Replacements go through the template
// processor so every write is backed up and committed atomically.
//
// Entry failures are recorded and the run continues. Quit, or context
// cancellation, marks everything not yet handled as skipped.
package sync

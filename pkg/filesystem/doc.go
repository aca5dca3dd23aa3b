// Package filesystem provides the afero-backed implementation of types.FS
// used by every component, plus the atomic write and copy helpers that
// guarantee a destination is only ever observed fully old or fully new.
package filesystem

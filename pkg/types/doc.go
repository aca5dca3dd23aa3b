// Package types defines the core types and interfaces shared by the sync
// engine: manifest entries, sync decisions and outcomes, operation reports
// and the filesystem abstraction every component writes through.
package types

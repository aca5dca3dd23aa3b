// Package environment builds the immutable variable snapshot used for
// template substitution.
//
// Tiers are merged in ascending priority: the process environment, then
// each environment file in order. Files are parsed as KEY=VALUE lines and
// never executed. A file containing command substitution or statement
// separators in any value is rejected as a whole and skipped.
package environment

// Package testutil provides utilities for testing mise-en-place components.
//
// Key components:
//   - TestEnvironment: repository, home, overlay and backup directories
//     wired to a filesystem and resolved paths, with manifest helpers
//   - FaultyFS: a types.FS wrapper that injects failures into chosen
//     operations for rollback tests
//   - File assertions over any types.FS
//
// Usage guidelines:
//   - Prefer EnvMemoryOnly; use EnvIsolated only when real permissions matter
//   - Define test data inline
//   - Each test builds its own environment; nothing is shared
package testutil

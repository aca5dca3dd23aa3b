// Package paths provides centralized path handling for mise-en-place.
//
// It resolves the repository root, the home directory that manifest
// destinations are relative to, the backup and overlay directories, and
// the XDG config and state locations.
//
// # Environment Variables
//
//   - DOTFILES_ROOT: repository root (default: git root, then cwd)
//   - MEP_HOME: home directory for destinations (default: $HOME)
//   - DOTFILES_BACKUP_DIR: backup directory (default: ~/.config/dotfiles.bak)
//   - DOTFILES_CUSTOM_DIR: overlay directory (default: ~/.config/dotfiles.custom)
//   - MEP_CONFIG_DIR: settings directory (default: $XDG_CONFIG_HOME/mise-en-place)
//
// Destinations are always resolved below the home directory. Paths that
// would escape it, or that name the home directory itself, are rejected.
package paths

// Package manifest parses and validates the dotfiles manifest.
//
// Each non-blank, non-comment line maps a repository path to a path under
// the home directory:
//
//	zsh/.zshrc:.zshrc
//	custom:work:gitconfig:.gitconfig
//
// Overlay lines start with "custom:" and are split on their last colon, so
// overlay names may themselves contain colons. A malformed line never stops
// parsing; every defect is collected and reported together.
package manifest

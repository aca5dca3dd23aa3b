package paths

import (
	"path/filepath"
	"strings"

	"github.com/andisab/mise-en-place/pkg/errors"
)

// ValidatePath rejects empty paths, NUL bytes and overlong paths.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New(errors.ErrInvalidInput, "path cannot be empty")
	}
	if strings.Contains(path, "\x00") {
		return errors.New(errors.ErrInvalidInput, "path contains null bytes")
	}
	if len(path) > 4096 {
		return errors.New(errors.ErrInvalidInput, "path exceeds maximum length")
	}
	return nil
}

// ValidatePathSecurity rejects parent directory references and characters
// commonly used to disguise a path.
func ValidatePathSecurity(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	}) {
		if part == ".." {
			return errors.Newf(errors.ErrInvalidInput, "path traversal not allowed: %s", path)
		}
	}

	for _, r := range path {
		if r == '\u202e' || // Right-to-left override
			r == '\u200b' || // Zero-width space
			r == '\u00ad' { // Soft hyphen
			return errors.New(errors.ErrInvalidInput, "path contains suspicious Unicode characters")
		}
	}

	return nil
}

// IsDangerousDestination reports destinations that name the filesystem root
// or the home directory itself.
func IsDangerousDestination(dest string) bool {
	switch strings.TrimRight(strings.TrimSpace(dest), "/") {
	case "", "~":
		return true
	}
	return false
}

// ContainsPath checks if child is contained within parent.
func ContainsPath(parent, child string) bool {
	rel, err := filepath.Rel(filepath.Clean(parent), filepath.Clean(child))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

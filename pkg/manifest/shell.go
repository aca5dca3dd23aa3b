package manifest

import (
	"fmt"
	"strings"
)

// ShellArrays renders two index-aligned arrays of repository paths and
// destinations for bash or zsh.
func (m *Manifest) ShellArrays(shell string) (string, error) {
	switch strings.ToLower(shell) {
	case "bash", "zsh":
	default:
		return "", fmt.Errorf("unsupported shell: %s", shell)
	}

	standard := m.Standard()
	repo := make([]string, len(standard))
	dest := make([]string, len(standard))
	for i, e := range standard {
		repo[i] = ShellQuote(e.RepoPath)
		dest[i] = ShellQuote(e.SystemPath)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "DOTFILES_REPO_PATHS=(%s)\n", strings.Join(repo, " "))
	fmt.Fprintf(&b, "DOTFILES_DEST_PATHS=(%s)\n", strings.Join(dest, " "))
	return b.String(), nil
}

// ShellQuote wraps s in single quotes so the shell reads it literally.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

package template

import (
	"github.com/andisab/mise-en-place/pkg/environment"
)

// Substitute replaces every resolvable placeholder in content with its
// value. It returns the rendered bytes and the distinct names left
// unresolved, in order of first appearance.
func Substitute(content []byte, env *environment.Resolved) ([]byte, []string) {
	var missing []string
	seen := make(map[string]bool)

	out := tokenPattern.ReplaceAllFunc(content, func(token []byte) []byte {
		name := string(token[2 : len(token)-1])
		if value, ok := env.Lookup(name); ok {
			return []byte(value)
		}
		if !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
		return token
	})
	return out, missing
}

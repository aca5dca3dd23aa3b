package environment

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/andisab/mise-en-place/pkg/errors"
)

// Pair is one assignment in file order
type Pair struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// unsafeSequences trigger rejection of the whole file when found in a value.
var unsafeSequences = []string{"`", "$(", ";", "&&", "||"}

// Parse reads KEY=VALUE lines. Blank lines and # comments are ignored, an
// optional "export " prefix is accepted, and one pair of matching outer
// quotes is removed from the value. Any value holding an unsafe sequence,
// or any line that is not an assignment, fails the whole input with a
// SECURITY_REJECTION.
func Parse(data []byte) ([]Pair, error) {
	var pairs []Pair

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if rest, ok := strings.CutPrefix(line, "export"); ok && rest != "" && (rest[0] == ' ' || rest[0] == '\t') {
			line = strings.TrimSpace(rest)
		}

		key, raw, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || !keyPattern.MatchString(key) {
			return nil, errors.Newf(errors.ErrSecurityRejection, "line %d is not a KEY=VALUE assignment", lineNum).
				WithDetail("line", lineNum)
		}

		raw = strings.TrimSpace(raw)
		if seq := unsafeSequence(raw); seq != "" {
			return nil, errors.Newf(errors.ErrSecurityRejection, "line %d: value of %s contains %q", lineNum, key, seq).
				WithDetail("line", lineNum).
				WithDetail("key", key)
		}

		pairs = append(pairs, Pair{Key: key, Value: unquote(raw)})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrIO, "failed to read environment file")
	}

	return pairs, nil
}

func unsafeSequence(value string) string {
	for _, seq := range unsafeSequences {
		if strings.Contains(value, seq) {
			return seq
		}
	}
	return ""
}

func unquote(v string) string {
	if len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if (first == '"' || first == '\'') && first == last {
			return v[1 : len(v)-1]
		}
	}
	return v
}

package template

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/andisab/mise-en-place/pkg/environment"
	"github.com/andisab/mise-en-place/pkg/filesystem"
)

var tokenPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// VariableState says whether a placeholder can be filled
type VariableState string

const (
	StateResolved VariableState = "resolved"
	StateMissing  VariableState = "missing"
)

// Variable is one distinct placeholder name in a template
type Variable struct {
	Name        string        `json:"name" yaml:"name"`
	Occurrences int           `json:"occurrences" yaml:"occurrences"`
	State       VariableState `json:"state,omitempty" yaml:"state,omitempty"`
	Value       string        `json:"-" yaml:"-"`
	Source      string        `json:"source,omitempty" yaml:"source,omitempty"`
}

// Detect returns the distinct placeholders in content sorted by name.
// Binary content has no placeholders.
func Detect(content []byte) []Variable {
	if !filesystem.IsText(content) {
		return nil
	}

	counts := make(map[string]int)
	for _, m := range tokenPattern.FindAllSubmatch(content, -1) {
		counts[string(m[1])]++
	}

	vars := make([]Variable, 0, len(counts))
	for name, n := range counts {
		vars = append(vars, Variable{Name: name, Occurrences: n})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}

// HasPlaceholders reports whether content holds at least one placeholder
func HasPlaceholders(content []byte) bool {
	return filesystem.IsText(content) && tokenPattern.Match(content)
}

// Analysis is the read-only report for one template
type Analysis struct {
	Variables []Variable                          `json:"variables" yaml:"variables"`
	Missing   []string                            `json:"missing,omitempty" yaml:"missing,omitempty"`
	Conflicts map[string][]environment.Definition `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	Hints     []string                            `json:"hints,omitempty" yaml:"hints,omitempty"`
	Binary    bool                                `json:"binary,omitempty" yaml:"binary,omitempty"`
}

// Analyze resolves every placeholder in content against env without
// writing anything. Conflicts are limited to variables the template uses.
func Analyze(content []byte, env *environment.Resolved) Analysis {
	a := Analysis{Binary: !filesystem.IsText(content)}
	if a.Binary {
		return a
	}

	conflicts := env.Conflicts()
	for _, v := range Detect(content) {
		if value, ok := env.Lookup(v.Name); ok {
			v.State = StateResolved
			v.Value = value
			v.Source = env.Source(v.Name)
		} else {
			v.State = StateMissing
			a.Missing = append(a.Missing, v.Name)
		}
		if defs, ok := conflicts[v.Name]; ok {
			if a.Conflicts == nil {
				a.Conflicts = make(map[string][]environment.Definition)
			}
			a.Conflicts[v.Name] = defs
		}
		a.Variables = append(a.Variables, v)
	}

	for _, name := range a.Missing {
		a.Hints = append(a.Hints, fmt.Sprintf("add %s=<value> to one of your environment files", name))
	}
	return a
}

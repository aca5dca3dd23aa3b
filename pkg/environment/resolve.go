package environment

import (
	stderrors "errors"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/logging"
	"github.com/andisab/mise-en-place/pkg/types"
)

// ProcessSource names the process environment tier
const ProcessSource = "process"

// Trust is the verdict on one environment file
type Trust string

const (
	TrustValid    Trust = "valid"
	TrustRejected Trust = "rejected"
	TrustMissing  Trust = "missing"
)

// File is one environment file as loaded
type File struct {
	Path   string `json:"path" yaml:"path"`
	Trust  Trust  `json:"trust" yaml:"trust"`
	Pairs  []Pair `json:"-" yaml:"-"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Rejection records a file skipped for safety
type Rejection struct {
	Path   string
	Reason string
	Err    error
}

// Definition is one tier's value for a key
type Definition struct {
	Source string `json:"source" yaml:"source"`
	Value  string `json:"value" yaml:"value"`
}

// Options selects the tiers to merge
type Options struct {
	// Files in ascending priority.
	Files []string
	// IncludeProcess adds the process environment as the lowest tier.
	IncludeProcess bool
	// ProcessEnv replaces os.Environ() for the process tier.
	ProcessEnv []string
}

// LoadFile reads and validates one environment file. A missing file is
// reported as TrustMissing; an unreadable or unsafe one as TrustRejected.
func LoadFile(fsys types.FS, path string) File {
	f := File{Path: path}

	info, err := fsys.Stat(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			f.Trust = TrustMissing
			return f
		}
		f.Trust = TrustRejected
		f.Reason = err.Error()
		return f
	}
	if info.IsDir() {
		f.Trust = TrustRejected
		f.Reason = "not a regular file"
		return f
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		f.Trust = TrustRejected
		f.Reason = err.Error()
		return f
	}

	pairs, err := Parse(data)
	if err != nil {
		f.Trust = TrustRejected
		var mepErr *errors.MepError
		if stderrors.As(err, &mepErr) {
			f.Reason = mepErr.Message
		} else {
			f.Reason = err.Error()
		}
		return f
	}

	f.Trust = TrustValid
	f.Pairs = pairs
	return f
}

// Resolve merges the tiers into one snapshot. Rejected files are skipped
// with a warning and returned so callers can surface them.
func Resolve(fsys types.FS, opts Options) (*Resolved, []Rejection) {
	logger := logging.GetLogger("environment")
	r := newResolved()
	var rejections []Rejection

	if opts.IncludeProcess {
		environ := opts.ProcessEnv
		if environ == nil {
			environ = os.Environ()
		}
		for _, kv := range environ {
			if key, value, ok := strings.Cut(kv, "="); ok && key != "" {
				r.set(key, value, ProcessSource)
			}
		}
	}

	for _, path := range opts.Files {
		f := LoadFile(fsys, path)
		r.files = append(r.files, f)

		switch f.Trust {
		case TrustMissing:
			logger.Debug().Str("path", path).Msg("Environment file not present")
		case TrustRejected:
			logger.Warn().Str("path", path).Str("reason", f.Reason).Msg("Skipping unsafe environment file")
			rejections = append(rejections, Rejection{
				Path:   path,
				Reason: f.Reason,
				Err:    errors.Newf(errors.ErrSecurityRejection, "skipped %s: %s", path, f.Reason).WithDetail("path", path),
			})
		case TrustValid:
			for _, p := range f.Pairs {
				r.set(p.Key, p.Value, path)
			}
			logger.Debug().Str("path", path).Int("keys", len(f.Pairs)).Msg("Loaded environment file")
		}
	}

	return r, rejections
}

// Resolved is an immutable key/value snapshot for one run
type Resolved struct {
	values  map[string]string
	sources map[string]string
	history map[string][]Definition
	files   []File
}

func newResolved() *Resolved {
	return &Resolved{
		values:  make(map[string]string),
		sources: make(map[string]string),
		history: make(map[string][]Definition),
	}
}

// FromMap builds a snapshot from a plain map attributed to source
func FromMap(values map[string]string, source string) *Resolved {
	r := newResolved()
	for k, v := range values {
		r.set(k, v, source)
	}
	return r
}

func (r *Resolved) set(key, value, source string) {
	r.values[key] = value
	r.sources[key] = source
	r.history[key] = append(r.history[key], Definition{Source: source, Value: value})
}

// Lookup returns the winning value for key
func (r *Resolved) Lookup(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Source returns which tier supplied key, or "" when unset
func (r *Resolved) Source(key string) string {
	return r.sources[key]
}

// Len returns the number of keys
func (r *Resolved) Len() int {
	return len(r.values)
}

// Keys returns every key in sorted order
func (r *Resolved) Keys() []string {
	keys := make([]string, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Conflicts returns the keys defined by more than one tier with differing
// values, mapped to their definitions in ascending priority.
func (r *Resolved) Conflicts() map[string][]Definition {
	out := make(map[string][]Definition)
	for key, defs := range r.history {
		if len(defs) < 2 {
			continue
		}
		for _, d := range defs[1:] {
			if d.Value != defs[0].Value {
				out[key] = append([]Definition(nil), defs...)
				break
			}
		}
	}
	return out
}

// Files returns the environment files consulted, in priority order
func (r *Resolved) Files() []File {
	return append([]File(nil), r.files...)
}

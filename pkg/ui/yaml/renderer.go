// Package yaml writes reports as YAML documents
package yaml

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/andisab/mise-en-place/pkg/ui/json"
)

// Renderer encodes each result as its own YAML document. Documents after
// the first are preceded by a "---" separator.
type Renderer struct {
	encoder *yaml.Encoder
}

// New creates a YAML renderer writing to output
func New(output io.Writer) (*Renderer, error) {
	encoder := yaml.NewEncoder(output)
	encoder.SetIndent(2)
	return &Renderer{encoder: encoder}, nil
}

// RenderResult encodes result
func (r *Renderer) RenderResult(result interface{}) error {
	return r.encode(result)
}

// RenderError encodes the error text, its code and details
func (r *Renderer) RenderError(err error) error {
	return r.encode(json.ErrorDocument(err))
}

// RenderMessage encodes msg as a message mapping
func (r *Renderer) RenderMessage(msg string) error {
	return r.encode(map[string]string{"message": msg})
}

func (r *Renderer) encode(v interface{}) error {
	return r.encoder.Encode(v)
}

// Package json writes reports as indented JSON for scripts
package json

import (
	"encoding/json"
	"io"

	"github.com/andisab/mise-en-place/pkg/errors"
)

// Renderer encodes each result as one JSON document
type Renderer struct {
	encoder *json.Encoder
}

// New creates a JSON renderer writing to output
func New(output io.Writer) (*Renderer, error) {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return &Renderer{encoder: encoder}, nil
}

// RenderResult encodes result
func (r *Renderer) RenderResult(result interface{}) error {
	return r.encoder.Encode(result)
}

// RenderError encodes the error text, its code and details
func (r *Renderer) RenderError(err error) error {
	return r.encoder.Encode(ErrorDocument(err))
}

// RenderMessage encodes msg as {"message": msg}
func (r *Renderer) RenderMessage(msg string) error {
	return r.encoder.Encode(map[string]string{"message": msg})
}

// ErrorDocument is the structured form of err shared with the YAML output
func ErrorDocument(err error) map[string]interface{} {
	doc := map[string]interface{}{
		"error": err.Error(),
		"code":  string(errors.GetErrorCode(err)),
	}
	if details := errors.GetErrorDetails(err); len(details) > 0 {
		doc["details"] = details
	}
	return doc
}

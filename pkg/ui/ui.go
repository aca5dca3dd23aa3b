// Package ui writes command reports in terminal, text, JSON or YAML form.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/andisab/mise-en-place/pkg/ui/json"
	"github.com/andisab/mise-en-place/pkg/ui/terminal"
	"github.com/andisab/mise-en-place/pkg/ui/text"
	"github.com/andisab/mise-en-place/pkg/ui/yaml"
)

// Renderer is implemented by every output format
type Renderer interface {
	// RenderResult writes a command result, usually a *types.Report
	RenderResult(result interface{}) error

	// RenderError writes an error that prevented a report
	RenderError(err error) error

	// RenderMessage writes one line of prose
	RenderMessage(msg string) error
}

// NewRenderer creates the renderer for format. FormatAuto inspects output
// when it is a file and otherwise falls back to plain text.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		if file, ok := output.(*os.File); ok {
			return NewRenderer(DetectFormat(file), output)
		}
		return NewRenderer(FormatText, output)
	case FormatTerminal:
		return terminal.New(output)
	case FormatText:
		return text.New(output)
	case FormatJSON:
		return json.New(output)
	case FormatYAML:
		return yaml.New(output)
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
}

// Package terminal renders reports with the semantic lipgloss styles
package terminal

import (
	"io"

	"github.com/andisab/mise-en-place/pkg/ui/styles"
	"github.com/andisab/mise-en-place/pkg/ui/text"
)

// Renderer is the text layout with colors applied
type Renderer struct {
	*text.Renderer
}

// New creates a styled renderer
func New(w io.Writer) (*Renderer, error) {
	return &Renderer{Renderer: text.NewStyled(w, styles.Render)}, nil
}

package topics

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// Renderer formats topic content for display. ext is the topic file's
// extension including the dot.
type Renderer interface {
	Render(content string, ext string) string
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(content, ext string) string

// Render calls f
func (f RendererFunc) Render(content, ext string) string { return f(content, ext) }

// PlainRenderer returns content unchanged
type PlainRenderer struct{}

// Render returns content
func (PlainRenderer) Render(content string, _ string) string { return content }

// MarkdownRenderer renders .md topics with glamour. Other extensions and
// any rendering failure fall back to the raw content.
type MarkdownRenderer struct {
	// Styled selects the auto light/dark style; otherwise "notty" is used
	// so piped help has no escape codes.
	Styled bool
	// WordWrap is the wrap column. Zero keeps glamour's default.
	WordWrap int

	once sync.Once
	term *glamour.TermRenderer
}

// NewMarkdownRenderer creates a markdown renderer
func NewMarkdownRenderer(styled bool) *MarkdownRenderer {
	return &MarkdownRenderer{Styled: styled}
}

// Render renders content when ext is .md
func (r *MarkdownRenderer) Render(content string, ext string) string {
	if ext != ".md" {
		return content
	}

	r.once.Do(func() {
		opts := []glamour.TermRendererOption{glamour.WithStandardStyle("notty")}
		if r.Styled {
			opts = []glamour.TermRendererOption{glamour.WithAutoStyle()}
		}
		if r.WordWrap > 0 {
			opts = append(opts, glamour.WithWordWrap(r.WordWrap))
		}
		r.term, _ = glamour.NewTermRenderer(opts...)
	})
	if r.term == nil {
		return content
	}

	out, err := r.term.Render(content)
	if err != nil {
		return content
	}
	return out
}

// Package prompt asks the user what to do with a file whose system copy
// differs from the repository. Console reads typed letters from any
// reader; Picker is a full-screen menu for interactive terminals.
package prompt

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/andisab/mise-en-place/pkg/merge"
	"github.com/andisab/mise-en-place/pkg/ui/styles"
	"github.com/andisab/mise-en-place/pkg/ui/text"
)

// NewDecider picks the picker when both ends are terminals and styling is
// wanted, the console prompt otherwise
func NewDecider(in, out *os.File, styled bool) merge.Decider {
	if styled && isTerminal(in) && isTerminal(out) {
		return NewPicker(in, out)
	}
	return NewConsole(in, out, styled)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func diffRenderer(out io.Writer, styled bool) *text.Renderer {
	if styled {
		return text.NewStyled(out, styles.Render)
	}
	return text.NewStyled(out, nil)
}

// header describes the file and the size of the change
func header(p merge.Prompt) string {
	added, removed := p.Diff.Stats()
	if p.Diff.Binary {
		return fmt.Sprintf("%s (%s): binary files differ", p.Destination, p.Status)
	}
	return fmt.Sprintf("%s (%s): +%d -%d", p.Destination, p.Status, added, removed)
}

// show writes the header and, for text files, the diff
func show(out io.Writer, diff *text.Renderer, p merge.Prompt) error {
	if _, err := fmt.Fprintf(out, "\n%s\n", header(p)); err != nil {
		return err
	}
	if p.Diff.Binary || !p.Diff.Changed {
		return nil
	}
	return diff.Diff(p.Diff.Unified(p.Destination+" (system)", p.Source+" (repository)"))
}

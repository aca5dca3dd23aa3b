package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/andisab/mise-en-place/pkg/merge"
	"github.com/andisab/mise-en-place/pkg/types"
	"github.com/andisab/mise-en-place/pkg/ui/text"
)

// Question is printed after the diff
const Question = "[K]eep, [r]eplace, [b]ackup and replace, [v]iew diff, [q]uit? "

// Console asks on a line-oriented terminal or pipe. An empty answer keeps
// the system file; end of input quits.
type Console struct {
	in   *bufio.Reader
	out  io.Writer
	diff *text.Renderer
}

// NewConsole creates a console prompt
func NewConsole(in io.Reader, out io.Writer, styled bool) *Console {
	return &Console{in: bufio.NewReader(in), out: out, diff: diffRenderer(out, styled)}
}

type answer struct {
	line string
	err  error
}

// Decide shows the diff and reads answers until one parses
func (c *Console) Decide(ctx context.Context, p merge.Prompt) (types.Decision, error) {
	if err := ctx.Err(); err != nil {
		return types.DecisionNone, err
	}
	if err := show(c.out, c.diff, p); err != nil {
		return types.DecisionNone, err
	}

	for {
		if _, err := fmt.Fprint(c.out, Question); err != nil {
			return types.DecisionNone, err
		}

		a, err := c.readLine(ctx)
		if err != nil {
			return types.DecisionNone, err
		}
		if a.err != nil {
			if a.err == io.EOF && a.line == "" {
				_, _ = fmt.Fprintln(c.out)
				return types.DecisionQuit, nil
			}
			if a.err != io.EOF {
				return types.DecisionNone, fmt.Errorf("failed to read user input: %w", a.err)
			}
		}

		d, perr := merge.ParseDecision(strings.TrimSpace(a.line))
		if perr == nil {
			return d, nil
		}
		if _, err := fmt.Fprintf(c.out, "%v\n", perr); err != nil {
			return types.DecisionNone, err
		}
		if a.err == io.EOF {
			return types.DecisionQuit, nil
		}
	}
}

// readLine returns early with ctx.Err() when ctx is cancelled. The pending
// read is abandoned and its goroutine stays blocked on c.in, so a Console
// must not be reused after a cancelled Decide.
func (c *Console) readLine(ctx context.Context) (answer, error) {
	ch := make(chan answer, 1)
	go func() {
		line, err := c.in.ReadString('\n')
		ch <- answer{line: line, err: err}
	}()

	select {
	case a := <-ch:
		return a, nil
	case <-ctx.Done():
		return answer{}, ctx.Err()
	}
}

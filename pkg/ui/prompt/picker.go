package prompt

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andisab/mise-en-place/pkg/merge"
	"github.com/andisab/mise-en-place/pkg/types"
	"github.com/andisab/mise-en-place/pkg/ui/styles"
	"github.com/andisab/mise-en-place/pkg/ui/text"
)

type choice struct {
	key      string
	label    string
	decision types.Decision
}

var choices = []choice{
	{"k", "Keep the system version", types.DecisionKeep},
	{"r", "Replace with the repository version", types.DecisionReplace},
	{"b", "Back up, then replace", types.DecisionBackupAndReplace},
	{"v", "View the diff again", types.DecisionViewAgain},
	{"q", "Quit", types.DecisionQuit},
}

// pickerModel is a one-question menu
type pickerModel struct {
	title  string
	cursor int
	chosen types.Decision
	done   bool
}

func newPickerModel(title string) pickerModel {
	return pickerModel{title: title}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		return m.pick(types.DecisionQuit)
	case "enter":
		return m.pick(choices[m.cursor].decision)
	case "down", "tab", "j":
		m.cursor = (m.cursor + 1) % len(choices)
	case "up", "shift+tab":
		m.cursor = (m.cursor + len(choices) - 1) % len(choices)
	default:
		for _, c := range choices {
			if strings.EqualFold(key.String(), c.key) {
				return m.pick(c.decision)
			}
		}
	}
	return m, nil
}

func (m pickerModel) pick(d types.Decision) (tea.Model, tea.Cmd) {
	m.chosen = d
	m.done = true
	return m, tea.Quit
}

func (m pickerModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.Render("Heading", m.title))
	b.WriteString("\n\n")
	for i, c := range choices {
		line := fmt.Sprintf("(%s) %s", c.key, c.label)
		if i == m.cursor {
			b.WriteString(styles.Render("Selected", "> "+line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.Render("Muted", "arrows to move, enter or a letter to choose, esc to quit"))
	b.WriteString("\n")
	return b.String()
}

// Picker shows the diff, then a menu driven by bubbletea
type Picker struct {
	in   io.Reader
	out  io.Writer
	diff *text.Renderer
}

// NewPicker creates a picker reading keys from in
func NewPicker(in io.Reader, out io.Writer) *Picker {
	return &Picker{in: in, out: out, diff: diffRenderer(out, true)}
}

// Decide runs one menu per prompt
func (p *Picker) Decide(ctx context.Context, pr merge.Prompt) (types.Decision, error) {
	if err := ctx.Err(); err != nil {
		return types.DecisionNone, err
	}
	if err := show(p.out, p.diff, pr); err != nil {
		return types.DecisionNone, err
	}

	program := tea.NewProgram(newPickerModel("What should happen to "+pr.Destination+"?"),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
		tea.WithContext(ctx),
	)
	final, err := program.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return types.DecisionNone, ctxErr
	}
	if err != nil {
		return types.DecisionNone, fmt.Errorf("prompt failed: %w", err)
	}

	m, ok := final.(pickerModel)
	if !ok || !m.done {
		return types.DecisionQuit, nil
	}
	return m.chosen, nil
}

// Package text renders reports as aligned plain-text tables. The terminal
// renderer reuses it with a styler that adds color.
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/andisab/mise-en-place/pkg/commands"
	"github.com/andisab/mise-en-place/pkg/environment"
	"github.com/andisab/mise-en-place/pkg/errors"
	"github.com/andisab/mise-en-place/pkg/template"
	"github.com/andisab/mise-en-place/pkg/types"
)

// Styler decorates s with the named semantic style
type Styler func(style, s string) string

func plain(_, s string) string { return s }

// Renderer writes reports without escape sequences unless given a Styler
type Renderer struct {
	output io.Writer
	style  Styler
}

// New creates a plain-text renderer
func New(output io.Writer) (*Renderer, error) {
	return NewStyled(output, nil), nil
}

// NewStyled creates a renderer that passes every label through style
func NewStyled(output io.Writer, style Styler) *Renderer {
	if style == nil {
		style = plain
	}
	return &Renderer{output: output, style: style}
}

// RenderResult writes a report, or any other value with %+v
func (r *Renderer) RenderResult(result interface{}) error {
	report, ok := result.(*types.Report)
	if !ok {
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}

	w := &errWriter{w: r.output}
	if data, ok := report.Data.(*commands.ShellExportsData); ok {
		r.shellExports(w, report, data)
		return w.err
	}

	r.data(w, report.Data)
	if report.Summary != nil {
		r.summary(w, report.Summary)
	}
	r.messages(w, report.Messages)
	return w.err
}

// RenderError writes err with its code
func (r *Renderer) RenderError(err error) error {
	code := errors.GetErrorCode(err)
	label := "Error"
	if code != errors.ErrUnknown {
		label = fmt.Sprintf("Error [%s]", code)
	}
	_, werr := fmt.Fprintf(r.output, "%s: %v\n", r.style("Error", label), err)
	return werr
}

// RenderMessage writes msg on its own line
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}

func (r *Renderer) data(w *errWriter, data interface{}) {
	switch d := data.(type) {
	case *commands.ListData:
		r.list(w, d)
	case *commands.AnalyzeData:
		r.analysis(w, d)
	case []environment.File:
		r.envFiles(w, d)
	case []types.BackupRecord:
		r.backups(w, d)
	case *template.Result:
		if d.Success {
			w.printf("%s %s\n", r.style("Success", "wrote"), r.style("Path", d.OutputPath))
		}
		if d.Backup != nil {
			w.printf("%s %s\n", r.style("Muted", "backup"), d.Backup.BackupPath)
		}
	}
}

func (r *Renderer) list(w *errWriter, d *commands.ListData) {
	w.printf("%s %s\n\n", r.style("Heading", "Manifest:"), r.style("Path", d.Manifest))
	if len(d.Items) == 0 {
		w.printf("No file mappings.\n")
		return
	}

	rows := make([][]string, 0, len(d.Items))
	for _, item := range d.Items {
		status := ""
		switch {
		case item.OverlayStatus == commands.OverlayNotFound:
			status = r.style("Warning", item.OverlayStatus)
		case item.OverlayStatus != "":
			status = r.style("Custom", item.OverlayStatus)
		case !item.SourceExists:
			status = r.style("Failed", "SOURCE MISSING")
		}
		rows = append(rows, []string{item.Source, item.Destination, status})
	}
	r.table(w, []string{"SOURCE", "DESTINATION", "STATUS"}, rows)
}

func (r *Renderer) analysis(w *errWriter, d *commands.AnalyzeData) {
	w.printf("%s %s\n\n", r.style("Heading", "Template:"), r.style("Path", d.Template))
	if d.Analysis.Binary {
		w.printf("Binary file; no substitution.\n")
		return
	}
	if len(d.Analysis.Variables) == 0 {
		w.printf("No ${VAR} placeholders.\n")
		return
	}

	rows := make([][]string, 0, len(d.Analysis.Variables))
	for _, v := range d.Analysis.Variables {
		state := r.style("Success", string(v.State))
		if v.State == template.StateMissing {
			state = r.style("Warning", string(v.State))
		}
		rows = append(rows, []string{v.Name, state, v.Source, fmt.Sprint(v.Occurrences)})
	}
	r.table(w, []string{"VARIABLE", "STATE", "SOURCE", "USES"}, rows)

	for _, hint := range d.Analysis.Hints {
		w.printf("%s %s\n", r.style("Muted", "hint:"), hint)
	}
}

func (r *Renderer) envFiles(w *errWriter, files []environment.File) {
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		trust := string(f.Trust)
		switch f.Trust {
		case environment.TrustValid:
			trust = r.style("Success", trust)
		case environment.TrustRejected:
			trust = r.style("Failed", trust)
		default:
			trust = r.style("Muted", trust)
		}
		rows = append(rows, []string{f.Path, trust, fmt.Sprint(len(f.Pairs)), f.Reason})
	}
	r.table(w, []string{"FILE", "STATUS", "KEYS", "REASON"}, rows)
}

func (r *Renderer) backups(w *errWriter, records []types.BackupRecord) {
	if len(records) == 0 {
		w.printf("No backups.\n")
		return
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{rec.OriginalPath, rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.BackupPath})
	}
	r.table(w, []string{"ORIGINAL", "CREATED", "BACKUP"}, rows)
}

func (r *Renderer) summary(w *errWriter, s *types.SyncSummary) {
	rows := make([][]string, 0, len(s.Results))
	for _, res := range s.Results {
		dest := res.Destination
		if dest == "" {
			dest = res.Entry.Label()
		}
		rows = append(rows, []string{r.outcome(res), dest, detail(res)})
	}
	if len(rows) > 0 {
		r.table(w, []string{"RESULT", "FILE", "DETAIL"}, rows)
	}

	for _, res := range s.Results {
		if res.Diff == "" {
			continue
		}
		w.printf("\n")
		r.diff(w, res.Diff)
	}

	w.printf("\n%s applied, %s identical, %s skipped, %s failed\n",
		r.style("Applied", fmt.Sprint(s.Applied)),
		fmt.Sprint(s.Identical),
		r.style("Skipped", fmt.Sprint(s.Skipped)),
		r.style("Failed", fmt.Sprint(s.Failed)))
	for _, rej := range s.SecurityRejections {
		w.printf("%s %s\n", r.style("Warning", "rejected:"), rej)
	}
}

func (r *Renderer) outcome(res types.SyncResult) string {
	switch res.Outcome {
	case types.OutcomeApplied:
		return r.style("Applied", "applied")
	case types.OutcomeFailed:
		return r.style("Failed", "failed")
	}
	if res.Status == types.StatusIdentical {
		return r.style("Muted", "identical")
	}
	return r.style("Skipped", "skipped")
}

func detail(res types.SyncResult) string {
	var parts []string
	if res.Status != "" && res.Status != types.StatusIdentical {
		parts = append(parts, string(res.Status))
	}
	if res.Reason != "" && res.Status != types.StatusIdentical {
		parts = append(parts, res.Reason)
	}
	if res.Template != nil {
		parts = append(parts, fmt.Sprintf("%d vars", len(res.Template.Variables)))
	}
	if res.Backup != nil {
		parts = append(parts, "backup "+res.Backup.BackupPath)
	}
	return strings.Join(parts, "; ")
}

// Diff writes a unified diff with added and removed lines styled
func (r *Renderer) Diff(text string) error {
	w := &errWriter{w: r.output}
	r.diff(w, text)
	return w.err
}

func (r *Renderer) diff(w *errWriter, text string) {
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		body := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(body, "+++"), strings.HasPrefix(body, "---"):
			body = r.style("Heading", body)
		case strings.HasPrefix(body, "@@"):
			body = r.style("DiffHunk", body)
		case strings.HasPrefix(body, "+"):
			body = r.style("DiffAdd", body)
		case strings.HasPrefix(body, "-"):
			body = r.style("DiffDelete", body)
		}
		w.printf("%s\n", body)
	}
}

func (r *Renderer) messages(w *errWriter, msgs []types.Message) {
	if len(msgs) > 0 {
		w.printf("\n")
	}
	for _, m := range msgs {
		switch m.Level {
		case types.LevelError:
			w.printf("%s %s\n", r.style("Error", label("error", m.Code)), m.Text)
		case types.LevelWarning:
			w.printf("%s %s\n", r.style("Warning", label("warning", m.Code)), m.Text)
		default:
			w.printf("%s\n", m.Text)
		}
	}
}

func label(level, code string) string {
	if code == "" {
		return level + ":"
	}
	return fmt.Sprintf("%s [%s]:", level, code)
}

// shellExports writes the script verbatim so it can be evaluated; messages
// become comments
func (r *Renderer) shellExports(w *errWriter, report *types.Report, data *commands.ShellExportsData) {
	for _, m := range report.Messages {
		w.printf("# %s %s\n", label(string(m.Level), m.Code), m.Text)
	}
	w.printf("%s", data.Script)
}

func (r *Renderer) table(w *errWriter, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(rows)
	table.Render()
}

// errWriter keeps the first write error so rendering code can stay linear
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(e, format, args...)
}

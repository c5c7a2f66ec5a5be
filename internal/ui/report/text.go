package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"sl2c/internal/core/ports"
	"sl2c/internal/data/history"
)

type styles struct {
	file    lipgloss.Style
	ok      lipgloss.Style
	diag    lipgloss.Style
	kind    lipgloss.Style
	summary lipgloss.Style
}

// newStyles binds the palette to w so colour is dropped when w is not a
// terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		file:    r.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Bold(true),
		ok:      r.NewStyle().Foreground(lipgloss.Color("#10B981")),
		diag:    r.NewStyle().PaddingLeft(2),
		kind:    r.NewStyle().Foreground(lipgloss.Color("#F87171")).Bold(true),
		summary: r.NewStyle().Foreground(lipgloss.Color("#64748B")).Italic(true),
	}
}

// Text writes one block per file followed by a summary line.
func Text(w io.Writer, res ports.TranslateResult) error {
	st := newStyles(w)
	var b strings.Builder

	for _, f := range res.Files {
		b.WriteString(st.file.Render(f.Path))
		b.WriteByte('\n')

		n := len(f.Result.Artifacts)
		if n > 0 {
			line := fmt.Sprintf("  %s", plural(n, "artefact"))
			if len(f.Written) > 0 {
				names := make([]string, 0, len(f.Written))
				for _, p := range f.Written {
					names = append(names, filepath.Base(p))
				}
				line += " (" + strings.Join(names, ", ") + ")"
			}
			b.WriteString(st.ok.Render(line))
			b.WriteByte('\n')
		}

		for _, d := range f.Result.Diagnostics.Sorted() {
			text := st.kind.Render(string(d.Kind)) + fmt.Sprintf(" at %s: %s", d.Pos, d.Message)
			b.WriteString(st.diag.Render(text))
			b.WriteByte('\n')
		}
	}

	summary := fmt.Sprintf("%s, %s, %s in %s",
		plural(len(res.Files), "file"),
		plural(res.ArtifactCount(), "artefact"),
		plural(res.DiagnosticCount(), "diagnostic"),
		res.Duration.Round(time.Millisecond))
	b.WriteString(st.summary.Render(summary))
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderRuns lists recorded runs newest first.
func RenderRuns(w io.Writer, runs []history.Run) error {
	st := newStyles(w)
	var b strings.Builder
	if len(runs) == 0 {
		b.WriteString(st.summary.Render("no recorded runs"))
		b.WriteByte('\n')
		_, err := io.WriteString(w, b.String())
		return err
	}

	for _, run := range runs {
		status := st.ok.Render("ok")
		if !run.OK() {
			status = st.kind.Render(plural(len(run.Diagnostics), "diagnostic"))
		}
		fmt.Fprintf(&b, "%s  %s  %s  %s  %s\n",
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			shortID(run.ID),
			st.file.Render(run.Source),
			plural(run.Artifacts, "artefact"),
			status)
		for _, d := range run.Diagnostics {
			b.WriteString(st.diag.Render(fmt.Sprintf("%s at %d:%d: %s", d.Kind, d.Line, d.Column, d.Message)))
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

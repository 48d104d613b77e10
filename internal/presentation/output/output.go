// Package output renders run reports for humans and machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aretw0/schemata/pkg/report"
	"github.com/muesli/termenv"
)

// Format selects how a report is written.
type Format string

const (
	FormatAuto     Format = "auto"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a --format value. Empty means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatText, FormatJSON, FormatMarkdown:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want auto, text, json or markdown)", s)
}

// Resolve picks the concrete format for auto: text on a terminal, JSON when
// the output is piped or redirected. Other formats are returned unchanged.
func (f Format) Resolve(interactive bool) Format {
	if f != FormatAuto && f != "" {
		return f
	}
	if interactive {
		return FormatText
	}
	return FormatJSON
}

const (
	colorOK   = "2"
	colorWarn = "3"
	colorFail = "1"
)

// WriteText writes one line per file and an overall verdict.
// Invalid files list every invalid document with its violations.
func WriteText(w io.Writer, rep *report.Report, colored bool) error {
	paint := func(s, color string) string {
		if !colored {
			return s
		}
		return termenv.String(s).Foreground(termenv.ANSI.Color(color)).String()
	}

	var b strings.Builder
	for _, f := range rep.Files {
		switch f.Status {
		case report.StatusValid:
			fmt.Fprintf(&b, "%s %s: valid\n", paint("✔", colorOK), f.Name)
		case report.StatusSkipped:
			fmt.Fprintf(&b, "%s %s: skipped (unknown schema)\n", paint("⚠", colorWarn), f.Name)
		case report.StatusUnreadable:
			fmt.Fprintf(&b, "%s %s: unreadable: %s\n", paint("✖", colorFail), f.Name, f.Error)
		case report.StatusInvalid:
			for _, d := range f.Invalid {
				fmt.Fprintf(&b, "%s %s [document %d]:\n", paint("✖", colorFail), f.Name, d.Index)
				for _, v := range d.Violations {
					fmt.Fprintf(&b, "    - %s\n", v.String())
				}
			}
		}
	}

	s := rep.Summary()
	fmt.Fprintf(&b, "\n%d files: %d valid, %d invalid, %d unreadable, %d skipped (%d documents, %d violations)\n",
		s.Files, s.Valid, s.Invalid, s.Unreadable, s.Skipped, s.Documents, s.Violations)
	if rep.Outcome() == report.OutcomeValid {
		fmt.Fprintln(&b, paint("All files are valid against their schemas.", colorOK))
	} else {
		fmt.Fprintln(&b, paint("Some files are not valid.", colorFail))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// jsonReport is the machine-readable envelope of a report.
type jsonReport struct {
	*report.Report
	Outcome  string         `json:"outcome"`
	ExitCode int            `json:"exit_code"`
	Summary  report.Summary `json:"summary"`
}

// WriteJSON writes the report with its outcome and summary as indented JSON.
func WriteJSON(w io.Writer, rep *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Report:   rep,
		Outcome:  rep.Outcome().String(),
		ExitCode: rep.Outcome().ExitCode(),
		Summary:  rep.Summary(),
	})
}

// Markdown renders the report as a markdown document.
func Markdown(rep *report.Report) string {
	var b strings.Builder
	s := rep.Summary()

	fmt.Fprintf(&b, "# Validation report `%s`\n\n", rep.ID)
	fmt.Fprintf(&b, "Dataset `%s`, outcome **%s**, %s.\n\n", rep.Dir, rep.Outcome(), rep.Duration().Round(time.Millisecond))

	b.WriteString("| File | Collection | Status | Documents | Invalid |\n")
	b.WriteString("|------|------------|--------|-----------|---------|\n")
	for _, f := range rep.Files {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %d |\n", f.Name, f.Collection, f.Status, f.Documents, len(f.Invalid))
	}
	fmt.Fprintf(&b, "\n%d documents checked, %d violations.\n", s.Documents, s.Violations)

	for _, f := range rep.Files {
		if f.Status == report.StatusUnreadable {
			fmt.Fprintf(&b, "\n## %s\n\nUnreadable: %s\n", f.Name, f.Error)
			continue
		}
		if len(f.Invalid) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n", f.Name)
		for _, d := range f.Invalid {
			fmt.Fprintf(&b, "\n### Document %d\n\n", d.Index)
			for _, v := range d.Violations {
				fmt.Fprintf(&b, "- `%s`\n", v.String())
			}
		}
	}
	return b.String()
}

// Write renders rep in the given format. interactive colors text output and
// resolves auto to text. Markdown is passed through render when it is non-nil.
func Write(w io.Writer, rep *report.Report, format Format, interactive bool, render func(string) (string, error)) error {
	switch format.Resolve(interactive) {
	case FormatJSON:
		return WriteJSON(w, rep)
	case FormatMarkdown:
		md := Markdown(rep)
		if render != nil {
			out, err := render(md)
			if err != nil {
				return fmt.Errorf("render markdown: %w", err)
			}
			md = out
		}
		_, err := io.WriteString(w, md)
		return err
	default:
		return WriteText(w, rep, interactive)
	}
}

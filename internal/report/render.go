// Package report renders check reports, tables of contents, run history and
// the rule catalogue as text or JSON.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/goliatone/go-bookcheck/internal/catalog"
	"github.com/goliatone/go-bookcheck/internal/lint"
	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// Format selects the renderer.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var ErrUnknownFormat = errors.New("report: unknown format")

// ParseFormat accepts "text" and "json"; empty means text.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(FormatText):
		return FormatText, nil
	case string(FormatJSON):
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownFormat, value)
	}
}

// Options tunes text output.
type Options struct {
	Color bool
	// MinSeverity hides less severe issues from the listing. Counts always
	// cover the whole report.
	MinSeverity interfaces.Severity
}

// Renderer writes the supported documents in one format.
type Renderer struct {
	format Format
	opts   Options
	theme  theme
}

// New creates a renderer.
func New(format Format, opts Options) *Renderer {
	if format == "" {
		format = FormatText
	}
	return &Renderer{format: format, opts: opts, theme: newTheme(opts.Color)}
}

type theme struct {
	err, warn, info, path, dim, ok *color.Color
}

func newTheme(enabled bool) theme {
	t := theme{
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow),
		info: color.New(color.FgCyan),
		path: color.New(color.Bold, color.Underline),
		dim:  color.New(color.Faint),
		ok:   color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{t.err, t.warn, t.info, t.path, t.dim, t.ok} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return t
}

func (t theme) severity(s interfaces.Severity) string {
	label := fmt.Sprintf("%-7s", s.String())
	switch s {
	case interfaces.SeverityError:
		return t.err.Sprint(label)
	case interfaces.SeverityWarning:
		return t.warn.Sprint(label)
	default:
		return t.info.Sprint(label)
	}
}

type jsonReport struct {
	*lint.Report
	Counts lint.Counts `json:"counts"`
	Failed bool        `json:"failed"`
}

// Report writes a check report. threshold only affects the JSON "failed"
// flag and the text summary line.
func (r *Renderer) Report(w io.Writer, rep *lint.Report, threshold interfaces.Severity) error {
	if rep == nil {
		rep = &lint.Report{}
	}
	if r.format == FormatJSON {
		issues := rep.Issues
		if issues == nil {
			issues = []interfaces.Issue{}
		}
		copyRep := *rep
		copyRep.Issues = issues
		return writeJSON(w, jsonReport{Report: &copyRep, Counts: rep.Counts(), Failed: rep.Failed(threshold)})
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	current := ""
	for _, issue := range rep.Filter(r.opts.MinSeverity) {
		if issue.Path != current {
			if current != "" {
				fmt.Fprintln(tw)
			}
			current = issue.Path
			fmt.Fprintln(tw, r.theme.path.Sprint(issue.Path))
		}
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", issue.Line, r.theme.severity(issue.Severity), r.theme.dim.Sprint(issue.Rule), issue.Message)
	}
	if current != "" {
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	counts := rep.Counts()
	summary := fmt.Sprintf("%d %s checked: %d %s, %d %s, %d info (%s)",
		rep.Pages, plural(rep.Pages, "page", "pages"),
		counts.Errors, plural(counts.Errors, "error", "errors"),
		counts.Warnings, plural(counts.Warnings, "warning", "warnings"),
		counts.Infos,
		rep.Duration.Round(time.Millisecond),
	)
	switch {
	case rep.Failed(threshold):
		summary = r.theme.err.Sprint("✗ ") + summary
	default:
		summary = r.theme.ok.Sprint("✓ ") + summary
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}

// TOC writes a table of contents.
func (r *Renderer) TOC(w io.Writer, toc []catalog.TOCBook) error {
	if r.format == FormatJSON {
		if toc == nil {
			toc = []catalog.TOCBook{}
		}
		return writeJSON(w, toc)
	}
	for i, book := range toc {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, r.theme.path.Sprint(book.Label()))
		for _, chapter := range book.Chapters {
			fmt.Fprintf(w, "  %s\n", chapter.Label())
			for _, entry := range chapter.Entries {
				weight := "-"
				if entry.NavWeight != nil {
					weight = fmt.Sprintf("%d", *entry.NavWeight)
				}
				fmt.Fprintf(w, "    %s %s\n", r.theme.dim.Sprintf("[%5s]", weight), entry.Name())
			}
		}
	}
	return nil
}

// Runs writes the run history.
func (r *Renderer) Runs(w io.Writer, runs []*catalog.Run) error {
	if r.format == FormatJSON {
		if runs == nil {
			runs = []*catalog.Run{}
		}
		return writeJSON(w, runs)
	}
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "no recorded runs")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tROOT\tPAGES\tERRORS\tWARNINGS\tINFOS\tSTATUS")
	for _, run := range runs {
		status := r.theme.ok.Sprint("ok")
		if run.Failed {
			status = r.theme.err.Sprint("failed")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			shortID(run.ID.String()),
			run.StartedAt.UTC().Format("2006-01-02 15:04:05"),
			run.Root,
			run.Pages, run.Errors, run.Warnings, run.Infos,
			status,
		)
	}
	return tw.Flush()
}

// Rules writes the rule catalogue with effective severities.
func (r *Renderer) Rules(w io.Writer, rules []lint.RuleInfo, effective func(string) interfaces.Severity, enabled func(string) bool) error {
	type row struct {
		ID          string              `json:"id"`
		Severity    interfaces.Severity `json:"severity"`
		Scope       lint.Scope          `json:"scope"`
		Enabled     bool                `json:"enabled"`
		Description string              `json:"description"`
	}
	rows := make([]row, 0, len(rules))
	for _, rule := range rules {
		item := row{ID: rule.ID, Severity: rule.Severity, Scope: rule.Scope, Enabled: true, Description: rule.Description}
		if effective != nil {
			item.Severity = effective(rule.ID)
		}
		if enabled != nil {
			item.Enabled = enabled(rule.ID)
		}
		rows = append(rows, item)
	}
	if r.format == FormatJSON {
		return writeJSON(w, rows)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, item := range rows {
		state := ""
		if !item.Enabled {
			state = r.theme.dim.Sprint("(disabled)")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\n", item.ID, r.theme.severity(item.Severity), item.Scope, item.Description, state)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

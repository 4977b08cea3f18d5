package lint

import (
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// Report is the result of one check run.
type Report struct {
	RunID     string             `json:"run_id"`
	Root      string             `json:"root,omitempty"`
	StartedAt time.Time          `json:"started_at"`
	Duration  time.Duration      `json:"duration"`
	Pages     int                `json:"pages"`
	Issues    []interfaces.Issue `json:"issues"`
}

// Counts tallies issues per severity.
type Counts struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// Total returns the number of issues.
func (c Counts) Total() int {
	return c.Errors + c.Warnings + c.Infos
}

// Counts tallies the report issues.
func (r *Report) Counts() Counts {
	var counts Counts
	if r == nil {
		return counts
	}
	for _, issue := range r.Issues {
		switch issue.Severity {
		case interfaces.SeverityError:
			counts.Errors++
		case interfaces.SeverityWarning:
			counts.Warnings++
		default:
			counts.Infos++
		}
	}
	return counts
}

// HasErrors reports whether any issue is an error.
func (r *Report) HasErrors() bool {
	return r.Failed(interfaces.SeverityError)
}

// Failed reports whether any issue is at least as severe as threshold.
func (r *Report) Failed(threshold interfaces.Severity) bool {
	if r == nil {
		return false
	}
	for _, issue := range r.Issues {
		if issue.Severity >= threshold {
			return true
		}
	}
	return false
}

// Sort orders issues by path, line, rule and message.
func (r *Report) Sort() {
	sort.SliceStable(r.Issues, func(i, j int) bool {
		a, b := r.Issues[i], r.Issues[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Message < b.Message
	})
}

// ByPath groups issues per page path, keeping report order.
func (r *Report) ByPath() map[string][]interfaces.Issue {
	out := map[string][]interfaces.Issue{}
	if r == nil {
		return out
	}
	for _, issue := range r.Issues {
		out[issue.Path] = append(out[issue.Path], issue)
	}
	return out
}

// Filter returns the issues at or above threshold.
func (r *Report) Filter(threshold interfaces.Severity) []interfaces.Issue {
	if r == nil {
		return nil
	}
	out := make([]interfaces.Issue, 0, len(r.Issues))
	for _, issue := range r.Issues {
		if issue.Severity >= threshold {
			out = append(out, issue)
		}
	}
	return out
}

// FailNever is a threshold no issue reaches.
const FailNever = interfaces.SeverityError + 1

// ParseFailOn maps a fail-on setting to a threshold. Empty means error and
// "never" yields FailNever.
func ParseFailOn(value string) (interfaces.Severity, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return interfaces.SeverityError, nil
	case strings.EqualFold(value, "never"):
		return FailNever, nil
	}
	return interfaces.ParseSeverity(value)
}
